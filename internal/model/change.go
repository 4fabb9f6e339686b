package model

// Direction is the movement between two prices.
type Direction string

const (
	// DirectionUp means the price increased.
	DirectionUp Direction = "up"

	// DirectionDown means the price decreased.
	DirectionDown Direction = "down"

	// DirectionUnchanged means the price is the same.
	DirectionUnchanged Direction = "unchanged"

	// DirectionNew means there is no earlier price to compare with.
	DirectionNew Direction = "new"
)

// Symbol returns an arrow for terminal output.
func (d Direction) Symbol() string {
	switch d {
	case DirectionUp:
		return "↑"
	case DirectionDown:
		return "↓"
	case DirectionUnchanged:
		return "="
	default:
		return "•"
	}
}

// PriceChange compares the two latest prices of a series.
type PriceChange struct {
	Key       SeriesKey `json:"key"`
	Currency  string    `json:"currency"`
	Current   Point     `json:"current"`
	Previous  *Point    `json:"previous,omitempty"`
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
}

// NewPriceChange builds the change from previous (optional) to current.
func NewPriceChange(key SeriesKey, currency string, current Point, previous *Point) PriceChange {
	c := PriceChange{
		Key:       key,
		Currency:  currency,
		Current:   current,
		Previous:  previous,
		Direction: DirectionNew,
	}
	if previous == nil {
		return c
	}
	c.Delta = current.Price - previous.Price
	switch {
	case c.Delta > 0:
		c.Direction = DirectionUp
	case c.Delta < 0:
		c.Direction = DirectionDown
	default:
		c.Direction = DirectionUnchanged
	}
	return c
}

// Percent returns the relative change in percent, or 0 without a previous
// price or when the previous price is zero.
func (c PriceChange) Percent() float64 {
	if c.Previous == nil || c.Previous.Price == 0 {
		return 0
	}
	return c.Delta / c.Previous.Price * 100
}
