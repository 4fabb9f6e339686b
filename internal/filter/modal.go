package filter

import "github.com/nao1215/fareplot/internal/dom"

// ModalState is the open/closed state of the modal viewer.
type ModalState struct {
	Open   bool
	Active *ChartEntry
}

// Modal shows one chart entry enlarged with a caption.
// Without a container element every method is a no-op.
type Modal struct {
	container dom.Element
	image     dom.Element
	caption   dom.Element
	closers   []dom.Element

	state ModalState

	// loads counts image assignments, so reopening the active entry can be
	// observed not to reload it.
	loads int
}

func newModal(doc dom.Document) *Modal {
	m := &Modal{container: doc.Query(SelectorModal)}
	if m.container == nil {
		return m
	}
	m.image = m.container.Query(SelectorModalImage)
	m.caption = m.container.Query(SelectorModalCaption)
	m.closers = m.container.QueryAll(SelectorModalClose)
	return m
}

// State returns the current modal state.
func (m *Modal) State() ModalState {
	return m.state
}

// Available reports whether the page has a modal container.
func (m *Modal) Available() bool {
	return m.container != nil
}

// Open shows entry. Entries without an image source are ignored, and
// opening the entry that is already shown changes nothing.
func (m *Modal) Open(entry *ChartEntry) {
	if m.container == nil || entry == nil || entry.Image.Src == "" {
		return
	}
	if m.state.Open && m.state.Active == entry {
		return
	}

	if m.image != nil {
		m.image.SetAttr("src", entry.Image.Src)
		m.image.SetAttr("alt", entry.Image.Alt)
		m.loads++
	}
	if m.caption != nil {
		m.caption.SetText(entry.Caption())
	}
	m.container.RemoveAttr("hidden")
	m.container.SetAttr("aria-hidden", "false")

	m.state = ModalState{Open: true, Active: entry}
}

// Close hides the modal and drops the loaded image. It is idempotent.
func (m *Modal) Close() {
	if m.container == nil {
		return
	}
	m.container.SetAttr("hidden", "")
	m.container.SetAttr("aria-hidden", "true")
	if m.image != nil {
		m.image.RemoveAttr("src")
		m.image.SetAttr("alt", "")
	}
	if m.caption != nil {
		m.caption.SetText("")
	}
	m.state = ModalState{}
}

// bind subscribes the close controls and the global Escape key.
func (m *Modal) bind(doc dom.Document) []func() {
	if m.container == nil {
		return nil
	}
	var off []func()
	for _, c := range m.closers {
		off = append(off, doc.On(c, "click", func(dom.Event) { m.Close() }))
	}
	off = append(off, doc.On(nil, "keydown", func(ev dom.Event) {
		if ev.Key() == "Escape" && m.state.Open {
			m.Close()
		}
	}))
	return off
}
