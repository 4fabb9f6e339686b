package htmldoc

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/fareplot/internal/dom"
)

const page = `<!DOCTYPE html><html><body>
<div id="outer"><button id="inner" class="btn">Go <b>now</b></button></div>
<select id="pick"><option value="a">A</option><option>b</option></select>
<input id="field" value="x">
<p id="styled" style="color: red; display:none"></p>
</body></html>`

func mustParse(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(page)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

// TestQuery tests selector lookups.
func TestQuery(t *testing.T) {
	t.Parallel()

	t.Run("missing element is an untyped nil", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		if el := doc.Query("#nope"); el != nil {
			t.Errorf("Query() = %v, want nil", el)
		}
		if el := doc.Query("#outer").Query(".missing"); el != nil {
			t.Errorf("scoped Query() = %v, want nil", el)
		}
	})

	t.Run("scoped query only sees descendants", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		outer := doc.Query("#outer")
		if got := len(outer.QueryAll("button")); got != 1 {
			t.Errorf("QueryAll(button) = %d, want 1", got)
		}
		if got := len(outer.QueryAll("select")); got != 0 {
			t.Errorf("QueryAll(select) = %d, want 0", got)
		}
		if got := outer.Query(".btn").Text(); got != "Go now" {
			t.Errorf("Text() = %q", got)
		}
	})
}

// TestElementMutation tests attribute, text and style mutation.
func TestElementMutation(t *testing.T) {
	t.Parallel()

	t.Run("attributes and text", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		btn := doc.Query("#inner")
		btn.SetAttr("aria-label", "go")
		btn.SetText("Stop")

		if v, ok := btn.Attr("aria-label"); !ok || v != "go" {
			t.Errorf("Attr() = %q, %v", v, ok)
		}
		if btn.Text() != "Stop" {
			t.Errorf("Text() = %q", btn.Text())
		}
		btn.RemoveAttr("aria-label")
		if _, ok := btn.Attr("aria-label"); ok {
			t.Error("expected attribute to be removed")
		}
	})

	t.Run("styles", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		p := doc.Query("#styled")

		if got := p.Style("display"); got != "none" {
			t.Errorf("Style(display) = %q", got)
		}
		p.SetStyle("display", "flex")
		p.SetStyle("margin", "0")
		if v, _ := p.Attr("style"); v != "color: red; display: flex; margin: 0" {
			t.Errorf("style = %q", v)
		}
		p.SetStyle("color", "")
		p.SetStyle("display", "")
		p.SetStyle("margin", "")
		if _, ok := p.Attr("style"); ok {
			t.Error("expected empty style attribute to be removed")
		}
	})

	t.Run("select values and options", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		sel := doc.Query("#pick")

		if got := sel.Value(); got != "a" {
			t.Errorf("default Value() = %q, want a", got)
		}
		sel.SetValue("b")
		if got := sel.Value(); got != "b" {
			t.Errorf("Value() = %q, want option text fallback b", got)
		}

		sel.SetOptions([]dom.Option{{Value: "all", Label: "All"}, {Value: "x", Label: "X"}}, "x")
		if got := sel.Value(); got != "x" {
			t.Errorf("Value() after SetOptions = %q", got)
		}
		if got := len(sel.QueryAll("option")); got != 2 {
			t.Errorf("options = %d, want 2", got)
		}

		field := doc.Query("#field")
		field.SetValue("y")
		if field.Value() != "y" {
			t.Errorf("input Value() = %q", field.Value())
		}
	})
}

// TestDispatch tests event delivery and bubbling.
func TestDispatch(t *testing.T) {
	t.Parallel()

	t.Run("bubbles from target to document", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		var order []string
		doc.On(doc.Query("#inner"), "click", func(dom.Event) { order = append(order, "inner") })
		doc.On(doc.Query("#outer"), "click", func(dom.Event) { order = append(order, "outer") })
		doc.On(nil, "click", func(dom.Event) { order = append(order, "document") })
		doc.On(doc.Query("#outer"), "keydown", func(dom.Event) { order = append(order, "keydown") })

		doc.Click(doc.Query("#inner b"))

		if got := strings.Join(order, ","); got != "inner,outer,document" {
			t.Errorf("order = %s", got)
		}
	})

	t.Run("remove stops delivery", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		calls := 0
		off := doc.On(nil, "keydown", func(ev dom.Event) {
			if ev.Key() == "Escape" {
				calls++
			}
		})
		doc.KeyDown(nil, "Escape")
		off()
		off()
		doc.KeyDown(nil, "Escape")

		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
		if doc.ListenerCount() != 0 {
			t.Errorf("ListenerCount() = %d, want 0", doc.ListenerCount())
		}
	})

	t.Run("handler removed during dispatch is skipped", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		var offSecond func()
		second := 0
		doc.On(nil, "click", func(dom.Event) { offSecond() })
		offSecond = doc.On(nil, "click", func(dom.Event) { second++ })

		doc.Click(nil)
		if second != 0 {
			t.Errorf("second handler ran %d times", second)
		}
	})

	t.Run("prevent default is reported", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t)
		doc.On(doc.Query("#inner"), "keydown", func(ev dom.Event) { ev.PreventDefault() })

		if ev := doc.KeyDown(doc.Query("#inner"), "Enter"); !ev.DefaultPrevented() {
			t.Error("expected default to be prevented")
		}
		if ev := doc.KeyDown(doc.Query("#outer"), "Enter"); ev.DefaultPrevented() {
			t.Error("parent dispatch must not reach child handlers")
		}
	})
}

// TestRender tests serialization of mutations.
func TestRender(t *testing.T) {
	t.Parallel()

	doc := mustParse(t)
	doc.Query("#styled").SetText("5 of 5 charts shown")
	doc.Query("#pick").SetOptions([]dom.Option{{Value: "all", Label: "All routes"}}, "all")

	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("reparse error = %v", err)
	}
	if got := parsed.Find("#styled").Text(); got != "5 of 5 charts shown" {
		t.Errorf("rendered status = %q", got)
	}
	if _, ok := parsed.Find("#pick option[value=all]").Attr("selected"); !ok {
		t.Error("expected selected option in output")
	}
}
