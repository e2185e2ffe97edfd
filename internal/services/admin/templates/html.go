package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

// component adapts a markup function into a templ component.
func component(fn func(hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{ctx: ctx, w: w}
		fn(hw)
		return hw.err
	})
}

// raw writes trusted markup.
func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// text writes escaped character data.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// open writes a start tag with attribute pairs.
func (hw *htmlWriter) open(tag string, attrs ...string) {
	hw.raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		hw.attr(attrs[i], attrs[i+1])
	}
	hw.raw(">")
}

func (hw *htmlWriter) close(tag string) {
	hw.raw("</" + tag + ">")
}

// element writes a complete element with escaped text content.
func (hw *htmlWriter) element(tag string, content string, attrs ...string) {
	hw.open(tag, attrs...)
	hw.text(content)
	hw.close(tag)
}

// link writes an anchor.
func (hw *htmlWriter) link(href string, label string, attrs ...string) {
	hw.element("a", label, append([]string{"href", href}, attrs...)...)
}

// child renders a nested component into the same writer.
func (hw *htmlWriter) child(c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(hw.ctx, hw.w)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
