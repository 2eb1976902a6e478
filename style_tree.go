package textlayout

import "strings"

// TreeBuilder builds a layout from nested style scopes, the way a document
// tree cascades styles: each scope contributes a delta over its parent and
// inherits everything else. The builder keeps an explicit stack of open
// scope frames, each holding a snapshot of the inherited style, so deeply
// nested input consumes bounded, predictable memory.
//
// Both builders converge on the same span partition: a TreeBuilder build
// and a RangedBuilder build describing the same styling produce identical
// layouts.
type TreeBuilder struct {
	ctx      *Context
	fonts    *FontContext
	defaults Style
	text     strings.Builder
	frames   []Style
	spans    []StyleSpan
	boxes    []InlineBox
	err      error
}

// TreeBuilder starts a scope-structured layout build with the given root
// style. Text and boxes are appended in document order.
func (c *Context) TreeBuilder(fonts *FontContext, defaults Style) *TreeBuilder {
	return &TreeBuilder{
		ctx:      c,
		fonts:    fonts,
		defaults: defaults,
	}
}

// current returns the style at the top of the scope stack.
func (b *TreeBuilder) current() Style {
	if len(b.frames) == 0 {
		return b.defaults
	}
	return b.frames[len(b.frames)-1]
}

// PushStyleSpan opens a scope whose style is the parent style with the
// given properties applied. Every scope must be closed with Pop before
// Build.
func (b *TreeBuilder) PushStyleSpan(props ...StyleProperty) {
	if b.err != nil {
		return
	}
	style := b.current()
	for _, p := range props {
		p.apply(&style)
	}
	b.frames = append(b.frames, style)
}

// Pop closes the innermost open scope.
func (b *TreeBuilder) Pop() {
	if b.err != nil {
		return
	}
	if len(b.frames) == 0 {
		b.err = ErrNoScope
		return
	}
	b.frames = b.frames[:len(b.frames)-1]
}

// PushText appends text under the current scope's style.
func (b *TreeBuilder) PushText(s string) {
	if b.err != nil || s == "" {
		return
	}
	start := b.text.Len()
	b.text.WriteString(s)
	style := b.current()
	if n := len(b.spans); n > 0 && b.spans[n-1].End == start && b.spans[n-1].Style.equal(&style) {
		b.spans[n-1].End = b.text.Len()
		return
	}
	b.spans = append(b.spans, StyleSpan{Start: start, End: b.text.Len(), Style: style})
}

// PushInlineBox adds a caller-supplied box at the current text position.
// The box's Index field is overwritten with that position.
func (b *TreeBuilder) PushInlineBox(box InlineBox) {
	if b.err != nil {
		return
	}
	box.Index = b.text.Len()
	b.boxes = append(b.boxes, box)
}

// Build resolves the accumulated scopes, shapes the text and returns the
// layout. Build fails if any pushed scope was left open, or if an earlier
// Pop had no matching push.
func (b *TreeBuilder) Build() (*Layout, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.frames) != 0 {
		return nil, ErrUnbalancedScopes
	}
	text := b.text.String()
	spans := b.spans
	if len(spans) == 0 {
		spans = []StyleSpan{{Start: 0, End: len(text), Style: b.defaults}}
	}
	return buildLayout(b.ctx, b.fonts, text, spans, b.boxes, b.defaults)
}
