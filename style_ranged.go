package textlayout

import (
	"sort"
	"unicode/utf8"
)

// rangedDecl is one pushed (range, property) declaration. seq is the push
// order; on overlap the highest seq wins for its property kind.
type rangedDecl struct {
	prop  StyleProperty
	start int
	end   int
	seq   int
}

// RangedBuilder builds a layout from a flat list of (range, property)
// declarations over a fixed text. Later pushes override earlier ones on
// overlap, per property: a later push partially overwrites an earlier one
// where they overlap and leaves the rest of the earlier range intact.
//
// A RangedBuilder is obtained from [Context.RangedBuilder] and is valid for
// one Build call.
type RangedBuilder struct {
	ctx      *Context
	fonts    *FontContext
	text     string
	defaults Style
	decls    []rangedDecl
	boxes    []InlineBox
	err      error
}

// RangedBuilder starts a layout build over text with the given default
// style. Declarations are added with Push; the default style covers any
// sub-range no declaration reaches.
func (c *Context) RangedBuilder(fonts *FontContext, text string, defaults Style) *RangedBuilder {
	return &RangedBuilder{
		ctx:      c,
		fonts:    fonts,
		text:     text,
		defaults: defaults,
	}
}

// Push declares a style property over the byte range [start, end).
// The range must lie within the text and align to UTF-8 rune boundaries;
// a violating range is recorded and surfaced by Build before any Layout
// is produced. Zero-length ranges are accepted and have no effect.
func (b *RangedBuilder) Push(prop StyleProperty, start, end int) {
	if b.err != nil {
		return
	}
	if err := b.checkRange(start, end); err != nil {
		b.err = err
		return
	}
	if start == end {
		return
	}
	b.decls = append(b.decls, rangedDecl{
		prop:  prop,
		start: start,
		end:   end,
		seq:   len(b.decls),
	})
}

// PushInlineBox adds a caller-supplied box anchored at a byte offset.
// The box participates in line breaking as an unbreakable, unstyled item.
func (b *RangedBuilder) PushInlineBox(box InlineBox) {
	if b.err != nil {
		return
	}
	if box.Index < 0 || box.Index > len(b.text) {
		b.err = &BoxIndexError{Index: box.Index, TextLen: len(b.text)}
		return
	}
	b.boxes = append(b.boxes, box)
}

// Build resolves styles, shapes the text and returns the layout.
// Lines are not formed yet; call [Layout.BreakLines] afterwards.
func (b *RangedBuilder) Build() (*Layout, error) {
	if b.err != nil {
		return nil, b.err
	}
	spans := resolveRanged(b.defaults, b.decls, len(b.text))
	return buildLayout(b.ctx, b.fonts, b.text, spans, b.boxes, b.defaults)
}

// checkRange validates a caller-supplied byte range against the text.
func (b *RangedBuilder) checkRange(start, end int) error {
	switch {
	case start < 0 || end > len(b.text):
		return &RangeError{Start: start, End: end, TextLen: len(b.text), Reason: "out of bounds"}
	case start > end:
		return &RangeError{Start: start, End: end, TextLen: len(b.text), Reason: "inverted"}
	case !isRuneBoundary(b.text, start) || !isRuneBoundary(b.text, end):
		return &RangeError{Start: start, End: end, TextLen: len(b.text), Reason: "not a rune boundary"}
	}
	return nil
}

// isRuneBoundary reports whether i is the start of a rune (or the text end).
func isRuneBoundary(s string, i int) bool {
	return i == 0 || i == len(s) || utf8.RuneStart(s[i])
}

// resolveRanged flattens declarations into the span partition. It runs a
// boundary sweep: declarations enter and leave an active set at their range
// edges, and between consecutive edges the winning declaration per property
// kind is the one pushed last. Sorting the 2n edges dominates the cost.
func resolveRanged(defaults Style, decls []rangedDecl, textLen int) []StyleSpan {
	if len(decls) == 0 {
		return []StyleSpan{{Start: 0, End: textLen, Style: defaults}}
	}

	type edge struct {
		pos   int
		open  bool
		index int // into decls
	}
	edges := make([]edge, 0, 2*len(decls))
	for i := range decls {
		edges = append(edges, edge{pos: decls[i].start, open: true, index: i})
		edges = append(edges, edge{pos: decls[i].end, open: false, index: i})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].pos != edges[j].pos {
			return edges[i].pos < edges[j].pos
		}
		// Closes sort before opens at the same position so a declaration
		// ending where another begins never bleeds across the boundary.
		return !edges[i].open && edges[j].open
	})

	// active holds, per property kind, the seq numbers of declarations
	// covering the current position, kept sorted ascending.
	var active [numPropertyKinds][]int

	var spans []StyleSpan
	emit := func(start, end int) {
		if start >= end {
			return
		}
		style := defaults
		for kind := propertyKind(0); kind < numPropertyKinds; kind++ {
			seqs := active[kind]
			if len(seqs) == 0 {
				continue
			}
			decls[seqs[len(seqs)-1]].prop.apply(&style)
		}
		if n := len(spans); n > 0 && spans[n-1].Style.equal(&style) {
			spans[n-1].End = end
			return
		}
		spans = append(spans, StyleSpan{Start: start, End: end, Style: style})
	}

	pos := 0
	for _, e := range edges {
		if e.pos > pos {
			emit(pos, e.pos)
			pos = e.pos
		}
		kind := decls[e.index].prop.kind
		seq := decls[e.index].seq
		if e.open {
			seqs := active[kind]
			at := sort.SearchInts(seqs, seq)
			seqs = append(seqs, 0)
			copy(seqs[at+1:], seqs[at:])
			seqs[at] = seq
			active[kind] = seqs
		} else {
			seqs := active[kind]
			at := sort.SearchInts(seqs, seq)
			if at < len(seqs) && seqs[at] == seq {
				active[kind] = append(seqs[:at], seqs[at+1:]...)
			}
		}
	}
	emit(pos, textLen)

	if len(spans) == 0 {
		// Empty text still gets one span so the layout has a style to
		// draw line metrics from.
		spans = []StyleSpan{{Start: 0, End: textLen, Style: defaults}}
	}
	return spans
}
