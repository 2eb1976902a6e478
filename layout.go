package textlayout

import (
	"sort"

	"github.com/go-text/typesetting/segmenter"
)

// InlineBox is a caller-measured rectangle embedded in the text flow, for
// inline images, widgets or other replaced content. The engine reserves
// its space and carries it through breaking and alignment; drawing it is
// the caller's business.
type InlineBox struct {
	// Index is the byte offset in the text where the box sits. Multiple
	// boxes may share an offset; they keep their insertion order.
	Index int

	// Width and Height are the reserved extent in pixels.
	Width, Height float64
}

// Context holds the scratch state of layout building: analysis buffers,
// bidi working storage and direction configuration. Reusing one Context
// across builds avoids reallocating the buffers.
//
// A Context must not be used from multiple goroutines at once.
type Context struct {
	runes    []rune
	runeByte []int
	info     []charInfo
	seg      segmenter.Segmenter

	levels    []uint8
	shadow    []bidiEntry
	baseLevel uint8

	baseDir Direction
	autoDir bool
}

// NewContext returns a layout context with automatic base direction
// detection.
func NewContext() *Context {
	return &Context{autoDir: true}
}

// SetDirection forces the paragraph base direction instead of detecting
// it from the first strong character.
func (c *Context) SetDirection(d Direction) {
	c.baseDir = d
	c.autoDir = false
}

// SetAutoDirection restores first-strong-character direction detection.
func (c *Context) SetAutoDirection() {
	c.autoDir = true
}

// Layout is a fully shaped paragraph: glyphs, clusters and runs in
// logical order, plus lines once BreakLines has run. A Layout is
// self-contained; the Context it was built with can be reused or
// discarded.
type Layout struct {
	text     string
	runes    []rune
	runeByte []int
	info     []charInfo

	levels    []uint8
	baseLevel uint8

	spans []StyleSpan
	boxes []InlineBox

	glyphs   []ShapedGlyph
	clusters []Cluster
	runs     []Run

	// defaultMetrics carries the default style's face metrics for empty
	// text, where no run exists to provide line height.
	defaultMetrics Metrics
	defaultLineH   float64

	lines       []Line
	clusterX    []float64
	clusterLine []int
	maxWidth    float64
	alignment   Alignment
	width       float64
	height      float64
}

// buildLayout runs the analysis, bidi and shaping passes and assembles
// the layout. Line breaking is left to the caller.
func buildLayout(ctx *Context, fonts *FontContext, text string, spans []StyleSpan, boxes []InlineBox, defaults Style) (*Layout, error) {
	ctx.analyze(text)
	ctx.resolveBidi(spans)

	l := &Layout{
		text:      text,
		runes:     append([]rune(nil), ctx.runes...),
		runeByte:  append([]int(nil), ctx.runeByte...),
		info:      append([]charInfo(nil), ctx.info...),
		levels:    append([]uint8(nil), ctx.levels...),
		baseLevel: ctx.baseLevel,
		spans:     spans,
		boxes:     append([]InlineBox(nil), boxes...),
	}
	sort.SliceStable(l.boxes, func(i, j int) bool {
		return l.boxes[i].Index < l.boxes[j].Index
	})

	if f, _, err := fonts.provider.ResolveFont(styleQuery(&defaults)); err == nil {
		l.defaultMetrics = f.Metrics(defaults.FontSize)
	}
	l.defaultLineH = defaults.LineHeight

	if err := shapeText(ctx, fonts, l); err != nil {
		return nil, err
	}
	return l, nil
}

// styleQuery derives the font query of a resolved style.
func styleQuery(s *Style) FontQuery {
	return FontQuery{
		Families: s.FontStack,
		Weight:   s.Weight,
		Width:    s.Width,
		Slant:    s.Slant,
		Locale:   s.Locale,
	}
}

// Text returns the text the layout was built from.
func (l *Layout) Text() string { return l.text }

// Runs returns the layout's runs in logical order.
func (l *Layout) Runs() []Run { return l.runs }

// Clusters returns the layout's clusters in logical order.
func (l *Layout) Clusters() []Cluster { return l.clusters }

// Glyphs returns all shaped glyphs. Runs and clusters index into this
// slice.
func (l *Layout) Glyphs() []ShapedGlyph { return l.glyphs }

// Lines returns the lines formed by the last BreakLines call, or nil.
func (l *Layout) Lines() []Line { return l.lines }

// Spans returns the resolved style partition.
func (l *Layout) Spans() []StyleSpan { return l.spans }

// Boxes returns the inline boxes in text order.
func (l *Layout) Boxes() []InlineBox { return l.boxes }

// BaseDirection returns the paragraph's resolved base direction.
func (l *Layout) BaseDirection() Direction { return levelDirection(l.baseLevel) }

// Width returns the width of the widest line after breaking.
func (l *Layout) Width() float64 { return l.width }

// Height returns the total height of all lines after breaking.
func (l *Layout) Height() float64 { return l.height }

// FullWidth returns the width of the widest line including its trailing
// whitespace.
func (l *Layout) FullWidth() float64 {
	var w float64
	for i := range l.lines {
		ln := &l.lines[i]
		if full := ln.Advance + ln.TrailingWhitespace; full > w {
			w = full
		}
	}
	return w
}

// ContentWidths returns the smallest and largest wrap widths that make a
// difference: Min is the widest unbreakable segment, Max the width of the
// text with only mandatory breaks taken.
func (l *Layout) ContentWidths() (min, max float64) {
	var seg, line float64
	for i := range l.clusters {
		cl := &l.clusters[i]
		line += cl.Advance
		if !cl.IsWhitespace() {
			seg += cl.Advance
		}
		if cl.IsWhitespace() || cl.flags&clusterBreakAfter != 0 {
			if seg > min {
				min = seg
			}
			seg = 0
		}
		if cl.flags&clusterMandatoryAfter != 0 {
			if line > max {
				max = line
			}
			line = 0
		}
	}
	if seg > min {
		min = seg
	}
	if line > max {
		max = line
	}
	return min, max
}

// styleOf returns the resolved style of run r.
func (l *Layout) styleOf(r *Run) *Style {
	return &l.spans[r.Style].Style
}

// lineOf returns the index of the line containing cluster ci. Valid only
// after BreakLines.
func (l *Layout) lineOf(ci int) int {
	if ci < len(l.clusterLine) {
		return l.clusterLine[ci]
	}
	return len(l.lines) - 1
}
