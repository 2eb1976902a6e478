// Package textlayout is a style-aware, bidirectional text layout engine.
// It turns a string plus per-range style declarations into shaped, positioned
// glyph runs organized into lines, and supports cursor and selection
// navigation over the result.
//
// The pipeline follows a separation of concerns:
//
//   - Style resolution: ranged or tree-structured style declarations are
//     flattened into a non-overlapping sequence of style spans covering the
//     whole text.
//   - Analysis: a single pass collects per-rune Unicode properties (bidi
//     class, script, line-break opportunities, grapheme and word boundaries).
//   - Bidi resolution: embedding levels per the Unicode bidirectional
//     algorithm, including style-level isolates and overrides.
//   - Shaping: maximal spans sharing style, direction, script and resolved
//     font are handed to a pluggable Shaper (HarfBuzz via go-text/typesetting
//     by default), with layered LRU caches for font data, variable-font
//     instances and shape plans.
//   - Line breaking and alignment: greedy breaking against a maximum advance
//     with mandatory and emergency breaks, then start/center/end/justify
//     alignment. A layout can be re-broken and re-aligned without reshaping.
//   - Cursor navigation: movement in visual order across bidi runs, word,
//     line and paragraph granularity, hit testing and caret geometry.
//
// # Example usage
//
//	fonts := textlayout.NewFontContext(provider)
//	ctx := textlayout.NewContext()
//
//	style := textlayout.DefaultStyle()
//	style.FontStack = []string{"Roboto"}
//	style.FontSize = 16
//
//	b := ctx.RangedBuilder(fonts, "Hello, layout!", style)
//	b.Push(textlayout.FontSizeProperty(24), 0, 5)
//	layout, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	layout.BreakLines(200)
//	layout.AlignLines(200, textlayout.AlignStart)
//
// A Context holds reusable scratch buffers and is intended to be reused
// across many builds by a single goroutine. A FontContext owns the font
// provider and the shaping caches; it is passed explicitly into each build
// rather than living in a package global. Neither is safe for concurrent
// use; independent goroutines should each own their own pair.
package textlayout
