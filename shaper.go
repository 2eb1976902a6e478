package textlayout

import (
	"github.com/go-text/typesetting/language"
)

// ShapeData is a shaping backend's parsed representation of a font file.
// The contents are opaque to the layout engine; backends store whatever
// they need and get it back through ShapeInput. Values are cached per
// FontID by the FontContext.
type ShapeData struct {
	value any
}

// ShapeInstance is a sized, variation-applied instance of a face, cached
// per (font, size, variations).
type ShapeInstance struct {
	value any
}

// ShapePlan is precomputed shaping state for a fixed combination of font,
// direction, script, language and features, cached per that combination.
type ShapePlan struct {
	value any
}

// ShapedGlyph is one glyph produced by shaping, positioned relative to
// the pen at the start of its segment.
type ShapedGlyph struct {
	// ID is the glyph index within its font.
	ID GlyphID

	// Cluster is the index of the first rune this glyph maps to, relative
	// to the start of the paragraph text.
	Cluster int

	// XAdvance is the pen movement after this glyph, in pixels.
	XAdvance float64

	// XOffset and YOffset displace the glyph without moving the pen.
	// YOffset is positive upward.
	XOffset float64
	YOffset float64
}

// ShapeInput is one uniform segment handed to a shaping backend: a rune
// range over the paragraph text in which style, font, direction and
// script never change.
type ShapeInput struct {
	// Text is the full paragraph. Backends may read outside the segment
	// for shaping context but emit glyphs only for it.
	Text []rune

	// Start and End delimit the segment in runes, End exclusive.
	Start, End int

	// Font is the resolved face, with Instance and Plan obtained from
	// the FontContext caches for this segment's properties.
	Font     *Font
	Instance ShapeInstance
	Plan     ShapePlan

	Direction Direction
	Script    language.Script
	Locale    string
	Size      float64
	Features  []Feature
}

// ShapeOutput is the result of shaping one segment.
type ShapeOutput struct {
	// Glyphs are in logical order regardless of direction; callers apply
	// visual reordering later. Cluster values are non-decreasing.
	Glyphs []ShapedGlyph

	// Advance is the sum of glyph advances, in pixels.
	Advance float64
}

// Shaper converts uniform text segments into positioned glyphs. The three
// New methods build the cacheable state layers; Shape consumes them.
//
// Implementations need not be safe for concurrent use. The FontContext
// calls them from a single goroutine at a time.
type Shaper interface {
	// NewData parses f into the backend's font representation.
	NewData(f *Font) (ShapeData, error)

	// NewInstance applies size and variation settings to parsed data.
	NewInstance(d ShapeData, size float64, vars []Variation) (ShapeInstance, error)

	// NewPlan precomputes shaping state for a segment property set.
	NewPlan(f *Font, dir Direction, script language.Script, locale string, feats []Feature) (ShapePlan, error)

	// Shape produces glyphs for one segment.
	Shape(in ShapeInput) (ShapeOutput, error)
}
