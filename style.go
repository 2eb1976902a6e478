package textlayout

import (
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// Weight is a font weight on the usual 1..1000 OpenType scale.
type Weight float32

// Common font weights.
const (
	WeightThin       Weight = 100
	WeightExtraLight Weight = 200
	WeightLight      Weight = 300
	WeightNormal     Weight = 400
	WeightMedium     Weight = 500
	WeightSemiBold   Weight = 600
	WeightBold       Weight = 700
	WeightExtraBold  Weight = 800
	WeightBlack      Weight = 900
)

// Width is a font width (stretch) where 1.0 is normal.
type Width float32

// Common font widths.
const (
	WidthCondensed Width = 0.75
	WidthNormal    Width = 1.0
	WidthExpanded  Width = 1.25
)

// Slant specifies the slant style of a font.
type Slant uint8

const (
	// SlantUpright is regular, unslanted text.
	SlantUpright Slant = iota
	// SlantItalic selects a true italic design.
	SlantItalic
	// SlantOblique selects a slanted variant of the upright design.
	SlantOblique
)

// String returns the string representation of the slant.
func (s Slant) String() string {
	switch s {
	case SlantUpright:
		return "Upright"
	case SlantItalic:
		return "Italic"
	case SlantOblique:
		return "Oblique"
	default:
		return unknownStr
	}
}

// BidiControl is a style-level directional control. Controls are carried as
// resolved style attributes and fed into the bidi resolver as synthetic
// boundary markers, not as text.
type BidiControl uint8

const (
	// BidiNone applies no directional control.
	BidiNone BidiControl = iota
	// BidiIsolateLTR isolates the span and lays it out left-to-right.
	BidiIsolateLTR
	// BidiIsolateRTL isolates the span and lays it out right-to-left.
	BidiIsolateRTL
	// BidiIsolateAuto isolates the span with first-strong direction.
	BidiIsolateAuto
	// BidiOverrideLTR forces every character in the span left-to-right.
	BidiOverrideLTR
	// BidiOverrideRTL forces every character in the span right-to-left.
	BidiOverrideRTL
)

// String returns the string representation of the control.
func (b BidiControl) String() string {
	switch b {
	case BidiNone:
		return "None"
	case BidiIsolateLTR:
		return "IsolateLTR"
	case BidiIsolateRTL:
		return "IsolateRTL"
	case BidiIsolateAuto:
		return "IsolateAuto"
	case BidiOverrideLTR:
		return "OverrideLTR"
	case BidiOverrideRTL:
		return "OverrideRTL"
	default:
		return unknownStr
	}
}

// Variation is a variable-font axis setting, e.g. {"wght", 650}.
type Variation struct {
	Tag   string
	Value float32
}

// Feature is an OpenType feature setting, e.g. {"liga", 1}.
type Feature struct {
	Tag   string
	Value uint32
}

// Brush is the paint applied to glyphs of a span. The engine never
// interprets it beyond equality; renderers give it meaning.
type Brush = color.RGBA

// Style is a fully resolved style record for a span of text. All fields
// have concrete values after resolution; there is no inheritance left.
type Style struct {
	// FontStack is the ordered list of font family names to try.
	// Resolution replaces the whole stack, it never appends.
	FontStack []string

	// FontSize is the font size in pixels per em.
	FontSize float64

	// Weight, Width and Slant select a face within the families.
	Weight Weight
	Width  Width
	Slant  Slant

	// Variations are variable-font axis settings, sorted by tag.
	Variations []Variation

	// Features are OpenType feature settings, sorted by tag.
	Features []Feature

	// Locale is a BCP 47 language tag used for shaping and font selection.
	Locale string

	// Brush is the paint for glyphs of this span.
	Brush Brush

	// Underline and Strikethrough are decoration flags carried through to
	// runs so a renderer can draw decorations per run.
	Underline     bool
	Strikethrough bool

	// LineHeight is a multiplier over the font's natural line height.
	// Zero means the font's natural height.
	LineHeight float64

	// LetterSpacing is extra advance added after every cluster, in pixels.
	LetterSpacing float64

	// WordSpacing is extra advance added after every whitespace cluster,
	// in pixels.
	WordSpacing float64

	// Bidi is the directional control applied to the span.
	Bidi BidiControl
}

// DefaultStyle returns the style used when no declaration applies.
func DefaultStyle() Style {
	return Style{
		FontStack: []string{"sans-serif"},
		FontSize:  16,
		Weight:    WeightNormal,
		Width:     WidthNormal,
		Slant:     SlantUpright,
		Locale:    "en",
		Brush:     Brush{A: 0xFF},
	}
}

// equal reports whether two styles resolve identically. Used to merge
// adjacent spans after resolution.
func (s *Style) equal(o *Style) bool {
	if s.FontSize != o.FontSize || s.Weight != o.Weight || s.Width != o.Width ||
		s.Slant != o.Slant || s.Locale != o.Locale || s.Brush != o.Brush ||
		s.Underline != o.Underline || s.Strikethrough != o.Strikethrough ||
		s.LineHeight != o.LineHeight || s.LetterSpacing != o.LetterSpacing ||
		s.WordSpacing != o.WordSpacing || s.Bidi != o.Bidi {
		return false
	}
	if len(s.FontStack) != len(o.FontStack) ||
		len(s.Variations) != len(o.Variations) ||
		len(s.Features) != len(o.Features) {
		return false
	}
	for i := range s.FontStack {
		if s.FontStack[i] != o.FontStack[i] {
			return false
		}
	}
	for i := range s.Variations {
		if s.Variations[i] != o.Variations[i] {
			return false
		}
	}
	for i := range s.Features {
		if s.Features[i] != o.Features[i] {
			return false
		}
	}
	return true
}

// StyleSpan is a fully resolved style applied to a byte range of the text.
// Spans are contiguous, non-overlapping, ordered by start offset, and
// together cover the whole text.
type StyleSpan struct {
	// Start and End are the byte range, End exclusive.
	Start, End int
	// Style is the resolved style record.
	Style Style
}

// propertyKind discriminates the payload of a StyleProperty. An explicit
// kind tag doubles as the per-property deduplication key during resolution,
// keeping the model free of reflection.
type propertyKind uint8

const (
	propFontStack propertyKind = iota
	propFontSize
	propWeight
	propWidth
	propSlant
	propVariations
	propFeatures
	propLocale
	propBrush
	propUnderline
	propStrikethrough
	propLineHeight
	propLetterSpacing
	propWordSpacing
	propBidi

	numPropertyKinds
)

// StyleProperty is one declared style attribute. Construct values with the
// *Property functions; the zero value is not meaningful.
type StyleProperty struct {
	kind    propertyKind
	stack   []string
	num     float64
	flag    bool
	slant   Slant
	control BidiControl
	brush   Brush
	vars    []Variation
	feats   []Feature
	str     string
}

// FontStackProperty declares the ordered font family stack.
// Pushing a stack replaces any earlier stack on the overlap; stacks are
// resolved, never merged.
func FontStackProperty(families ...string) StyleProperty {
	return StyleProperty{kind: propFontStack, stack: families}
}

// FontSizeProperty declares the font size in pixels per em.
func FontSizeProperty(size float64) StyleProperty {
	return StyleProperty{kind: propFontSize, num: size}
}

// WeightProperty declares the font weight.
func WeightProperty(w Weight) StyleProperty {
	return StyleProperty{kind: propWeight, num: float64(w)}
}

// WidthProperty declares the font width (stretch).
func WidthProperty(w Width) StyleProperty {
	return StyleProperty{kind: propWidth, num: float64(w)}
}

// SlantProperty declares the font slant.
func SlantProperty(s Slant) StyleProperty {
	return StyleProperty{kind: propSlant, slant: s}
}

// VariationsProperty declares variable-font axis settings.
func VariationsProperty(vars ...Variation) StyleProperty {
	return StyleProperty{kind: propVariations, vars: vars}
}

// FeaturesProperty declares OpenType feature settings.
func FeaturesProperty(feats ...Feature) StyleProperty {
	return StyleProperty{kind: propFeatures, feats: feats}
}

// LocaleProperty declares the BCP 47 language tag.
func LocaleProperty(locale string) StyleProperty {
	return StyleProperty{kind: propLocale, str: locale}
}

// BrushProperty declares the glyph paint.
func BrushProperty(b Brush) StyleProperty {
	return StyleProperty{kind: propBrush, brush: b}
}

// UnderlineProperty declares the underline decoration flag.
func UnderlineProperty(on bool) StyleProperty {
	return StyleProperty{kind: propUnderline, flag: on}
}

// StrikethroughProperty declares the strikethrough decoration flag.
func StrikethroughProperty(on bool) StyleProperty {
	return StyleProperty{kind: propStrikethrough, flag: on}
}

// LineHeightProperty declares the line-height multiplier.
func LineHeightProperty(mult float64) StyleProperty {
	return StyleProperty{kind: propLineHeight, num: mult}
}

// LetterSpacingProperty declares extra per-cluster advance in pixels.
func LetterSpacingProperty(px float64) StyleProperty {
	return StyleProperty{kind: propLetterSpacing, num: px}
}

// WordSpacingProperty declares extra per-word advance in pixels.
func WordSpacingProperty(px float64) StyleProperty {
	return StyleProperty{kind: propWordSpacing, num: px}
}

// BidiProperty declares a style-level isolate or override.
func BidiProperty(c BidiControl) StyleProperty {
	return StyleProperty{kind: propBidi, control: c}
}

// apply writes the property's value into a style record.
func (p StyleProperty) apply(s *Style) {
	switch p.kind {
	case propFontStack:
		s.FontStack = p.stack
	case propFontSize:
		s.FontSize = p.num
	case propWeight:
		s.Weight = Weight(p.num)
	case propWidth:
		s.Width = Width(p.num)
	case propSlant:
		s.Slant = p.slant
	case propVariations:
		s.Variations = sortedVariations(p.vars)
	case propFeatures:
		s.Features = sortedFeatures(p.feats)
	case propLocale:
		s.Locale = p.str
	case propBrush:
		s.Brush = p.brush
	case propUnderline:
		s.Underline = p.flag
	case propStrikethrough:
		s.Strikethrough = p.flag
	case propLineHeight:
		s.LineHeight = p.num
	case propLetterSpacing:
		s.LetterSpacing = p.num
	case propWordSpacing:
		s.WordSpacing = p.num
	case propBidi:
		s.Bidi = p.control
	}
}

// sortedVariations returns a copy sorted by tag, latest value winning on
// duplicate tags.
func sortedVariations(vars []Variation) []Variation {
	if len(vars) == 0 {
		return nil
	}
	out := make([]Variation, 0, len(vars))
	for _, v := range vars {
		replaced := false
		for i := range out {
			if out[i].Tag == v.Tag {
				out[i] = v
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// sortedFeatures returns a copy sorted by tag, latest value winning on
// duplicate tags.
func sortedFeatures(feats []Feature) []Feature {
	if len(feats) == 0 {
		return nil
	}
	out := make([]Feature, 0, len(feats))
	for _, f := range feats {
		replaced := false
		for i := range out {
			if out[i].Tag == f.Tag {
				out[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// variationsKey encodes axis settings as a canonical string so cache keys
// compare by value even when the slices were built independently.
func variationsKey(vars []Variation) string {
	if len(vars) == 0 {
		return ""
	}
	var b strings.Builder
	for i, v := range vars {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(v.Tag)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(float64(v.Value), 'g', -1, 32))
	}
	return b.String()
}

// featuresKey encodes feature settings as a canonical string for cache keys.
func featuresKey(feats []Feature) string {
	if len(feats) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range feats {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(f.Tag)
		b.WriteByte('=')
		b.WriteString(strconv.FormatUint(uint64(f.Value), 10))
	}
	return b.String()
}

// stackKey encodes a font stack as a canonical string for provider queries.
func stackKey(stack []string) string {
	return strings.Join(stack, ",")
}
