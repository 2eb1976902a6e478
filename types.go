package textlayout

// unknownStr is the string returned for unknown enum values.
const unknownStr = "Unknown"

// GlyphID is a glyph index within a font.
type GlyphID uint32

// Direction specifies horizontal text direction.
type Direction uint8

const (
	// DirectionLTR is left-to-right text (English, French, etc.)
	DirectionLTR Direction = iota
	// DirectionRTL is right-to-left text (Arabic, Hebrew)
	DirectionRTL
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionLTR:
		return "LTR"
	case DirectionRTL:
		return "RTL"
	default:
		return unknownStr
	}
}

// levelDirection maps a bidi embedding level to a direction.
// Even levels are left-to-right, odd levels right-to-left.
func levelDirection(level uint8) Direction {
	if level&1 == 1 {
		return DirectionRTL
	}
	return DirectionLTR
}

// Alignment specifies horizontal line alignment within the container width.
type Alignment uint8

const (
	// AlignStart aligns lines to the leading edge of the base direction
	// (left for LTR paragraphs, right for RTL paragraphs).
	AlignStart Alignment = iota
	// AlignCenter centers lines horizontally.
	AlignCenter
	// AlignEnd aligns lines to the trailing edge of the base direction.
	AlignEnd
	// AlignJustify stretches lines to the container width by widening
	// inter-word gaps. The last line of each paragraph is never justified.
	AlignJustify
)

// String returns the string representation of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "Start"
	case AlignCenter:
		return "Center"
	case AlignEnd:
		return "End"
	case AlignJustify:
		return "Justify"
	default:
		return unknownStr
	}
}

// Affinity disambiguates a cursor position that sits exactly at a line or
// bidi-run boundary. The byte index alone is ambiguous there: the caret can
// attach to the preceding visual run or to the following one.
type Affinity uint8

const (
	// AffinityDownstream attaches the caret to the text that follows the
	// byte index in logical order. This is the default for fresh cursors.
	AffinityDownstream Affinity = iota
	// AffinityUpstream attaches the caret to the text that precedes the
	// byte index in logical order.
	AffinityUpstream
)

// String returns the string representation of the affinity.
func (a Affinity) String() string {
	switch a {
	case AffinityDownstream:
		return "Downstream"
	case AffinityUpstream:
		return "Upstream"
	default:
		return unknownStr
	}
}

// BreakReason records why a line ended.
type BreakReason uint8

const (
	// BreakNone marks the final line of the text (no break after it).
	BreakNone BreakReason = iota
	// BreakExplicit marks a mandatory break from a paragraph separator.
	BreakExplicit
	// BreakSoft marks a break taken at a regular line-break opportunity.
	BreakSoft
	// BreakEmergency marks a forced break inside an unbreakable sequence
	// that was longer than the maximum advance.
	BreakEmergency
)

// String returns the string representation of the break reason.
func (r BreakReason) String() string {
	switch r {
	case BreakNone:
		return "None"
	case BreakExplicit:
		return "Explicit"
	case BreakSoft:
		return "Soft"
	case BreakEmergency:
		return "Emergency"
	default:
		return unknownStr
	}
}

// Rect is an axis-aligned rectangle used for caret and selection geometry.
type Rect struct {
	// MinX, MinY is the top-left corner.
	MinX, MinY float64
	// MaxX, MaxY is the bottom-right corner.
	MaxX, MaxY float64
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the height of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool { return r.MinX >= r.MaxX || r.MinY >= r.MaxY }
