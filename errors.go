package textlayout

import (
	"errors"
	"fmt"
)

// Sentinel errors for the textlayout package.
var (
	// ErrFontUnavailable is returned by a FontProvider when a font resource
	// cannot be loaded. The shaping orchestrator treats it as a recoverable
	// miss and advances to the next fallback candidate.
	ErrFontUnavailable = errors.New("textlayout: font unavailable")

	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("textlayout: empty font data")

	// ErrUnbalancedScopes is returned by TreeBuilder.Build when more scopes
	// were pushed than popped.
	ErrUnbalancedScopes = errors.New("textlayout: unbalanced style scopes")

	// ErrNoScope is returned by TreeBuilder.Pop when no scope is open.
	ErrNoScope = errors.New("textlayout: pop without open scope")
)

// RangeError reports a caller-supplied byte range that violates the builder
// contract: out of bounds for the text, inverted, or not aligned to UTF-8
// rune boundaries. It is surfaced before any Layout is produced.
type RangeError struct {
	Start, End int
	TextLen    int
	Reason     string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("textlayout: invalid range [%d,%d) for text of %d bytes: %s",
		e.Start, e.End, e.TextLen, e.Reason)
}

// BoxIndexError reports an inline box anchored outside the text.
type BoxIndexError struct {
	Index   int
	TextLen int
}

func (e *BoxIndexError) Error() string {
	return fmt.Sprintf("textlayout: inline box index %d out of range for text of %d bytes",
		e.Index, e.TextLen)
}
