package textlayout

import (
	"github.com/go-text/typesetting/language"
)

// BuiltinShaper maps each rune to one glyph using the font's advance
// metrics, without kerning, contextual forms or bidi mirroring. It exists
// for tests and for environments where deterministic output matters more
// than typographic quality; production text should use HarfbuzzShaper.
//
// A configurable ligature table folds known sequences into single glyphs
// so multi-rune cluster handling can be exercised deterministically.
type BuiltinShaper struct {
	// Ligatures lists rune sequences folded into one glyph, e.g. "fi".
	// Longer sequences match first.
	Ligatures []string
}

// NewData implements Shaper. The handle's own sfnt tables are the parsed
// representation; nothing further is derived.
func (s *BuiltinShaper) NewData(f *Font) (ShapeData, error) {
	return ShapeData{value: f}, nil
}

// NewInstance implements Shaper. Variations are ignored.
func (s *BuiltinShaper) NewInstance(d ShapeData, size float64, vars []Variation) (ShapeInstance, error) {
	return ShapeInstance{value: d.value}, nil
}

// NewPlan implements Shaper. Only the direction matters to this backend.
func (s *BuiltinShaper) NewPlan(f *Font, dir Direction, script language.Script, locale string, feats []Feature) (ShapePlan, error) {
	return ShapePlan{value: dir}, nil
}

// Shape implements Shaper.
func (s *BuiltinShaper) Shape(in ShapeInput) (ShapeOutput, error) {
	f := in.Font
	var out ShapeOutput
	for i := in.Start; i < in.End; {
		if n := s.ligatureAt(in.Text, i, in.End); n > 0 {
			adv := f.glyphAdvance(in.Text[i], in.Size)
			out.Glyphs = append(out.Glyphs, ShapedGlyph{
				ID:       f.glyphIndex(in.Text[i]),
				Cluster:  i,
				XAdvance: adv,
			})
			out.Advance += adv
			i += n
			continue
		}
		adv := f.glyphAdvance(in.Text[i], in.Size)
		out.Glyphs = append(out.Glyphs, ShapedGlyph{
			ID:       f.glyphIndex(in.Text[i]),
			Cluster:  i,
			XAdvance: adv,
		})
		out.Advance += adv
		i++
	}
	return out, nil
}

// ligatureAt reports the length of the longest configured ligature
// starting at rune index i, or 0 when none matches within the segment.
func (s *BuiltinShaper) ligatureAt(text []rune, i, end int) int {
	best := 0
	for _, lig := range s.Ligatures {
		seq := []rune(lig)
		if len(seq) <= best || i+len(seq) > end {
			continue
		}
		match := true
		for k, r := range seq {
			if text[i+k] != r {
				match = false
				break
			}
		}
		if match {
			best = len(seq)
		}
	}
	return best
}
