package textlayout

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

// HarfbuzzShaper shapes text through the go-text/typesetting port of
// HarfBuzz. This is the default backend: it handles kerning, ligatures
// and complex scripts.
//
// HarfbuzzShaper is not safe for concurrent use; the underlying shaper
// keeps mutable buffers between calls.
type HarfbuzzShaper struct {
	shaper shaping.HarfbuzzShaper
}

// NewHarfbuzzShaper returns a HarfBuzz shaping backend.
func NewHarfbuzzShaper() *HarfbuzzShaper {
	return &HarfbuzzShaper{}
}

// hbPlan is the cached per-(font, direction, script, language, features)
// state: everything about a shaping.Input that does not depend on the
// text or the face instance.
type hbPlan struct {
	direction di.Direction
	script    language.Script
	language  language.Language
	features  []shaping.FontFeature
}

// NewData implements Shaper by parsing the font with typesetting.
// The thread-safe *font.Font is cached, not the stateful *font.Face.
func (s *HarfbuzzShaper) NewData(f *Font) (ShapeData, error) {
	face, err := font.ParseTTF(bytes.NewReader(f.Data()))
	if err != nil {
		return ShapeData{}, fmt.Errorf("textlayout: parse font for shaping: %w", err)
	}
	return ShapeData{value: face.Font}, nil
}

// NewInstance implements Shaper. The instance is a font.Face with the
// requested variation coordinates applied; size is handled per shaping
// call, so faces differing only in size share an instance through the
// variations key.
func (s *HarfbuzzShaper) NewInstance(d ShapeData, size float64, vars []Variation) (ShapeInstance, error) {
	parsed, ok := d.value.(*font.Font)
	if !ok {
		return ShapeInstance{}, fmt.Errorf("textlayout: shape data is not a harfbuzz font (got %T)", d.value)
	}
	face := font.NewFace(parsed)
	if len(vars) > 0 {
		fv := make([]font.Variation, len(vars))
		for i, v := range vars {
			fv[i] = font.Variation{Tag: ot.MustNewTag(v.Tag), Value: v.Value}
		}
		face.SetVariations(fv)
	}
	return ShapeInstance{value: face}, nil
}

// NewPlan implements Shaper.
func (s *HarfbuzzShaper) NewPlan(f *Font, dir Direction, script language.Script, locale string, feats []Feature) (ShapePlan, error) {
	plan := &hbPlan{
		direction: di.DirectionLTR,
		script:    script,
		language:  language.NewLanguage(locale),
	}
	if dir == DirectionRTL {
		plan.direction = di.DirectionRTL
	}
	if len(feats) > 0 {
		plan.features = make([]shaping.FontFeature, len(feats))
		for i, ft := range feats {
			plan.features[i] = shaping.FontFeature{Tag: ot.MustNewTag(ft.Tag), Value: ft.Value}
		}
	}
	return ShapePlan{value: plan}, nil
}

// Shape implements Shaper.
func (s *HarfbuzzShaper) Shape(in ShapeInput) (ShapeOutput, error) {
	face, ok := in.Instance.value.(*font.Face)
	if !ok {
		return ShapeOutput{}, fmt.Errorf("textlayout: shape instance is not a harfbuzz face (got %T)", in.Instance.value)
	}
	plan, ok := in.Plan.value.(*hbPlan)
	if !ok {
		return ShapeOutput{}, fmt.Errorf("textlayout: shape plan is not a harfbuzz plan (got %T)", in.Plan.value)
	}

	input := shaping.Input{
		Text:         in.Text,
		RunStart:     in.Start,
		RunEnd:       in.End,
		Direction:    plan.direction,
		Face:         face,
		Size:         floatToFixed(in.Size),
		Script:       plan.script,
		Language:     plan.language,
		FontFeatures: plan.features,
	}
	out := s.shaper.Shape(input)

	result := ShapeOutput{Glyphs: make([]ShapedGlyph, len(out.Glyphs))}
	for i, g := range out.Glyphs {
		// HarfBuzz emits RTL segments in visual order; store logical
		// order and let line layout reorder.
		at := i
		if plan.direction == di.DirectionRTL {
			at = len(out.Glyphs) - 1 - i
		}
		adv := fixedToFloat(g.Advance)
		result.Glyphs[at] = ShapedGlyph{
			ID:       GlyphID(g.GlyphID),
			Cluster:  g.TextIndex(),
			XAdvance: adv,
			XOffset:  fixedToFloat(g.XOffset),
			YOffset:  fixedToFloat(g.YOffset),
		}
		result.Advance += adv
	}
	return result, nil
}
