package textlayout

import (
	"strings"
)

// StaticProvider is a FontProvider over an explicitly registered set of
// faces. It matches families case-insensitively and selects within a
// family by width, then slant, then weight, synthesizing bold or italic
// when no registered face carries the requested attribute.
//
// The first registered face doubles as the face of last resort: a query
// whose whole family stack is unknown resolves to it rather than failing,
// so text never silently disappears. Rune coverage fallback walks faces
// in registration order.
type StaticProvider struct {
	families map[string][]*Font
	all      []*Font
}

// NewStaticProvider returns an empty provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{families: make(map[string][]*Font)}
}

// Register adds a parsed face under its family name.
func (p *StaticProvider) Register(f *Font) {
	key := strings.ToLower(f.Family())
	p.families[key] = append(p.families[key], f)
	p.all = append(p.all, f)
}

// RegisterData parses font data and registers the face in one step.
func (p *StaticProvider) RegisterData(data []byte, family string, weight Weight, width Width, slant Slant) (*Font, error) {
	f, err := NewFont(data, family, weight, width, slant)
	if err != nil {
		return nil, err
	}
	p.Register(f)
	return f, nil
}

// ResolveFont implements FontProvider.
func (p *StaticProvider) ResolveFont(q FontQuery) (*Font, Synthesis, error) {
	if len(p.all) == 0 {
		return nil, Synthesis{}, ErrFontUnavailable
	}
	for _, family := range q.Families {
		faces := p.families[strings.ToLower(family)]
		if len(faces) == 0 {
			continue
		}
		f := bestMatch(faces, q)
		return f, synthesize(f, q), nil
	}
	Logger().Debug("font stack unresolved, using face of last resort",
		"families", strings.Join(q.Families, ","))
	f := p.all[0]
	return f, synthesize(f, q), nil
}

// ResolveFontForRune implements FontProvider.
func (p *StaticProvider) ResolveFontForRune(q FontQuery, r rune) (*Font, Synthesis, error) {
	for _, family := range q.Families {
		for _, f := range p.families[strings.ToLower(family)] {
			if f.Covers(r) {
				return f, synthesize(f, q), nil
			}
		}
	}
	for _, f := range p.all {
		if f.Covers(r) {
			return f, synthesize(f, q), nil
		}
	}
	return nil, Synthesis{}, ErrFontUnavailable
}

// bestMatch selects the face closest to the query. Width distance
// dominates, then slant, then weight, mirroring CSS font matching order.
func bestMatch(faces []*Font, q FontQuery) *Font {
	best := faces[0]
	bestScore := matchScore(best, q)
	for _, f := range faces[1:] {
		if s := matchScore(f, q); s < bestScore {
			best, bestScore = f, s
		}
	}
	return best
}

func matchScore(f *Font, q FontQuery) float64 {
	widthDist := float64(f.Width() - q.Width)
	if widthDist < 0 {
		widthDist = -widthDist
	}
	slantDist := 0.0
	if f.Slant() != q.Slant {
		slantDist = 1
	}
	weightDist := float64(f.Weight() - q.Weight)
	if weightDist < 0 {
		weightDist = -weightDist
	}
	return widthDist*1e6 + slantDist*1e3 + weightDist/1000
}

// synthesize computes fake-bold and fake-italic adjustments for a face
// that does not natively satisfy the query.
func synthesize(f *Font, q FontQuery) Synthesis {
	var syn Synthesis
	if q.Weight >= WeightSemiBold && f.Weight() <= q.Weight-150 {
		syn.Embolden = true
	}
	if q.Slant != SlantUpright && f.Slant() == SlantUpright {
		syn.SkewX = 14
	}
	return syn
}
