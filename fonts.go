package textlayout

import (
	"fmt"
	"sync/atomic"

	"github.com/go-text/typesetting/language"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/textlayout/cache"
)

// FontID uniquely identifies a registered font face. IDs are assigned at
// parse time and are stable for the lifetime of the process, which makes
// them usable as cache keys.
type FontID uint32

var nextFontID atomic.Uint32

// Synthesis describes adjustments a renderer should apply when the matched
// face does not natively provide the requested style.
type Synthesis struct {
	// Embolden requests synthetic bold.
	Embolden bool
	// SkewX is a horizontal shear in degrees for synthetic italic.
	// Zero means no shear.
	SkewX float32
}

// Metrics holds face-level metrics scaled to a font size, in pixels.
// Ascent and Descent are both positive distances from the baseline.
type Metrics struct {
	Ascent    float64
	Descent   float64
	LineGap   float64
	XHeight   float64
	CapHeight float64

	// Decoration geometry. Offsets are positive below the baseline for
	// underline and positive above for strikeout.
	UnderlineOffset float64
	UnderlineSize   float64
	StrikeoutOffset float64
	StrikeoutSize   float64
}

// LineHeight returns the natural line height: ascent + descent + line gap.
func (m Metrics) LineHeight() float64 {
	return m.Ascent + m.Descent + m.LineGap
}

// Font is a handle to a parsed font face. The raw data is retained so a
// shaping backend can build its own representation from it; coverage and
// metric queries go through the sfnt tables parsed here.
//
// A Font is immutable after creation and safe for concurrent use except
// for the metric methods, which share an internal buffer and follow the
// layout context's single-goroutine discipline.
type Font struct {
	id     FontID
	family string
	weight Weight
	width  Width
	slant  Slant
	data   []byte
	sfnt   *opentype.Font
	buf    sfnt.Buffer
}

// NewFont parses font data (TTF or OTF) into a handle. The attributes
// describe the face so providers can match requests against it.
func NewFont(data []byte, family string, weight Weight, width Width, slant Slant) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("textlayout: parse font: %w", err)
	}
	f := &Font{
		id:     FontID(nextFontID.Add(1)),
		family: family,
		weight: weight,
		width:  width,
		slant:  slant,
		data:   data,
		sfnt:   parsed,
	}
	if f.family == "" {
		if name, err := parsed.Name(nil, sfnt.NameIDFamily); err == nil {
			f.family = name
		}
	}
	return f, nil
}

// ID returns the process-unique identifier of this face.
func (f *Font) ID() FontID { return f.id }

// Family returns the font family name.
func (f *Font) Family() string { return f.family }

// Weight returns the face's design weight.
func (f *Font) Weight() Weight { return f.weight }

// Width returns the face's design width.
func (f *Font) Width() Width { return f.width }

// Slant returns the face's design slant.
func (f *Font) Slant() Slant { return f.slant }

// Data returns the raw font file bytes.
func (f *Font) Data() []byte { return f.data }

// Covers reports whether the face has a glyph for r. The missing-glyph
// index 0 does not count as coverage.
func (f *Font) Covers(r rune) bool {
	idx, err := f.sfnt.GlyphIndex(&f.buf, r)
	return err == nil && idx != 0
}

// Metrics returns face metrics scaled to size pixels per em. Underline and
// strikeout geometry is derived from the general metrics; sfnt does not
// surface the post table values.
func (f *Font) Metrics(size float64) Metrics {
	ppem := fixed.Int26_6(size * 64)
	sm, err := f.sfnt.Metrics(&f.buf, ppem, xfont.HintingNone)
	if err != nil {
		return Metrics{Ascent: size * 0.75, Descent: size * 0.25}
	}
	ascent := fixedToFloat(sm.Ascent)
	descent := fixedToFloat(sm.Descent)
	if descent < 0 {
		descent = -descent
	}
	m := Metrics{
		Ascent:    ascent,
		Descent:   descent,
		LineGap:   fixedToFloat(sm.Height) - ascent - descent,
		XHeight:   fixedToFloat(sm.XHeight),
		CapHeight: fixedToFloat(sm.CapHeight),
	}
	if m.LineGap < 0 {
		m.LineGap = 0
	}
	m.UnderlineSize = size / 14
	m.StrikeoutSize = size / 14
	m.UnderlineOffset = descent * 0.5
	m.StrikeoutOffset = m.XHeight * 0.5
	if m.StrikeoutOffset == 0 {
		m.StrikeoutOffset = ascent * 0.4
	}
	return m
}

// glyphIndex returns the glyph index for r, or 0 when uncovered.
func (f *Font) glyphIndex(r rune) GlyphID {
	idx, err := f.sfnt.GlyphIndex(&f.buf, r)
	if err != nil {
		return 0
	}
	return GlyphID(idx)
}

// glyphAdvance returns the advance width of r at size pixels per em.
func (f *Font) glyphAdvance(r rune, size float64) float64 {
	idx, err := f.sfnt.GlyphIndex(&f.buf, r)
	if err != nil {
		return 0
	}
	adv, err := f.sfnt.GlyphAdvance(&f.buf, idx, floatToFixed(size), xfont.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat(adv)
}

// fixedToFloat converts a 26.6 fixed-point value to float64 pixels.
func fixedToFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}

// floatToFixed converts float64 pixels to 26.6 fixed point.
func floatToFixed(x float64) fixed.Int26_6 {
	return fixed.Int26_6(x*64 + 0.5)
}

// FontQuery describes the face a span of text wants: an ordered family
// stack plus the style attributes used to select within each family.
type FontQuery struct {
	Families []string
	Weight   Weight
	Width    Width
	Slant    Slant
	Locale   string
}

// FontProvider resolves queries to concrete faces. Implementations decide
// how families map to faces and what fallback faces exist beyond the
// requested stack.
type FontProvider interface {
	// ResolveFont returns the face matching the query most closely,
	// walking the family stack in order. It returns ErrFontUnavailable
	// when no family in the stack is known.
	ResolveFont(q FontQuery) (*Font, Synthesis, error)

	// ResolveFontForRune returns a face that covers r, preferring the
	// query's families and then any fallback the provider knows. It
	// returns ErrFontUnavailable when no known face covers r.
	ResolveFontForRune(q FontQuery, r rune) (*Font, Synthesis, error)
}

// instanceKey identifies a sized, variated instance of a face, including
// any synthesis applied to it.
type instanceKey struct {
	font       FontID
	size       float64
	synthesis  Synthesis
	variations string
}

// planKey identifies a shaping plan. Plans depend on everything that
// changes shaper state selection but not on the text itself.
type planKey struct {
	font      FontID
	direction Direction
	script    language.Script
	locale    string
	features  string
}

// FontContext owns a provider and the three shaping cache layers: parsed
// shaper data per face, sized instances, and shaping plans. It is the
// long-lived half of the layout API; a FontContext is typically created
// once and shared across many layout contexts.
//
// FontContext is not safe for concurrent use. Callers that share one
// across goroutines must serialize access.
type FontContext struct {
	provider FontProvider
	shaper   Shaper

	data      *cache.LRU[FontID, ShapeData]
	instances *cache.LRU[instanceKey, ShapeInstance]
	plans     *cache.LRU[planKey, ShapePlan]
}

// FontContextOption configures a FontContext.
type FontContextOption func(*FontContext)

// WithShaper selects the shaping backend. The default is the HarfBuzz
// backend.
func WithShaper(s Shaper) FontContextOption {
	return func(fc *FontContext) { fc.shaper = s }
}

// WithCacheCapacity sets the capacity of each cache layer.
func WithCacheCapacity(n int) FontContextOption {
	return func(fc *FontContext) {
		fc.data = cache.New[FontID, ShapeData](n)
		fc.instances = cache.New[instanceKey, ShapeInstance](n)
		fc.plans = cache.New[planKey, ShapePlan](n)
	}
}

// NewFontContext creates a font context over the given provider.
func NewFontContext(provider FontProvider, opts ...FontContextOption) *FontContext {
	fc := &FontContext{
		provider:  provider,
		data:      cache.New[FontID, ShapeData](cache.DefaultCapacity),
		instances: cache.New[instanceKey, ShapeInstance](cache.DefaultCapacity),
		plans:     cache.New[planKey, ShapePlan](cache.DefaultCapacity),
	}
	for _, opt := range opts {
		opt(fc)
	}
	if fc.shaper == nil {
		fc.shaper = NewHarfbuzzShaper()
	}
	return fc
}

// Provider returns the font provider this context resolves against.
func (fc *FontContext) Provider() FontProvider { return fc.provider }

// shapeData returns the shaper's parsed representation of f, building and
// caching it on first use.
func (fc *FontContext) shapeData(f *Font) (ShapeData, error) {
	if d, ok := fc.data.Get(f.id); ok {
		return d, nil
	}
	d, err := fc.shaper.NewData(f)
	if err != nil {
		return ShapeData{}, err
	}
	fc.data.Put(f.id, d)
	return d, nil
}

// shapeInstance returns a sized, variated instance of f.
func (fc *FontContext) shapeInstance(f *Font, size float64, syn Synthesis, vars []Variation) (ShapeInstance, error) {
	key := instanceKey{font: f.id, size: size, synthesis: syn, variations: variationsKey(vars)}
	if inst, ok := fc.instances.Get(key); ok {
		return inst, nil
	}
	d, err := fc.shapeData(f)
	if err != nil {
		return ShapeInstance{}, err
	}
	inst, err := fc.shaper.NewInstance(d, size, vars)
	if err != nil {
		return ShapeInstance{}, err
	}
	fc.instances.Put(key, inst)
	return inst, nil
}

// shapePlan returns a shaping plan for the given segment properties.
func (fc *FontContext) shapePlan(f *Font, dir Direction, script language.Script, locale string, feats []Feature) (ShapePlan, error) {
	key := planKey{
		font:      f.id,
		direction: dir,
		script:    script,
		locale:    locale,
		features:  featuresKey(feats),
	}
	if p, ok := fc.plans.Get(key); ok {
		return p, nil
	}
	p, err := fc.shaper.NewPlan(f, dir, script, locale, feats)
	if err != nil {
		return ShapePlan{}, err
	}
	fc.plans.Put(key, p)
	return p, nil
}

// CacheStats reports hit statistics for the data, instance and plan
// layers, in that order.
func (fc *FontContext) CacheStats() (data, instance, plan cache.Stats) {
	return fc.data.Stats(), fc.instances.Stats(), fc.plans.Stats()
}

// PruneCaches drops all cached shaper state. Registered fonts are not
// affected; subsequent layouts rebuild what they need.
func (fc *FontContext) PruneCaches() {
	fc.data.Clear()
	fc.instances.Clear()
	fc.plans.Clear()
	Logger().Debug("shaper caches pruned")
}
