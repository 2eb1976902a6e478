package textlayout

import (
	"testing"
)

func TestShapeCacheReuse(t *testing.T) {
	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	ctx := NewContext()

	if _, err := ctx.RangedBuilder(fc, "hello", testStyle()).Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	data, inst, plan := fc.CacheStats()
	if data.Len == 0 || inst.Len == 0 || plan.Len == 0 {
		t.Fatalf("caches empty after build: %+v %+v %+v", data, inst, plan)
	}

	if _, err := ctx.RangedBuilder(fc, "world", testStyle()).Build(); err != nil {
		t.Fatalf("second build: %v", err)
	}
	data2, inst2, plan2 := fc.CacheStats()
	if inst2.Hits <= inst.Hits || plan2.Hits <= plan.Hits {
		t.Errorf("instance/plan caches not reused: %+v %+v", inst2, plan2)
	}
	if data2.Len != data.Len {
		t.Errorf("same face grew the data cache: %d -> %d", data.Len, data2.Len)
	}
}

func TestShapeCacheKeyedBySize(t *testing.T) {
	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	ctx := NewContext()

	if _, err := ctx.RangedBuilder(fc, "a", testStyle()).Build(); err != nil {
		t.Fatalf("build: %v", err)
	}
	big := testStyle()
	big.FontSize = 32
	if _, err := ctx.RangedBuilder(fc, "a", big).Build(); err != nil {
		t.Fatalf("build: %v", err)
	}

	data, inst, _ := fc.CacheStats()
	if data.Len != 1 {
		t.Errorf("data cache len = %d, want 1 (size not part of the key)", data.Len)
	}
	if inst.Len != 2 {
		t.Errorf("instance cache len = %d, want 2 (one per size)", inst.Len)
	}
}

func TestPruneCaches(t *testing.T) {
	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	if _, err := NewContext().RangedBuilder(fc, "hello", testStyle()).Build(); err != nil {
		t.Fatalf("build: %v", err)
	}

	fc.PruneCaches()
	data, inst, plan := fc.CacheStats()
	if data.Len != 0 || inst.Len != 0 || plan.Len != 0 {
		t.Errorf("caches not empty after prune: %d %d %d", data.Len, inst.Len, plan.Len)
	}
}

func TestMissingGlyphKeepsCluster(t *testing.T) {
	// Hebrew is not covered by the registered face; shaping must still
	// produce a cluster for it rather than dropping text.
	l := buildTest(t, "aא")

	if got, want := len(l.Clusters()), 2; got != want {
		t.Fatalf("len(Clusters) = %d, want %d", got, want)
	}
	if l.Clusters()[1].RuneEnd != 2 {
		t.Errorf("second cluster rune end = %d, want 2", l.Clusters()[1].RuneEnd)
	}
}

func TestWordSpacing(t *testing.T) {
	plain := buildTest(t, "a b")

	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	b := NewContext().RangedBuilder(fc, "a b", testStyle())
	b.Push(WordSpacingProperty(5), 0, 3)
	spaced, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := plain.Clusters()[1].Advance + 5
	got := spaced.Clusters()[1].Advance
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("space advance = %f, want %f", got, want)
	}
	// Non-space clusters are untouched.
	if spaced.Clusters()[0].Advance != plain.Clusters()[0].Advance {
		t.Error("word spacing leaked into letter clusters")
	}
}

func TestLineHeightMultiplier(t *testing.T) {
	plain := buildTest(t, "a")

	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	b := NewContext().RangedBuilder(fc, "a", testStyle())
	b.Push(LineHeightProperty(2), 0, 1)
	tall, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	gotA, wantA := tall.Runs()[0].Metrics.Ascent, 2*plain.Runs()[0].Metrics.Ascent
	if diff := gotA - wantA; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("scaled ascent = %f, want %f", gotA, wantA)
	}
}

func TestHarfbuzzShaping(t *testing.T) {
	fc := NewFontContext(testProvider(t))
	l, err := NewContext().RangedBuilder(fc, "Hello", testStyle()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(l.Glyphs()) == 0 {
		t.Fatal("no glyphs shaped")
	}
	if got, want := len(l.Clusters()), 5; got != want {
		t.Errorf("len(Clusters) = %d, want %d", got, want)
	}
	if l.Runs()[0].Advance <= 0 {
		t.Error("run has no width")
	}

	// Glyph cluster values are non-decreasing in logical order.
	prev := -1
	for i, g := range l.Glyphs() {
		if g.Cluster < prev {
			t.Fatalf("glyph %d cluster %d precedes %d", i, g.Cluster, prev)
		}
		prev = g.Cluster
	}

	l.BreakLines(1e6)
	if got, want := len(l.Lines()), 1; got != want {
		t.Errorf("len(Lines) = %d, want %d", got, want)
	}
}

func TestHarfbuzzFeaturesAndVariations(t *testing.T) {
	fc := NewFontContext(testProvider(t))
	b := NewContext().RangedBuilder(fc, "fine", testStyle())
	b.Push(FeaturesProperty(Feature{Tag: "liga", Value: 0}), 0, 4)
	b.Push(VariationsProperty(Variation{Tag: "wght", Value: 500}), 0, 4)
	l, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(l.Glyphs()) == 0 {
		t.Fatal("no glyphs shaped")
	}
	// Feature and variation settings key the plan and instance caches.
	_, inst, plan := fc.CacheStats()
	if inst.Len == 0 || plan.Len == 0 {
		t.Errorf("instance/plan caches have %d/%d entries, want > 0", inst.Len, plan.Len)
	}
}

func TestShapeCacheKeyedBySynthesis(t *testing.T) {
	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	b := NewContext().RangedBuilder(fc, "abcd", testStyle())
	// Only a regular face is registered, so bold resolves to the same
	// face with synthetic emboldening.
	b.Push(WeightProperty(WeightBold), 0, 2)
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	data, inst, _ := fc.CacheStats()
	if got, want := data.Len, 1; got != want {
		t.Errorf("data cache has %d entries, want %d", got, want)
	}
	if got, want := inst.Len, 2; got != want {
		t.Errorf("instance cache has %d entries, want %d", got, want)
	}
}
