package textlayout

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// testProvider returns a provider with Go Regular registered as "Go".
func testProvider(t *testing.T) *StaticProvider {
	t.Helper()
	p := NewStaticProvider()
	if _, err := p.RegisterData(goregular.TTF, "Go", WeightNormal, WidthNormal, SlantUpright); err != nil {
		t.Fatalf("RegisterData: %v", err)
	}
	return p
}

func testStyle() Style {
	s := DefaultStyle()
	s.FontStack = []string{"Go"}
	return s
}

// buildTest shapes text with the deterministic builtin backend.
func buildTest(t *testing.T, text string) *Layout {
	t.Helper()
	return buildTestShaper(t, text, &BuiltinShaper{})
}

func buildTestShaper(t *testing.T, text string, shaper Shaper) *Layout {
	t.Helper()
	fc := NewFontContext(testProvider(t), WithShaper(shaper))
	l, err := NewContext().RangedBuilder(fc, text, testStyle()).Build()
	if err != nil {
		t.Fatalf("Build(%q): %v", text, err)
	}
	return l
}

func TestBuildSimple(t *testing.T) {
	l := buildTest(t, "Hello, layout!")

	if got, want := len(l.Runs()), 1; got != want {
		t.Fatalf("len(Runs) = %d, want %d", got, want)
	}
	if got, want := len(l.Clusters()), 14; got != want {
		t.Errorf("len(Clusters) = %d, want %d", got, want)
	}
	if got, want := len(l.Glyphs()), 14; got != want {
		t.Errorf("len(Glyphs) = %d, want %d", got, want)
	}

	run := &l.Runs()[0]
	if run.Direction() != DirectionLTR {
		t.Errorf("run direction = %v, want LTR", run.Direction())
	}
	if run.Advance <= 0 {
		t.Errorf("run advance = %f, want > 0", run.Advance)
	}
	var sum float64
	for _, cl := range l.Clusters() {
		sum += cl.Advance
	}
	if diff := sum - run.Advance; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("cluster advance sum %f != run advance %f", sum, run.Advance)
	}
}

func TestClustersPartitionText(t *testing.T) {
	texts := []string{"Hello", "a b c", "café", "ab\ncd", "éx"}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			l := buildTest(t, text)
			next := 0
			for i, cl := range l.Clusters() {
				if cl.IsBox() {
					continue
				}
				if cl.ByteStart != next {
					t.Fatalf("cluster %d starts at %d, want %d", i, cl.ByteStart, next)
				}
				if cl.ByteEnd <= cl.ByteStart {
					t.Fatalf("cluster %d has empty byte range", i)
				}
				next = cl.ByteEnd
			}
			if next != len(text) {
				t.Errorf("clusters cover %d bytes, want %d", next, len(text))
			}
		})
	}
}

func TestCombiningMarkSingleCluster(t *testing.T) {
	l := buildTest(t, "éx") // e + combining acute + x

	if got, want := len(l.Clusters()), 2; got != want {
		t.Fatalf("len(Clusters) = %d, want %d", got, want)
	}
	if l.Clusters()[0].RuneEnd != 2 {
		t.Errorf("first cluster rune end = %d, want 2", l.Clusters()[0].RuneEnd)
	}
	// Both the base and the mark glyph belong to the first cluster.
	first := &l.Clusters()[0]
	if got, want := first.GlyphEnd-first.GlyphStart, 2; got != want {
		t.Errorf("first cluster owns %d glyphs, want %d", got, want)
	}
}

func TestEmptyText(t *testing.T) {
	l := buildTest(t, "")
	l.BreakLines(100)

	if got, want := len(l.Lines()), 1; got != want {
		t.Fatalf("len(Lines) = %d, want %d", got, want)
	}
	ln := &l.Lines()[0]
	if ln.Height() <= 0 {
		t.Errorf("empty line height = %f, want > 0", ln.Height())
	}
	if ln.Advance != 0 {
		t.Errorf("empty line advance = %f, want 0", ln.Advance)
	}
}

func TestInlineBoxInEmptyText(t *testing.T) {
	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	b := NewContext().RangedBuilder(fc, "", testStyle())
	b.PushInlineBox(InlineBox{Index: 0, Width: 40, Height: 20})
	l, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	l.BreakLines(100)

	if got, want := len(l.Clusters()), 1; got != want {
		t.Fatalf("len(Clusters) = %d, want %d", got, want)
	}
	if !l.Clusters()[0].IsBox() {
		t.Fatal("cluster should be a box")
	}
	if got, want := len(l.Lines()), 1; got != want {
		t.Fatalf("len(Lines) = %d, want %d", got, want)
	}
	ln := &l.Lines()[0]
	if ln.Advance != 40 {
		t.Errorf("line advance = %f, want 40", ln.Advance)
	}
	if ln.Ascent != 20 {
		t.Errorf("line ascent = %f, want 20", ln.Ascent)
	}
}

func TestInlineBoxBetweenText(t *testing.T) {
	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	b := NewContext().RangedBuilder(fc, "ab", testStyle())
	b.PushInlineBox(InlineBox{Index: 1, Width: 10, Height: 5})
	l, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// a | box | b, three runs in logical order.
	if got, want := len(l.Runs()), 3; got != want {
		t.Fatalf("len(Runs) = %d, want %d", got, want)
	}
	if !l.Runs()[1].IsBox() {
		t.Error("middle run should be the box")
	}
	if l.Runs()[1].Box != 0 {
		t.Errorf("box run index = %d, want 0", l.Runs()[1].Box)
	}
	if l.Runs()[0].IsBox() || l.Runs()[2].IsBox() {
		t.Error("text runs misidentified as boxes")
	}
}

func TestStyleSpanSplitsRuns(t *testing.T) {
	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	b := NewContext().RangedBuilder(fc, "Hello", testStyle())
	b.Push(FontSizeProperty(24), 0, 3)
	l, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got, want := len(l.Spans()), 2; got != want {
		t.Fatalf("len(Spans) = %d, want %d", got, want)
	}
	if got, want := len(l.Runs()), 2; got != want {
		t.Fatalf("len(Runs) = %d, want %d", got, want)
	}
	if got := l.Runs()[0].Size; got != 24 {
		t.Errorf("first run size = %f, want 24", got)
	}
	if got := l.Runs()[1].Size; got != 16 {
		t.Errorf("second run size = %f, want 16", got)
	}
}

func TestLetterSpacing(t *testing.T) {
	plain := buildTest(t, "ab")

	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{}))
	b := NewContext().RangedBuilder(fc, "ab", testStyle())
	b.Push(LetterSpacingProperty(2), 0, 2)
	spaced, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := plain.Runs()[0].Advance + 4
	got := spaced.Runs()[0].Advance
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("spaced advance = %f, want %f", got, want)
	}
}

func TestContentWidths(t *testing.T) {
	l := buildTest(t, "aa bb")
	min, max := l.ContentWidths()

	if min <= 0 || max <= 0 {
		t.Fatalf("ContentWidths = %f, %f; want positive", min, max)
	}
	if min >= max {
		t.Errorf("min %f should be smaller than max %f", min, max)
	}

	// Min is the widest unbreakable chunk, so wrapping at min must not
	// produce emergency breaks.
	l.BreakLines(min)
	for i, ln := range l.Lines() {
		if ln.Reason == BreakEmergency {
			t.Errorf("line %d broke by emergency at min content width", i)
		}
	}
}
