package textlayout

import (
	"math"
	"testing"
)

func brokenLayout(t *testing.T, text string) *Layout {
	t.Helper()
	l := buildTest(t, text)
	l.BreakLines(1e6)
	return l
}

func TestVisualMovementLTR(t *testing.T) {
	l := brokenLayout(t, "ab")

	c := Cursor{Index: 0, Affinity: AffinityDownstream}
	c = l.NextVisual(c)
	if c.Index != 1 {
		t.Errorf("after one step, index = %d, want 1", c.Index)
	}
	c = l.NextVisual(c)
	c = l.NextVisual(c)
	// At the line end further movement is a no-op.
	end := c
	if c = l.NextVisual(c); c != end {
		t.Errorf("movement past end changed cursor: %+v", c)
	}

	c = l.PrevVisual(c)
	c = l.PrevVisual(c)
	c = l.PrevVisual(c)
	if c.Index != 0 {
		t.Errorf("after walking back, index = %d, want 0", c.Index)
	}
	start := c
	if c = l.PrevVisual(c); c != start {
		t.Errorf("movement before start changed cursor: %+v", c)
	}
}

func TestVisualMovementRoundTrip(t *testing.T) {
	l := brokenLayout(t, "one two")

	c := Cursor{Index: 0, Affinity: AffinityDownstream}
	var forward []Cursor
	for {
		forward = append(forward, c)
		next := l.NextVisual(c)
		if next == c {
			break
		}
		c = next
	}
	if len(forward) != len(l.Clusters())+1 {
		t.Fatalf("forward walk visited %d slots, want %d", len(forward), len(l.Clusters())+1)
	}
	for i := len(forward) - 2; i >= 0; i-- {
		c = l.PrevVisual(c)
		if c != forward[i] {
			t.Fatalf("backward walk diverged at %d: %+v vs %+v", i, c, forward[i])
		}
	}
}

func TestVisualMovementAcrossLines(t *testing.T) {
	l := brokenLayout(t, "a\nb")

	c := Cursor{Index: 0, Affinity: AffinityDownstream}
	seen := map[Cursor]bool{c: true}
	for {
		next := l.NextVisual(c)
		if next == c {
			break
		}
		if seen[next] {
			t.Fatalf("visual walk revisited %+v", next)
		}
		seen[next] = true
		c = next
	}
	if c.Index != 3 {
		t.Errorf("walk ended at index %d, want 3", c.Index)
	}
}

func TestWordMovement(t *testing.T) {
	l := brokenLayout(t, "foo bar baz")

	c := Cursor{Index: 0, Affinity: AffinityDownstream}
	c = l.NextWord(c)
	if c.Index != 4 {
		t.Errorf("first word jump to %d, want 4", c.Index)
	}
	c = l.NextWord(c)
	if c.Index != 8 {
		t.Errorf("second word jump to %d, want 8", c.Index)
	}
	c = l.NextWord(c)
	if c.Index != 11 {
		t.Errorf("final word jump to %d, want 11 (text end)", c.Index)
	}

	c = l.PrevWord(c)
	if c.Index != 8 {
		t.Errorf("back one word to %d, want 8", c.Index)
	}
	c = l.PrevWord(Cursor{Index: 2})
	if c.Index != 0 {
		t.Errorf("back from mid-word to %d, want 0", c.Index)
	}
}

func TestLineStartEnd(t *testing.T) {
	l := brokenLayout(t, "ab\ncd")

	// The first line's end slot sits after the newline, bound upstream so
	// the caret stays on the first line.
	c := l.LineEnd(Cursor{Index: 0})
	if c.Index != 3 || c.Affinity != AffinityUpstream {
		t.Errorf("line end = %+v, want index 3 upstream", c)
	}
	c = l.LineStart(Cursor{Index: 4})
	if c.Index != 3 || c.Affinity != AffinityDownstream {
		t.Errorf("line start = %+v, want index 3 downstream", c)
	}
}

func TestLineBelowAbove(t *testing.T) {
	l := brokenLayout(t, "aaaa\nbb")

	c := Cursor{Index: 0, Affinity: AffinityDownstream}
	x := l.CaretGeometry(c).MinX

	down := l.LineBelow(c, x)
	if down == c {
		t.Fatal("LineBelow did not move off the first line")
	}
	if lineIdx := l.lineOf(l.clusterContaining(down.Index)); lineIdx != 1 {
		t.Errorf("LineBelow landed on line %d, want 1", lineIdx)
	}
	up := l.LineAbove(down, x)
	if up.Index != 0 {
		t.Errorf("LineAbove landed at index %d, want 0", up.Index)
	}
	if got := l.LineAbove(c, x); got != c {
		t.Errorf("LineAbove on the first line moved to %+v", got)
	}
}

func TestCaretGeometry(t *testing.T) {
	l := brokenLayout(t, "ab")
	ln := &l.Lines()[0]

	r0 := l.CaretGeometry(Cursor{Index: 0, Affinity: AffinityDownstream})
	r1 := l.CaretGeometry(Cursor{Index: 1, Affinity: AffinityDownstream})

	if r0.MinX > 1e-9 {
		t.Errorf("caret 0 at x=%f, want 0", r0.MinX)
	}
	if want := l.Clusters()[0].Advance; math.Abs(r1.MinX-want) > 1e-9 {
		t.Errorf("caret 1 at x=%f, want %f", r1.MinX, want)
	}
	if top := ln.Baseline - ln.Ascent; math.Abs(r0.MinY-top) > 1e-9 {
		t.Errorf("caret top = %f, want %f", r0.MinY, top)
	}
	if r0.MaxY <= r0.MinY {
		t.Error("caret rect has no height")
	}
}

func TestLigatureCaretInterpolation(t *testing.T) {
	fc := NewFontContext(testProvider(t), WithShaper(&BuiltinShaper{Ligatures: []string{"fi"}}))
	l, err := NewContext().RangedBuilder(fc, "fin", testStyle()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	l.BreakLines(1e6)

	if got, want := len(l.Glyphs()), 2; got != want {
		t.Fatalf("len(Glyphs) = %d, want %d", got, want)
	}
	if got, want := len(l.Clusters()), 3; got != want {
		t.Fatalf("len(Clusters) = %d, want %d", got, want)
	}
	if !l.Clusters()[0].IsLigatureStart() {
		t.Error("cluster 0 should start the ligature")
	}
	if !l.Clusters()[1].IsLigatureContinuation() {
		t.Error("cluster 1 should continue the ligature")
	}
	if l.Clusters()[1].Advance != 0 {
		t.Errorf("continuation advance = %f, want 0", l.Clusters()[1].Advance)
	}

	// The caret inside the ligature sits halfway through its advance.
	lig := l.Clusters()[0].Advance
	r := l.CaretGeometry(Cursor{Index: 1, Affinity: AffinityDownstream})
	if want := lig / 2; math.Abs(r.MinX-want) > 1e-9 {
		t.Errorf("mid-ligature caret at x=%f, want %f", r.MinX, want)
	}
}

func TestCursorFromPoint(t *testing.T) {
	l := brokenLayout(t, "ab")
	adv0 := l.Clusters()[0].Advance
	total := l.Lines()[0].Advance

	c := l.CursorFromPoint(-100, 0)
	if c.Index != 0 {
		t.Errorf("far-left hit index = %d, want 0", c.Index)
	}
	c = l.CursorFromPoint(total+100, 0)
	if c.Index != 2 {
		t.Errorf("far-right hit index = %d, want 2", c.Index)
	}
	// Just right of the first boundary snaps to the nearer edge.
	c = l.CursorFromPoint(adv0+0.01, 0)
	if c.Index != 1 {
		t.Errorf("near-boundary hit index = %d, want 1", c.Index)
	}
}

func TestCursorFromPointPicksLineByY(t *testing.T) {
	l := brokenLayout(t, "a\nb")

	top := l.CursorFromPoint(0, 0)
	if got := l.lineOf(l.clusterContaining(top.Index)); got != 0 {
		t.Errorf("top hit landed on line %d, want 0", got)
	}
	bottom := l.CursorFromPoint(0, l.Height()+100)
	if bottom.Index < 2 {
		t.Errorf("bottom hit index = %d, want on second line", bottom.Index)
	}
}

func TestSnapToCluster(t *testing.T) {
	l := brokenLayout(t, "éx")

	// Byte 1 is inside the combining sequence.
	if got := l.SnapToCluster(1); got != 0 {
		t.Errorf("snapped offset = %d, want 0", got)
	}
	if got := l.SnapToCluster(100); got != len(l.Text()) {
		t.Errorf("snapped past-end offset = %d, want %d", got, len(l.Text()))
	}
}

func TestSelectWord(t *testing.T) {
	l := brokenLayout(t, "foo bar baz")

	s := l.SelectWord(5)
	if s.Anchor.Index != 4 || s.Focus.Index != 8 {
		t.Errorf("word selection [%d, %d), want [4, 8)", s.Anchor.Index, s.Focus.Index)
	}
	s = l.SelectWord(0)
	if s.Anchor.Index != 0 || s.Focus.Index != 4 {
		t.Errorf("first word selection [%d, %d), want [0, 4)", s.Anchor.Index, s.Focus.Index)
	}
}

func TestSelectLine(t *testing.T) {
	l := brokenLayout(t, "ab\ncd")

	s := l.SelectLine(4)
	if s.Anchor.Index != 3 || s.Focus.Index != 5 {
		t.Errorf("line selection [%d, %d), want [3, 5)", s.Anchor.Index, s.Focus.Index)
	}
}

func TestSelectionGeometry(t *testing.T) {
	l := brokenLayout(t, "abcd")

	sel := Selection{
		Anchor: Cursor{Index: 0},
		Focus:  Cursor{Index: 4},
	}
	rects := l.SelectionGeometry(sel)
	if len(rects) != 1 {
		t.Fatalf("len(rects) = %d, want 1 merged rect", len(rects))
	}
	if want := l.Lines()[0].Advance; math.Abs(rects[0].MaxX-rects[0].MinX-want) > 1e-9 {
		t.Errorf("selection width = %f, want %f", rects[0].MaxX-rects[0].MinX, want)
	}

	if got := l.SelectionGeometry(Selection{Anchor: Cursor{Index: 2}, Focus: Cursor{Index: 2}}); len(got) != 0 {
		t.Errorf("collapsed selection produced %d rects", len(got))
	}
}

func TestSelectionGeometryMultiLine(t *testing.T) {
	l := brokenLayout(t, "ab\ncd")

	rects := l.SelectionGeometry(Selection{
		Anchor: Cursor{Index: 1},
		Focus:  Cursor{Index: 4},
	})
	if len(rects) != 2 {
		t.Fatalf("len(rects) = %d, want one per line", len(rects))
	}
	if rects[0].MinY >= rects[1].MinY {
		t.Error("rects not ordered top to bottom")
	}
}

func TestSelectionNormalized(t *testing.T) {
	s := Selection{Anchor: Cursor{Index: 5}, Focus: Cursor{Index: 2}}
	start, end := s.Normalized()
	if start != 2 || end != 5 {
		t.Errorf("normalized to [%d, %d], want [2, 5]", start, end)
	}
	if !(Selection{Anchor: Cursor{Index: 3}, Focus: Cursor{Index: 3}}).Collapsed() {
		t.Error("equal endpoints should collapse")
	}
}

func TestParagraphMovement(t *testing.T) {
	l := brokenLayout(t, "ab\ncd\nef")

	c := Cursor{Index: 0, Affinity: AffinityDownstream}
	c = l.NextParagraph(c)
	if c.Index != 3 {
		t.Errorf("first paragraph jump to %d, want 3", c.Index)
	}
	c = l.NextParagraph(c)
	if c.Index != 6 {
		t.Errorf("second paragraph jump to %d, want 6", c.Index)
	}
	c = l.NextParagraph(c)
	if c.Index != len(l.Text()) {
		t.Errorf("final paragraph jump to %d, want end %d", c.Index, len(l.Text()))
	}

	// Back: from mid-paragraph to its start, then to the previous one.
	c = l.PrevParagraph(Cursor{Index: 7, Affinity: AffinityDownstream})
	if c.Index != 6 {
		t.Errorf("prev from mid-paragraph lands at %d, want 6", c.Index)
	}
	c = l.PrevParagraph(c)
	if c.Index != 3 {
		t.Errorf("prev from paragraph start lands at %d, want 3", c.Index)
	}
	c = l.PrevParagraph(Cursor{Index: 0})
	if c.Index != 0 {
		t.Errorf("prev at text start lands at %d, want 0", c.Index)
	}
}

func TestSelectToPreservesAnchor(t *testing.T) {
	l := brokenLayout(t, "foo bar")

	s := Selection{
		Anchor: Cursor{Index: 1, Affinity: AffinityDownstream},
		Focus:  Cursor{Index: 1, Affinity: AffinityDownstream},
	}
	s = s.SelectToNextWord(l)
	if s.Anchor.Index != 1 {
		t.Errorf("anchor moved to %d, want 1", s.Anchor.Index)
	}
	if s.Focus.Index != 4 {
		t.Errorf("focus at %d, want 4", s.Focus.Index)
	}
	s = s.SelectToNextVisual(l)
	if s.Anchor.Index != 1 || s.Focus.Index != 5 {
		t.Errorf("after visual step selection [%d, %d], want anchor 1 focus 5", s.Anchor.Index, s.Focus.Index)
	}
	s = s.SelectToLineStart(l)
	if s.Anchor.Index != 1 || s.Focus.Index != 0 {
		t.Errorf("after line start selection [%d, %d], want anchor 1 focus 0", s.Anchor.Index, s.Focus.Index)
	}
	start, end := s.Normalized()
	if start != 0 || end != 1 {
		t.Errorf("normalized to [%d, %d], want [0, 1]", start, end)
	}
}

func TestSelectToLineEndAndPoint(t *testing.T) {
	l := brokenLayout(t, "ab")
	adv := l.Lines()[0].Advance

	s := Selection{}
	s = s.SelectToLineEnd(l)
	if s.Focus.Index != 2 {
		t.Errorf("line end focus at %d, want 2", s.Focus.Index)
	}
	s = s.SelectToPoint(l, -10, 0)
	if s.Focus.Index != 0 {
		t.Errorf("point focus at %d, want 0", s.Focus.Index)
	}
	s = s.SelectToPoint(l, adv+10, 0)
	if s.Focus.Index != 2 {
		t.Errorf("far-right point focus at %d, want 2", s.Focus.Index)
	}
}

func TestLineEndBeforeBreaking(t *testing.T) {
	l := buildTest(t, "ab")

	// No BreakLines yet: line-relative movement degrades to a no-op the
	// same way NextVisual does.
	c := Cursor{Index: 1, Affinity: AffinityDownstream}
	if got := l.LineEnd(c); got != c {
		t.Errorf("LineEnd without lines = %+v, want unchanged %+v", got, c)
	}
	s := (Selection{Anchor: c, Focus: c}).SelectToLineEnd(l)
	if s.Focus != c {
		t.Errorf("SelectToLineEnd without lines moved the focus to %+v", s.Focus)
	}
}
