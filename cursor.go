package textlayout

import (
	"sort"
)

// Cursor is a caret position: a byte offset plus the affinity that picks
// a side when the offset sits on a direction or line boundary.
// Downstream binds the caret to the text after the offset, Upstream to
// the text before it.
type Cursor struct {
	Index    int
	Affinity Affinity
}

// Selection is a pair of carets. Anchor is where the selection started;
// Focus is the end that moves. Anchor may lie after Focus.
type Selection struct {
	Anchor Cursor
	Focus  Cursor
}

// Collapsed reports whether the selection is a bare caret.
func (s Selection) Collapsed() bool { return s.Anchor.Index == s.Focus.Index }

// Normalized returns the selection's byte range with start <= end.
func (s Selection) Normalized() (start, end int) {
	if s.Anchor.Index <= s.Focus.Index {
		return s.Anchor.Index, s.Focus.Index
	}
	return s.Focus.Index, s.Anchor.Index
}

// SelectTo moves the selection's focus to c. The anchor stays put, so
// repeated extension grows or shrinks the same selection.
func (s Selection) SelectTo(c Cursor) Selection {
	s.Focus = c
	return s
}

// SelectToNextVisual extends the focus one visual position right.
func (s Selection) SelectToNextVisual(l *Layout) Selection {
	return s.SelectTo(l.NextVisual(s.Focus))
}

// SelectToPrevVisual extends the focus one visual position left.
func (s Selection) SelectToPrevVisual(l *Layout) Selection {
	return s.SelectTo(l.PrevVisual(s.Focus))
}

// SelectToNextWord extends the focus to the next word start.
func (s Selection) SelectToNextWord(l *Layout) Selection {
	return s.SelectTo(l.NextWord(s.Focus))
}

// SelectToPrevWord extends the focus to the previous word start.
func (s Selection) SelectToPrevWord(l *Layout) Selection {
	return s.SelectTo(l.PrevWord(s.Focus))
}

// SelectToLineStart extends the focus to the visual start of its line.
func (s Selection) SelectToLineStart(l *Layout) Selection {
	return s.SelectTo(l.LineStart(s.Focus))
}

// SelectToLineEnd extends the focus to the visual end of its line.
func (s Selection) SelectToLineEnd(l *Layout) Selection {
	return s.SelectTo(l.LineEnd(s.Focus))
}

// SelectToPoint extends the focus to the caret nearest the point.
func (s Selection) SelectToPoint(l *Layout, x, y float64) Selection {
	return s.SelectTo(l.CursorFromPoint(x, y))
}

// clusterContaining returns the index of the text cluster whose byte
// range contains b, or -1 when the layout has no text clusters. b is
// clamped to the text.
func (l *Layout) clusterContaining(b int) int {
	if b < 0 {
		b = 0
	}
	if b >= len(l.text) {
		b = len(l.text) - 1
	}
	n := len(l.clusters)
	i := sort.Search(n, func(i int) bool {
		return l.clusters[i].ByteEnd > b
	})
	for i < n && l.clusters[i].IsBox() {
		i++
	}
	if i >= n {
		for i = n - 1; i >= 0 && l.clusters[i].IsBox(); i-- {
		}
	}
	return i
}

// SnapToCluster moves a byte offset to the nearest preceding cluster
// boundary, so carets never land inside a grapheme. Offsets inside a
// ligature snap to the component boundary, not the ligature start.
func (l *Layout) SnapToCluster(b int) int {
	if b <= 0 {
		return 0
	}
	if b >= len(l.text) {
		return len(l.text)
	}
	ci := l.clusterContaining(b)
	if ci < 0 {
		return 0
	}
	return l.clusters[ci].ByteStart
}

// cursorSlot locates c as a (line, visual slot) pair. Slot k of a line
// sits at the left boundary of the line's k-th visual cluster; slot
// len(visual) is the line's right edge.
func (l *Layout) cursorSlot(c Cursor) (line, slot int) {
	if len(l.lines) == 0 {
		return 0, 0
	}
	b := l.SnapToCluster(c.Index)

	if len(l.text) == 0 {
		return 0, 0
	}

	upstream := c.Affinity == AffinityUpstream && b > 0
	if b == len(l.text) {
		upstream = true
	}

	var ci int
	if upstream {
		ci = l.clusterContaining(b - 1)
	} else {
		ci = l.clusterContaining(b)
	}
	if ci < 0 {
		return 0, 0
	}
	line = l.lineOf(ci)
	ln := &l.lines[line]

	k := 0
	for ; k < len(ln.visual); k++ {
		if ln.visual[k] == ci {
			break
		}
	}
	rtl := l.runs[l.clusters[ci].Run].Level%2 == 1
	// Leading edge of an LTR cluster and trailing edge of an RTL cluster
	// are both its left side.
	if upstream != rtl {
		return line, k + 1
	}
	return line, k
}

// slotCursor is the inverse of cursorSlot: the canonical caret for a
// visual slot.
func (l *Layout) slotCursor(line, slot int) Cursor {
	if len(l.lines) == 0 {
		return Cursor{}
	}
	ln := &l.lines[line]
	if len(ln.visual) == 0 {
		b := 0
		if ln.ClusterStart > 0 {
			b = l.clusters[ln.ClusterStart-1].ByteEnd
		}
		return Cursor{Index: b, Affinity: AffinityDownstream}
	}
	if slot < len(ln.visual) {
		ci := ln.visual[slot]
		cl := &l.clusters[ci]
		if l.runs[cl.Run].Level%2 == 0 {
			return Cursor{Index: cl.ByteStart, Affinity: AffinityDownstream}
		}
		return Cursor{Index: cl.ByteEnd, Affinity: AffinityUpstream}
	}
	ci := ln.visual[len(ln.visual)-1]
	cl := &l.clusters[ci]
	if l.runs[cl.Run].Level%2 == 0 {
		return Cursor{Index: cl.ByteEnd, Affinity: AffinityUpstream}
	}
	return Cursor{Index: cl.ByteStart, Affinity: AffinityDownstream}
}

// slotX returns the X coordinate of a visual slot.
func (l *Layout) slotX(line, slot int) float64 {
	ln := &l.lines[line]
	if len(ln.visual) == 0 {
		return ln.Offset
	}
	if slot < len(ln.visual) {
		return l.clusterX[ln.visual[slot]]
	}
	last := ln.visual[len(ln.visual)-1]
	return l.clusterX[last] + l.clusters[last].Advance
}

// NextVisual moves the caret one position to the right, crossing to the
// next line when the current one is exhausted. Movement is visual: in
// right-to-left text it walks backward through the bytes.
func (l *Layout) NextVisual(c Cursor) Cursor {
	line, slot := l.cursorSlot(c)
	if line >= len(l.lines) {
		return c
	}
	if slot < len(l.lines[line].visual) {
		return l.slotCursor(line, slot+1)
	}
	if line+1 < len(l.lines) {
		return l.slotCursor(line+1, 0)
	}
	return l.slotCursor(line, slot)
}

// PrevVisual moves the caret one position to the left.
func (l *Layout) PrevVisual(c Cursor) Cursor {
	line, slot := l.cursorSlot(c)
	if slot > 0 {
		return l.slotCursor(line, slot-1)
	}
	if line > 0 {
		return l.slotCursor(line-1, len(l.lines[line-1].visual))
	}
	return l.slotCursor(line, 0)
}

// NextWord moves the caret to the next word start in logical order, or
// to the end of the text.
func (l *Layout) NextWord(c Cursor) Cursor {
	b := l.SnapToCluster(c.Index)
	if b >= len(l.text) {
		return Cursor{Index: len(l.text), Affinity: AffinityUpstream}
	}
	start := l.clusterContaining(b)
	for ci := start + 1; ci < len(l.clusters); ci++ {
		cl := &l.clusters[ci]
		if !cl.IsBox() && cl.IsWordStart() {
			return Cursor{Index: cl.ByteStart, Affinity: AffinityDownstream}
		}
	}
	return Cursor{Index: len(l.text), Affinity: AffinityUpstream}
}

// PrevWord moves the caret to the previous word start in logical order.
func (l *Layout) PrevWord(c Cursor) Cursor {
	b := l.SnapToCluster(c.Index)
	if b <= 0 {
		return Cursor{Index: 0, Affinity: AffinityDownstream}
	}
	start := l.clusterContaining(b - 1)
	for ci := start; ci >= 0; ci-- {
		cl := &l.clusters[ci]
		if !cl.IsBox() && cl.IsWordStart() && cl.ByteStart < b {
			return Cursor{Index: cl.ByteStart, Affinity: AffinityDownstream}
		}
	}
	return Cursor{Index: 0, Affinity: AffinityDownstream}
}

// NextParagraph moves the caret to the start of the next paragraph, or
// to the end of the text when no separator follows.
func (l *Layout) NextParagraph(c Cursor) Cursor {
	b := l.SnapToCluster(c.Index)
	for ci := range l.clusters {
		cl := &l.clusters[ci]
		if cl.flags&clusterMandatoryAfter != 0 && cl.ByteEnd > b && cl.ByteEnd < len(l.text) {
			return Cursor{Index: cl.ByteEnd, Affinity: AffinityDownstream}
		}
	}
	return Cursor{Index: len(l.text), Affinity: AffinityUpstream}
}

// PrevParagraph moves the caret to the start of its paragraph, or to the
// start of the previous one when already there.
func (l *Layout) PrevParagraph(c Cursor) Cursor {
	b := l.SnapToCluster(c.Index)
	start := 0
	for ci := range l.clusters {
		cl := &l.clusters[ci]
		if cl.flags&clusterMandatoryAfter != 0 && cl.ByteEnd < b {
			start = cl.ByteEnd
		}
	}
	return Cursor{Index: start, Affinity: AffinityDownstream}
}

// LineStart moves the caret to the visual start of its line.
func (l *Layout) LineStart(c Cursor) Cursor {
	line, _ := l.cursorSlot(c)
	return l.slotCursor(line, 0)
}

// LineEnd moves the caret to the visual end of its line.
func (l *Layout) LineEnd(c Cursor) Cursor {
	if len(l.lines) == 0 {
		return c
	}
	line, _ := l.cursorSlot(c)
	return l.slotCursor(line, len(l.lines[line].visual))
}

// LineBelow moves the caret to the line below, choosing the slot closest
// to x. Use the X from CaretGeometry of the current caret to keep a
// column while moving through lines of different lengths.
func (l *Layout) LineBelow(c Cursor, x float64) Cursor {
	line, _ := l.cursorSlot(c)
	if line+1 >= len(l.lines) {
		return c
	}
	return l.slotCursor(line+1, l.nearestSlot(line+1, x))
}

// LineAbove moves the caret to the line above, choosing the slot closest
// to x.
func (l *Layout) LineAbove(c Cursor, x float64) Cursor {
	line, _ := l.cursorSlot(c)
	if line == 0 {
		return c
	}
	return l.slotCursor(line-1, l.nearestSlot(line-1, x))
}

// nearestSlot returns the slot of line whose X is closest to x.
func (l *Layout) nearestSlot(line int, x float64) int {
	ln := &l.lines[line]
	best, bestDist := 0, 0.0
	for k := 0; k <= len(ln.visual); k++ {
		d := l.slotX(line, k) - x
		if d < 0 {
			d = -d
		}
		if k == 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// CursorFromPoint hit-tests a point against the layout: the caret lands
// on the slot nearest to x on the line containing y. Points above the
// first line map to its start, points below the last line to its end.
func (l *Layout) CursorFromPoint(x, y float64) Cursor {
	if len(l.lines) == 0 {
		return Cursor{}
	}
	line := len(l.lines) - 1
	for i := range l.lines {
		ln := &l.lines[i]
		if y < ln.Baseline+ln.Descent {
			line = i
			break
		}
	}
	return l.slotCursor(line, l.nearestSlot(line, x))
}

// CaretGeometry returns the one-pixel-wide caret rectangle for c. Valid
// after BreakLines.
func (l *Layout) CaretGeometry(c Cursor) Rect {
	if len(l.lines) == 0 {
		return Rect{}
	}
	line, slot := l.cursorSlot(c)
	ln := &l.lines[line]
	x := l.slotX(line, slot)
	return Rect{
		MinX: x,
		MinY: ln.Baseline - ln.Ascent,
		MaxX: x + 1,
		MaxY: ln.Baseline + ln.Descent,
	}
}

// SelectWord returns the selection covering the word containing byte b.
func (l *Layout) SelectWord(b int) Selection {
	if len(l.clusters) == 0 {
		return Selection{}
	}
	ci := l.clusterContaining(l.SnapToCluster(b))
	if ci < 0 {
		return Selection{}
	}
	start := ci
	for start > 0 && !l.clusters[start].IsWordStart() && !l.clusters[start].IsBox() {
		start--
	}
	end := ci + 1
	for end < len(l.clusters) && !l.clusters[end].IsWordStart() && !l.clusters[end].IsBox() {
		end++
	}
	return Selection{
		Anchor: Cursor{Index: l.clusters[start].ByteStart, Affinity: AffinityDownstream},
		Focus:  Cursor{Index: l.clusters[end-1].ByteEnd, Affinity: AffinityUpstream},
	}
}

// SelectLine returns the selection covering the line containing byte b.
func (l *Layout) SelectLine(b int) Selection {
	if len(l.lines) == 0 {
		return Selection{}
	}
	line, _ := l.cursorSlot(Cursor{Index: b})
	ln := &l.lines[line]
	if ln.ClusterStart == ln.ClusterEnd {
		c := l.slotCursor(line, 0)
		return Selection{Anchor: c, Focus: c}
	}
	return Selection{
		Anchor: Cursor{Index: l.clusters[ln.ClusterStart].ByteStart, Affinity: AffinityDownstream},
		Focus:  Cursor{Index: l.clusters[ln.ClusterEnd-1].ByteEnd, Affinity: AffinityUpstream},
	}
}

// SelectionGeometry returns the rectangles covering the selection, in
// visual order per line. A logical range over bidirectional text may
// produce several rectangles on one line.
func (l *Layout) SelectionGeometry(s Selection) []Rect {
	start, end := s.Normalized()
	if start == end || len(l.lines) == 0 {
		return nil
	}

	var rects []Rect
	for i := range l.lines {
		ln := &l.lines[i]
		top := ln.Baseline - ln.Ascent
		bottom := ln.Baseline + ln.Descent
		var cur *Rect
		for _, ci := range ln.visual {
			cl := &l.clusters[ci]
			selected := !cl.IsBox() && cl.ByteStart < end && cl.ByteEnd > start
			if !selected {
				cur = nil
				continue
			}
			left := l.clusterX[ci]
			right := left + cl.Advance
			if cur != nil && cur.MaxX >= left-0.001 {
				cur.MaxX = right
				continue
			}
			rects = append(rects, Rect{MinX: left, MinY: top, MaxX: right, MaxY: bottom})
			cur = &rects[len(rects)-1]
		}
	}
	return rects
}
