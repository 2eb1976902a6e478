package textlayout

import "math"

// Line is one laid-out row of the paragraph: a logical cluster range plus
// vertical metrics and the horizontal placement computed by alignment.
type Line struct {
	// ClusterStart and ClusterEnd index the layout's cluster slice.
	// Trailing whitespace and the terminating separator belong to the
	// line but do not count toward Advance.
	ClusterStart, ClusterEnd int

	// Reason records why the line ended.
	Reason BreakReason

	// Ascent, Descent and LineGap are the maxima over the line's runs.
	Ascent, Descent, LineGap float64

	// Baseline is the Y coordinate of the baseline, measured from the
	// top of the layout.
	Baseline float64

	// Advance is the line's width excluding trailing whitespace.
	Advance float64

	// TrailingWhitespace is the advance of the trailing whitespace.
	TrailingWhitespace float64

	// Offset is the X coordinate of the line's visual left edge after
	// alignment.
	Offset float64

	// justify is the extra width added at each stretchable gap, and gaps
	// the number of such gaps.
	justify float64
	gaps    int

	visual []int
}

// Height returns the line's total height.
func (ln *Line) Height() float64 { return ln.Ascent + ln.Descent + ln.LineGap }

// Width returns the line's width after alignment, including any space
// distributed by justification.
func (ln *Line) Width() float64 { return ln.Advance + float64(ln.gaps)*ln.justify }

// VisualClusters returns the line's cluster indices in visual order,
// left to right.
func (ln *Line) VisualClusters() []int { return ln.visual }

// BreakLines greedily forms lines no wider than maxWidth. Break
// opportunities come from the analysis pass; when a single unbreakable
// segment exceeds maxWidth the breaker falls back to emergency breaks at
// grapheme boundaries so layout always terminates. Lines are start-aligned
// until AlignLines runs.
//
// BreakLines may be called again with a different width without
// reshaping.
func (l *Layout) BreakLines(maxWidth float64) {
	l.lines = l.lines[:0]
	l.maxWidth = maxWidth
	l.alignment = AlignStart

	lineStart := 0
	var width float64
	lastBreak := -1

	flush := func(end int, reason BreakReason) {
		l.pushLine(lineStart, end, reason)
		lineStart = end
		width = 0
		lastBreak = -1
	}

	for ci := 0; ci < len(l.clusters); ci++ {
		cl := &l.clusters[ci]

		if !cl.IsWhitespace() && width+cl.Advance > maxWidth && ci > lineStart {
			if lastBreak > lineStart {
				flush(lastBreak, BreakSoft)
			} else {
				flush(ci, BreakEmergency)
			}
			// Reprocess from the new line start.
			ci = lineStart - 1
			continue
		}

		width += cl.Advance
		if cl.flags&clusterMandatoryAfter != 0 {
			flush(ci+1, BreakExplicit)
			continue
		}
		if cl.IsWhitespace() || cl.flags&clusterBreakAfter != 0 {
			lastBreak = ci + 1
		}
	}

	last := len(l.lines)
	if lineStart < len(l.clusters) || last == 0 ||
		l.lines[last-1].Reason == BreakExplicit {
		l.pushLine(lineStart, len(l.clusters), BreakNone)
	}

	l.finishLines()
}

// BreakLinesUnbounded forms lines without wrapping, so only mandatory
// breaks produce new lines.
func (l *Layout) BreakLinesUnbounded() {
	l.BreakLines(math.Inf(1))
}

// pushLine appends the line covering clusters [start, end).
func (l *Layout) pushLine(start, end int, reason BreakReason) {
	ln := Line{ClusterStart: start, ClusterEnd: end, Reason: reason}

	// Trailing whitespace is measured but excluded from the advance.
	content := start
	for ci := start; ci < end; ci++ {
		if !l.clusters[ci].IsWhitespace() && !l.clusters[ci].IsNewline() {
			content = ci + 1
		}
	}
	for ci := start; ci < end; ci++ {
		if ci < content {
			ln.Advance += l.clusters[ci].Advance
		} else {
			ln.TrailingWhitespace += l.clusters[ci].Advance
		}
	}

	seen := -1
	for ci := start; ci < end; ci++ {
		ri := l.clusters[ci].Run
		if ri == seen {
			continue
		}
		seen = ri
		m := &l.runs[ri].Metrics
		if m.Ascent > ln.Ascent {
			ln.Ascent = m.Ascent
		}
		if m.Descent > ln.Descent {
			ln.Descent = m.Descent
		}
		if m.LineGap > ln.LineGap {
			ln.LineGap = m.LineGap
		}
	}
	if start == end {
		m := l.defaultMetrics
		ln.Ascent, ln.Descent, ln.LineGap = m.Ascent, m.Descent, m.LineGap
		if l.defaultLineH > 0 && l.defaultLineH != 1 {
			ln.Ascent *= l.defaultLineH
			ln.Descent *= l.defaultLineH
			ln.LineGap *= l.defaultLineH
		}
	}

	l.lines = append(l.lines, ln)
}

// finishLines computes baselines, the cluster-to-line index, the visual
// order of each line and the per-cluster positions.
func (l *Layout) finishLines() {
	l.width = 0
	var y float64
	for i := range l.lines {
		ln := &l.lines[i]
		if i == 0 {
			y = ln.Ascent
		} else {
			prev := &l.lines[i-1]
			y += prev.Descent + ln.LineGap + ln.Ascent
		}
		ln.Baseline = y
		if ln.Advance > l.width {
			l.width = ln.Advance
		}
	}
	if n := len(l.lines); n > 0 {
		l.height = y + l.lines[n-1].Descent
	} else {
		l.height = 0
	}

	l.clusterLine = l.clusterLine[:0]
	for i := range l.lines {
		ln := &l.lines[i]
		for ci := ln.ClusterStart; ci < ln.ClusterEnd; ci++ {
			l.clusterLine = append(l.clusterLine, i)
		}
		l.orderLine(ln)
	}
	l.materialize()
}

// orderLine computes the visual cluster order of one line. Trailing
// whitespace is forced to the base level first, so it lands at the
// line's logical end visually.
func (l *Layout) orderLine(ln *Line) {
	n := ln.ClusterEnd - ln.ClusterStart
	if cap(ln.visual) < n {
		ln.visual = make([]int, n)
	}
	ln.visual = ln.visual[:n]
	if n == 0 {
		return
	}

	levels := make([]uint8, n)
	for k := 0; k < n; k++ {
		levels[k] = l.runs[l.clusters[ln.ClusterStart+k].Run].Level
	}
	for k := n - 1; k >= 0; k-- {
		cl := &l.clusters[ln.ClusterStart+k]
		if !cl.IsWhitespace() && !cl.IsNewline() {
			break
		}
		levels[k] = l.baseLevel
	}

	order := make([]int, n)
	reorderVisual(levels, order)
	for k, idx := range order {
		ln.visual[k] = ln.ClusterStart + idx
	}
}

// materialize assigns the visual X position of every cluster from line
// offsets and justification state.
func (l *Layout) materialize() {
	if cap(l.clusterX) < len(l.clusters) {
		l.clusterX = make([]float64, len(l.clusters))
	}
	l.clusterX = l.clusterX[:len(l.clusters)]

	for i := range l.lines {
		ln := &l.lines[i]
		x := ln.Offset
		for _, ci := range ln.visual {
			cl := &l.clusters[ci]
			l.clusterX[ci] = x
			x += cl.Advance
			if ln.justify != 0 && l.isGap(ln, ci) {
				x += ln.justify
			}
		}
		l.interpolateLigatures(ln)
	}
}

// interpolateLigatures spreads caret positions of ligature continuations
// evenly across the ligature's advance, so a caret inside "fi" lands in
// the middle of the glyph instead of at its edge.
func (l *Layout) interpolateLigatures(ln *Line) {
	for ci := ln.ClusterStart; ci < ln.ClusterEnd; ci++ {
		cl := &l.clusters[ci]
		if !cl.IsLigatureStart() {
			continue
		}
		parts := 1
		for ci+parts < ln.ClusterEnd && l.clusters[ci+parts].IsLigatureContinuation() {
			parts++
		}
		if parts == 1 {
			continue
		}
		rtl := l.runs[cl.Run].Level%2 == 1
		for k := 1; k < parts; k++ {
			frac := float64(k) / float64(parts)
			if rtl {
				frac = 1 - frac
			}
			l.clusterX[ci+k] = l.clusterX[ci] + cl.Advance*frac
		}
		ci += parts - 1
	}
}

// isGap reports whether cluster ci is a stretchable justification gap on
// line ln: breakable whitespace that is not trailing.
func (l *Layout) isGap(ln *Line, ci int) bool {
	if !l.clusters[ci].IsWhitespace() {
		return false
	}
	for k := ci + 1; k < ln.ClusterEnd; k++ {
		cl := &l.clusters[k]
		if !cl.IsWhitespace() && !cl.IsNewline() {
			return true
		}
	}
	return false
}

// AlignLines positions each line inside containerWidth according to
// align. Call it after BreakLines; it may be called repeatedly with
// different parameters without reshaping or rebreaking.
//
// Justification stretches the whitespace gaps of every line that was
// broken by a soft or emergency break; explicitly broken lines and the
// last line keep their natural width and align to the start edge.
func (l *Layout) AlignLines(containerWidth float64, align Alignment) {
	l.alignment = align
	rtl := l.baseLevel%2 == 1

	for i := range l.lines {
		ln := &l.lines[i]
		ln.justify = 0
		ln.gaps = 0
		free := containerWidth - ln.Advance

		mode := align
		if mode == AlignJustify &&
			(ln.Reason == BreakExplicit || ln.Reason == BreakNone) {
			mode = AlignStart
		}

		switch mode {
		case AlignStart:
			if rtl {
				ln.Offset = free
			} else {
				ln.Offset = 0
			}
		case AlignEnd:
			if rtl {
				ln.Offset = 0
			} else {
				ln.Offset = free
			}
		case AlignCenter:
			ln.Offset = free / 2
		case AlignJustify:
			ln.Offset = 0
			for ci := ln.ClusterStart; ci < ln.ClusterEnd; ci++ {
				if l.isGap(ln, ci) {
					ln.gaps++
				}
			}
			if ln.gaps > 0 && free > 0 {
				ln.justify = free / float64(ln.gaps)
			} else if rtl {
				ln.Offset = free
			}
		}
	}
	l.materialize()
}
