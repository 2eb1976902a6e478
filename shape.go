package textlayout

import (
	"fmt"
)

// shapeText itemizes the analyzed text into uniform segments, shapes each
// one, and assembles the layout's glyph, cluster and run slices. Segment
// boundaries fall wherever the style span, bidi level, script or resolved
// font changes, and at every inline box position.
func shapeText(ctx *Context, fonts *FontContext, l *Layout) error {
	n := len(ctx.runes)

	boxAt := make(map[int][]int, len(l.boxes))
	for bi := range l.boxes {
		pos := ctx.runeIndexAt(l.boxes[bi].Index)
		boxAt[pos] = append(boxAt[pos], bi)
	}
	emitBoxes := func(pos int) {
		for _, bi := range boxAt[pos] {
			l.appendBoxRun(ctx, bi, pos)
		}
	}

	var spanFonts []*Font
	var spanSyns []Synthesis

	for si := range l.spans {
		span := &l.spans[si]
		style := &span.Style
		runeStart := ctx.runeIndexAt(span.Start)
		runeEnd := ctx.runeIndexAt(span.End)
		if runeStart == runeEnd {
			continue
		}

		primary, primarySyn, err := fonts.provider.ResolveFont(styleQuery(style))
		if err != nil {
			return fmt.Errorf("textlayout: resolve font for span %d..%d: %w", span.Start, span.End, err)
		}

		// Per-rune font selection with coverage fallback. Whitespace and
		// uncovered runes stick to the current font so spaces between
		// fallback words do not split runs.
		spanFonts = spanFonts[:0]
		spanSyns = spanSyns[:0]
		cur, curSyn := primary, primarySyn
		missing := false
		for i := runeStart; i < runeEnd; i++ {
			r := ctx.runes[i]
			switch {
			case ctx.info[i].flags&charWhitespace != 0 || isParagraphSeparator(r):
				// keep cur
			case cur.Covers(r):
				// keep cur
			case primary.Covers(r):
				cur, curSyn = primary, primarySyn
			default:
				f, syn, err := fonts.provider.ResolveFontForRune(styleQuery(style), r)
				if err != nil {
					missing = true
				} else {
					cur, curSyn = f, syn
				}
			}
			spanFonts = append(spanFonts, cur)
			spanSyns = append(spanSyns, curSyn)
		}
		if missing {
			Logger().Warn("no registered font covers some characters",
				"span_start", span.Start, "span_end", span.End)
		}

		segStart := runeStart
		for i := runeStart; i <= runeEnd; i++ {
			atEnd := i == runeEnd
			boundary := atEnd
			if !atEnd && i > segStart {
				boundary = ctx.levels[i] != ctx.levels[i-1] ||
					ctx.info[i].script != ctx.info[i-1].script ||
					spanFonts[i-runeStart] != spanFonts[i-1-runeStart]
			}
			if !atEnd && len(boxAt[i]) > 0 {
				boundary = true
			}
			if boundary && i > segStart {
				err := l.shapeSegment(ctx, fonts, si, segStart, i,
					spanFonts[segStart-runeStart], spanSyns[segStart-runeStart])
				if err != nil {
					return err
				}
				segStart = i
			}
			if !atEnd {
				emitBoxes(i)
			}
		}
	}

	emitBoxes(n)
	return nil
}

// shapeSegment shapes one uniform rune range and appends its run,
// clusters and glyphs to the layout.
func (l *Layout) shapeSegment(ctx *Context, fonts *FontContext, si, start, end int, f *Font, syn Synthesis) error {
	style := &l.spans[si].Style
	level := ctx.levels[start]
	script := ctx.info[start].script

	inst, err := fonts.shapeInstance(f, style.FontSize, syn, style.Variations)
	if err != nil {
		return err
	}
	dir := levelDirection(level)
	plan, err := fonts.shapePlan(f, dir, script, style.Locale, style.Features)
	if err != nil {
		return err
	}
	out, err := fonts.shaper.Shape(ShapeInput{
		Text:      ctx.runes,
		Start:     start,
		End:       end,
		Font:      f,
		Instance:  inst,
		Plan:      plan,
		Direction: dir,
		Script:    script,
		Locale:    style.Locale,
		Size:      style.FontSize,
		Features:  style.Features,
	})
	if err != nil {
		return fmt.Errorf("textlayout: shape %d..%d: %w", start, end, err)
	}

	run := Run{
		ClusterStart: len(l.clusters),
		GlyphStart:   len(l.glyphs),
		Style:        si,
		Font:         f,
		Synthesis:    syn,
		Level:        level,
		Script:       script,
		Size:         style.FontSize,
		Metrics:      runMetrics(f, style),
		Box:          -1,
	}

	glyphBase := len(l.glyphs)
	l.glyphs = append(l.glyphs, out.Glyphs...)
	l.foldClusters(ctx, style, len(l.runs), start, end, glyphBase, out.Glyphs)

	run.ClusterEnd = len(l.clusters)
	run.GlyphEnd = len(l.glyphs)
	for ci := run.ClusterStart; ci < run.ClusterEnd; ci++ {
		run.Advance += l.clusters[ci].Advance
	}
	l.runs = append(l.runs, run)
	return nil
}

// foldClusters converts a segment's glyphs into grapheme clusters. Glyphs
// sharing a cluster value form a group; when a group covers several
// graphemes, the first grapheme owns the glyphs and the advance and the
// rest become zero-width ligature continuations.
func (l *Layout) foldClusters(ctx *Context, style *Style, runIdx, start, end, glyphBase int, glyphs []ShapedGlyph) {
	gi := 0
	for gi < len(glyphs) {
		groupStart := gi
		groupRune := glyphs[gi].Cluster
		gi++
		// A group also absorbs glyphs whose cluster rune does not start a
		// grapheme, so a base plus combining marks folds into one cluster
		// even when the shaper reports per-rune cluster values.
		for gi < len(glyphs) {
			c := glyphs[gi].Cluster
			if c != groupRune && ctx.info[c].flags&charGraphemeStart != 0 {
				break
			}
			gi++
		}
		runeEnd := end
		if gi < len(glyphs) {
			runeEnd = glyphs[gi].Cluster
		}

		var groupAdvance float64
		for k := groupStart; k < gi; k++ {
			groupAdvance += glyphs[k].XAdvance
		}

		firstCI := len(l.clusters)
		first := true
		for ri := groupRune; ri < runeEnd; ri++ {
			if !first && ctx.info[ri].flags&charGraphemeStart == 0 {
				continue
			}
			cl := Cluster{
				RuneStart:  ri,
				ByteStart:  ctx.runeByte[ri],
				GlyphStart: glyphBase + groupStart,
				GlyphEnd:   glyphBase + groupStart,
				Run:        runIdx,
			}
			if first {
				cl.GlyphEnd = glyphBase + gi
				cl.Advance = groupAdvance
			}
			l.clusters = append(l.clusters, cl)
			first = false
		}

		// Close rune ranges now that every cluster start is known.
		count := len(l.clusters) - firstCI
		for k := 0; k < count; k++ {
			ci := firstCI + k
			if k+1 < count {
				l.clusters[ci].RuneEnd = l.clusters[ci+1].RuneStart
			} else {
				l.clusters[ci].RuneEnd = runeEnd
			}
			l.clusters[ci].ByteEnd = ctx.runeByte[l.clusters[ci].RuneEnd]
			l.finishCluster(ctx, style, ci, count > 1, k)
		}
	}
}

// finishCluster applies flags and spacing to cluster ci.
func (l *Layout) finishCluster(ctx *Context, style *Style, ci int, ligature bool, ord int) {
	cl := &l.clusters[ci]
	if ligature {
		if ord == 0 {
			cl.flags |= clusterLigStart
		} else {
			cl.flags |= clusterLigCont
		}
	}

	firstRune := cl.RuneStart
	lastRune := cl.RuneEnd - 1
	if ctx.info[firstRune].flags&charWordStart != 0 {
		cl.flags |= clusterWordStart
	}
	if ctx.info[firstRune].flags&charWhitespace != 0 {
		cl.flags |= clusterWhitespace
	}
	if ctx.info[lastRune].flags&charBreakAfter != 0 {
		cl.flags |= clusterBreakAfter
	}
	if ctx.info[lastRune].flags&charMandatoryAfter != 0 {
		cl.flags |= clusterMandatoryAfter
		cl.flags |= clusterNewline
	}

	if cl.IsNewline() {
		// Separators occupy no width; their glyphs stay for index
		// bookkeeping but never draw.
		cl.Advance = 0
		return
	}
	if style.LetterSpacing != 0 && !cl.IsLigatureContinuation() {
		cl.Advance += style.LetterSpacing
	}
	if style.WordSpacing != 0 && cl.IsWhitespace() {
		cl.Advance += style.WordSpacing
	}
}

// runMetrics scales face metrics to the span's size and line height.
func runMetrics(f *Font, style *Style) Metrics {
	m := f.Metrics(style.FontSize)
	if style.LineHeight > 0 && style.LineHeight != 1 {
		m.Ascent *= style.LineHeight
		m.Descent *= style.LineHeight
		m.LineGap *= style.LineHeight
	}
	return m
}

// appendBoxRun inserts the synthetic run and cluster of inline box bi at
// rune position pos.
func (l *Layout) appendBoxRun(ctx *Context, bi, pos int) {
	box := l.boxes[bi]
	si := l.spanIndexAt(box.Index)
	cl := Cluster{
		RuneStart:  pos,
		RuneEnd:    pos,
		ByteStart:  box.Index,
		ByteEnd:    box.Index,
		GlyphStart: len(l.glyphs),
		GlyphEnd:   len(l.glyphs),
		Advance:    box.Width,
		Run:        len(l.runs),
		flags:      clusterBox,
	}
	level := l.baseLevel
	if pos < len(l.levels) {
		level = l.levels[pos]
	}
	l.runs = append(l.runs, Run{
		ClusterStart: len(l.clusters),
		ClusterEnd:   len(l.clusters) + 1,
		GlyphStart:   len(l.glyphs),
		GlyphEnd:     len(l.glyphs),
		Style:        si,
		Level:        level,
		Advance:      box.Width,
		Metrics:      Metrics{Ascent: box.Height},
		Box:          bi,
		kind:         runBox,
	})
	l.clusters = append(l.clusters, cl)
}

// spanIndexAt returns the index of the span containing byte offset b.
func (l *Layout) spanIndexAt(b int) int {
	for i := range l.spans {
		if b < l.spans[i].End {
			return i
		}
	}
	return len(l.spans) - 1
}
