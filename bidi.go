package textlayout

import (
	"golang.org/x/text/unicode/bidi"
)

// maxBidiDepth is the UAX #9 embedding depth limit. Scopes opened beyond
// it overflow and are ignored.
const maxBidiDepth = 125

// bidiEntry is one slot of the shadow buffer the resolver works on. The
// buffer holds every rune of the paragraph plus synthetic directional
// formatting characters injected for styled bidi scopes; synthetic entries
// carry origin -1 and are dropped when levels are copied back.
type bidiEntry struct {
	class  bidi.Class
	origin int
	level  uint8
}

// scopeMarks returns the opening and closing formatting classes for a
// styled bidi scope.
func scopeMarks(ctl BidiControl) (opener, closer bidi.Class) {
	switch ctl {
	case BidiIsolateLTR:
		return bidi.LRI, bidi.PDI
	case BidiIsolateRTL:
		return bidi.RLI, bidi.PDI
	case BidiIsolateAuto:
		return bidi.FSI, bidi.PDI
	case BidiOverrideLTR:
		return bidi.LRO, bidi.PDF
	case BidiOverrideRTL:
		return bidi.RLO, bidi.PDF
	}
	return bidi.ON, bidi.ON
}

// resolveBidi computes the embedding level of every rune in the analyzed
// text. Styled bidi scopes from spans are injected as synthetic isolate or
// override characters before resolution, so nesting and overflow follow
// the same rules as formatting characters present in the text itself.
// Results land in c.levels (per rune) and c.baseLevel.
func (c *Context) resolveBidi(spans []StyleSpan) {
	n := len(c.runes)
	c.levels = c.levels[:0]
	c.shadow = c.shadow[:0]
	if n == 0 {
		c.baseLevel = c.forcedLevel()
		return
	}

	// Scope boundaries: a maximal run of spans sharing the same non-none
	// control forms one scope.
	openAt := make(map[int]bidi.Class)
	closeAt := make(map[int]bidi.Class)
	prev := BidiNone
	prevStart := 0
	flush := func(endByte int) {
		if prev == BidiNone {
			return
		}
		opener, closer := scopeMarks(prev)
		openAt[c.runeIndexAt(prevStart)] = opener
		closeAt[c.runeIndexAt(endByte)] = closer
	}
	for _, sp := range spans {
		if sp.Style.Bidi == prev {
			continue
		}
		flush(sp.Start)
		prev = sp.Style.Bidi
		prevStart = sp.Start
	}
	flush(c.runeByte[n])

	for i := 0; i < n; i++ {
		if cl, ok := closeAt[i]; ok {
			c.shadow = append(c.shadow, bidiEntry{class: cl, origin: -1})
		}
		if cl, ok := openAt[i]; ok {
			c.shadow = append(c.shadow, bidiEntry{class: cl, origin: -1})
		}
		c.shadow = append(c.shadow, bidiEntry{class: c.info[i].class, origin: i})
	}
	if cl, ok := closeAt[n]; ok {
		c.shadow = append(c.shadow, bidiEntry{class: cl, origin: -1})
	}

	c.baseLevel = c.paragraphLevel()
	resolveExplicit(c.shadow, c.baseLevel)
	resolveRuns(c.shadow, c.baseLevel)

	c.levels = append(c.levels, make([]uint8, n)...)
	for _, e := range c.shadow {
		if e.origin >= 0 {
			c.levels[e.origin] = e.level
		}
	}
}

// forcedLevel maps an explicitly requested base direction to a level.
// Automatic detection yields level 0 for empty text.
func (c *Context) forcedLevel() uint8 {
	if !c.autoDir && c.baseDir == DirectionRTL {
		return 1
	}
	return 0
}

// paragraphLevel applies rules P2 and P3: the first strong character
// outside any isolate decides the base level, unless the caller forced a
// direction.
func (c *Context) paragraphLevel() uint8 {
	if !c.autoDir {
		return c.forcedLevel()
	}
	depth := 0
	for _, e := range c.shadow {
		switch e.class {
		case bidi.LRI, bidi.RLI, bidi.FSI:
			depth++
		case bidi.PDI:
			if depth > 0 {
				depth--
			}
		case bidi.L:
			if depth == 0 {
				return 0
			}
		case bidi.R, bidi.AL:
			if depth == 0 {
				return 1
			}
		}
	}
	return 0
}

// dirStatus is one frame of the directional status stack used by the
// explicit rules X1 through X8.
type dirStatus struct {
	level    uint8
	override bidi.Class
	isolate  bool
}

// resolveExplicit assigns levels according to embedding, override and
// isolate formatting characters (rules X1 through X8), then neutralizes
// the embedding and override characters themselves (X9).
func resolveExplicit(entries []bidiEntry, base uint8) {
	stack := []dirStatus{{level: base, override: bidi.ON}}
	overflowIsolate := 0
	overflowEmbed := 0
	validIsolate := 0

	top := func() dirStatus { return stack[len(stack)-1] }
	nextOdd := func(l uint8) uint8 { return l + 1 + l%2 }
	nextEven := func(l uint8) uint8 { return l + 2 - l%2 }

	push := func(level uint8, override bidi.Class, isolate bool) bool {
		if level > maxBidiDepth || overflowIsolate > 0 || overflowEmbed > 0 {
			if isolate {
				overflowIsolate++
			} else if overflowIsolate == 0 {
				overflowEmbed++
			}
			return false
		}
		stack = append(stack, dirStatus{level: level, override: override, isolate: isolate})
		return true
	}

	for i := range entries {
		e := &entries[i]
		switch e.class {
		case bidi.RLE, bidi.LRE, bidi.RLO, bidi.LRO:
			e.level = top().level
			level := nextOdd(top().level)
			override := bidi.R
			if e.class == bidi.LRE || e.class == bidi.LRO {
				level = nextEven(top().level)
				override = bidi.L
			}
			if e.class == bidi.RLE || e.class == bidi.LRE {
				override = bidi.ON
			}
			push(level, override, false)
			e.class = bidi.BN

		case bidi.LRI, bidi.RLI, bidi.FSI:
			cl := e.class
			if cl == bidi.FSI {
				cl = bidi.LRI
				if firstStrongInIsolate(entries[i+1:]) == bidi.R {
					cl = bidi.RLI
				}
			}
			e.level = top().level
			if ov := top().override; ov != bidi.ON {
				e.class = ov
			}
			level := nextEven(top().level)
			if cl == bidi.RLI {
				level = nextOdd(top().level)
			}
			if push(level, bidi.ON, true) {
				validIsolate++
			}

		case bidi.PDI:
			if overflowIsolate > 0 {
				overflowIsolate--
			} else if validIsolate > 0 {
				overflowEmbed = 0
				for !top().isolate {
					stack = stack[:len(stack)-1]
				}
				stack = stack[:len(stack)-1]
				validIsolate--
			}
			e.level = top().level
			if ov := top().override; ov != bidi.ON {
				e.class = ov
			}

		case bidi.PDF:
			if overflowIsolate > 0 {
				// ignored inside an overflowing isolate
			} else if overflowEmbed > 0 {
				overflowEmbed--
			} else if !top().isolate && len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			e.level = top().level
			e.class = bidi.BN

		case bidi.B:
			e.level = base

		default:
			e.level = top().level
			if ov := top().override; ov != bidi.ON && e.class != bidi.BN {
				e.class = ov
			}
		}
	}
}

// firstStrongInIsolate scans forward to the matching PDI and reports the
// first strong class, for FSI direction detection (rule X5c).
func firstStrongInIsolate(entries []bidiEntry) bidi.Class {
	depth := 0
	for _, e := range entries {
		switch e.class {
		case bidi.LRI, bidi.RLI, bidi.FSI:
			depth++
		case bidi.PDI:
			if depth == 0 {
				return bidi.ON
			}
			depth--
		case bidi.L:
			if depth == 0 {
				return bidi.L
			}
		case bidi.R, bidi.AL:
			if depth == 0 {
				return bidi.R
			}
		}
	}
	return bidi.ON
}

// resolveRuns applies the weak, neutral and implicit rules to each level
// run. Isolate initiators and PDI act as neutral characters at their
// resolved level.
func resolveRuns(entries []bidiEntry, base uint8) {
	for i := range entries {
		switch entries[i].class {
		case bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
			entries[i].class = bidi.ON
		}
	}

	n := len(entries)
	run := make([]int, 0, n)
	i := 0
	for i < n {
		if entries[i].class == bidi.BN {
			i++
			continue
		}
		level := entries[i].level
		j := i
		run = run[:0]
		for j < n {
			if entries[j].class == bidi.BN {
				j++
				continue
			}
			if entries[j].level != level {
				break
			}
			run = append(run, j)
			j++
		}

		sos := boundaryClass(prevLevel(entries, i, base), level)
		eos := boundaryClass(nextLevel(entries, j-1, base), level)
		resolveWeak(entries, run, sos)
		resolveNeutral(entries, run, sos, eos, level)
		resolveImplicit(entries, run, level)

		i = j
	}

	// BN entries inherit the level of the preceding entry so real
	// formatting runes in the text keep a sensible position.
	last := base
	for i := range entries {
		if entries[i].class == bidi.BN {
			entries[i].level = last
		} else {
			last = entries[i].level
		}
	}
}

func prevLevel(entries []bidiEntry, i int, base uint8) uint8 {
	for k := i - 1; k >= 0; k-- {
		if entries[k].class != bidi.BN {
			return entries[k].level
		}
	}
	return base
}

func nextLevel(entries []bidiEntry, i int, base uint8) uint8 {
	for k := i + 1; k < len(entries); k++ {
		if entries[k].class != bidi.BN {
			return entries[k].level
		}
	}
	return base
}

// boundaryClass gives the sos or eos class for a run boundary: the higher
// of the two adjacent levels decides.
func boundaryClass(adjacent, level uint8) bidi.Class {
	if adjacent > level {
		level = adjacent
	}
	if level%2 == 1 {
		return bidi.R
	}
	return bidi.L
}

// resolveWeak applies rules W1 through W7 to one level run.
func resolveWeak(entries []bidiEntry, run []int, sos bidi.Class) {
	// W1: combining marks take the class of their base.
	prev := sos
	for _, k := range run {
		if entries[k].class == bidi.NSM {
			entries[k].class = prev
		}
		prev = entries[k].class
	}

	// W2: European numbers after Arabic letters become Arabic numbers.
	strong := sos
	for _, k := range run {
		switch entries[k].class {
		case bidi.L, bidi.R, bidi.AL:
			strong = entries[k].class
		case bidi.EN:
			if strong == bidi.AL {
				entries[k].class = bidi.AN
			}
		}
	}

	// W3: Arabic letters are treated as R from here on.
	for _, k := range run {
		if entries[k].class == bidi.AL {
			entries[k].class = bidi.R
		}
	}

	// W4: single separators between matching numbers join them.
	for idx := 1; idx < len(run)-1; idx++ {
		k := run[idx]
		before := entries[run[idx-1]].class
		after := entries[run[idx+1]].class
		switch entries[k].class {
		case bidi.ES:
			if before == bidi.EN && after == bidi.EN {
				entries[k].class = bidi.EN
			}
		case bidi.CS:
			if before == bidi.EN && after == bidi.EN {
				entries[k].class = bidi.EN
			} else if before == bidi.AN && after == bidi.AN {
				entries[k].class = bidi.AN
			}
		}
	}

	// W5: terminator sequences adjacent to European numbers join them.
	for idx := 0; idx < len(run); idx++ {
		if entries[run[idx]].class != bidi.ET {
			continue
		}
		end := idx
		for end < len(run) && entries[run[end]].class == bidi.ET {
			end++
		}
		joins := (idx > 0 && entries[run[idx-1]].class == bidi.EN) ||
			(end < len(run) && entries[run[end]].class == bidi.EN)
		if joins {
			for t := idx; t < end; t++ {
				entries[run[t]].class = bidi.EN
			}
		}
		idx = end - 1
	}

	// W6: remaining separators and terminators become neutral.
	for _, k := range run {
		switch entries[k].class {
		case bidi.ES, bidi.ET, bidi.CS:
			entries[k].class = bidi.ON
		}
	}

	// W7: European numbers after L strong text become L.
	strong = sos
	for _, k := range run {
		switch entries[k].class {
		case bidi.L, bidi.R:
			strong = entries[k].class
		case bidi.EN:
			if strong == bidi.L {
				entries[k].class = bidi.L
			}
		}
	}
}

// resolveNeutral applies rules N1 and N2 to one level run. Numbers count
// as R for the purpose of surrounding neutrals.
func resolveNeutral(entries []bidiEntry, run []int, sos, eos bidi.Class, level uint8) {
	strongSide := func(cl bidi.Class) bidi.Class {
		switch cl {
		case bidi.EN, bidi.AN, bidi.R:
			return bidi.R
		case bidi.L:
			return bidi.L
		}
		return bidi.ON
	}
	embedding := bidi.L
	if level%2 == 1 {
		embedding = bidi.R
	}

	for idx := 0; idx < len(run); idx++ {
		if !isNeutral(entries[run[idx]].class) {
			continue
		}
		end := idx
		for end < len(run) && isNeutral(entries[run[end]].class) {
			end++
		}
		before := strongSide(sos)
		if idx > 0 {
			before = strongSide(entries[run[idx-1]].class)
		}
		after := strongSide(eos)
		if end < len(run) {
			after = strongSide(entries[run[end]].class)
		}
		resolved := embedding
		if before == after && before != bidi.ON {
			resolved = before
		}
		for t := idx; t < end; t++ {
			entries[run[t]].class = resolved
		}
		idx = end - 1
	}
}

func isNeutral(cl bidi.Class) bool {
	switch cl {
	case bidi.B, bidi.S, bidi.WS, bidi.ON:
		return true
	}
	return false
}

// resolveImplicit applies rules I1 and I2, bumping levels according to the
// resolved class of each entry.
func resolveImplicit(entries []bidiEntry, run []int, level uint8) {
	even := level%2 == 0
	for _, k := range run {
		switch entries[k].class {
		case bidi.R:
			if even {
				entries[k].level = level + 1
			}
		case bidi.L:
			if !even {
				entries[k].level = level + 1
			}
		case bidi.EN, bidi.AN:
			if even {
				entries[k].level = level + 2
			} else {
				entries[k].level = level + 1
			}
		}
	}
}

// reorderVisual computes the visual order of a sequence of items from
// their embedding levels (rule L2): from the highest level down to 1,
// every maximal subsequence at or above that level is reversed. order
// must have len(levels) entries; it is filled with indices into levels.
func reorderVisual(levels []uint8, order []int) {
	for i := range order {
		order[i] = i
	}
	var max uint8
	min := uint8(maxBidiDepth + 1)
	for _, l := range levels {
		if l > max {
			max = l
		}
		if l%2 == 1 && l < min {
			min = l
		}
	}
	if min > max {
		return
	}
	for level := max; level >= min; level-- {
		i := 0
		for i < len(levels) {
			if levels[order[i]] < level {
				i++
				continue
			}
			j := i
			for j < len(levels) && levels[order[j]] >= level {
				j++
			}
			for lo, hi := i, j-1; lo < hi; lo, hi = lo+1, hi-1 {
				order[lo], order[hi] = order[hi], order[lo]
			}
			i = j
		}
	}
}
