package textlayout

import (
	"unicode"

	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/bidi"
)

// charFlags packs the per-rune boolean properties.
type charFlags uint8

const (
	// charGraphemeStart marks the first rune of a grapheme cluster.
	charGraphemeStart charFlags = 1 << iota
	// charWordStart marks the first rune of a word.
	charWordStart
	// charBreakAfter marks a line-break opportunity after this rune.
	charBreakAfter
	// charMandatoryAfter marks a paragraph separator: a line must end here.
	charMandatoryAfter
	// charWhitespace marks breakable whitespace.
	charWhitespace
	// charEmoji marks emoji and pictographic runes.
	charEmoji
)

// charInfo is the packed per-rune property record produced by the analysis
// pass: everything later stages need, collected in one sweep so the bidi
// resolver, run splitter and line breaker never consult Unicode tables
// themselves.
type charInfo struct {
	byteOffset int
	class      bidi.Class
	script     language.Script
	flags      charFlags
}

// Scripts with special roles during itemization, resolved through the same
// lookup the analysis uses so the values cannot drift from the table.
var (
	scriptCommon    = language.LookupScript(' ')
	scriptInherited = language.LookupScript('\u0300')
)

// analyze fills the context's per-rune analysis buffer for text.
// The buffer is reused across builds; it grows but is never freed.
func (c *Context) analyze(text string) {
	c.runes = c.runes[:0]
	c.runeByte = c.runeByte[:0]
	c.info = c.info[:0]

	for i, r := range text {
		c.runes = append(c.runes, r)
		c.runeByte = append(c.runeByte, i)
	}
	c.runeByte = append(c.runeByte, len(text))

	if len(c.runes) == 0 {
		return
	}

	// Per-rune table lookups: bidi class, script, whitespace, emoji.
	rest := text
	for i, r := range c.runes {
		props, sz := bidi.LookupString(rest)
		rest = rest[sz:]
		info := charInfo{
			byteOffset: c.runeByte[i],
			class:      props.Class(),
			script:     language.LookupScript(r),
		}
		if isBreakableSpace(r) {
			info.flags |= charWhitespace
		}
		if isEmoji(r) {
			info.flags |= charEmoji
		}
		c.info = append(c.info, info)
	}

	c.resolveScripts()
	c.markSegments()
	c.markWords()
}

// resolveScripts replaces Inherited and Common script values with the
// script of surrounding concrete text, so that punctuation and combining
// marks do not split shaping runs.
func (c *Context) resolveScripts() {
	last := scriptCommon
	for i := range c.info {
		s := c.info[i].script
		if s == scriptInherited || s == scriptCommon {
			c.info[i].script = last
		} else {
			last = s
		}
	}
	// A leading run of Common characters inherits from the first concrete
	// script that follows.
	last = scriptCommon
	for i := len(c.info) - 1; i >= 0; i-- {
		s := c.info[i].script
		if s == scriptCommon {
			if last != scriptCommon {
				c.info[i].script = last
			}
		} else {
			last = s
		}
	}
}

// markSegments runs the UAX #14 and UAX #29 segmenters and records line
// break opportunities, mandatory breaks and grapheme cluster starts.
func (c *Context) markSegments() {
	c.seg.Init(c.runes)

	lines := c.seg.LineIterator()
	for lines.Next() {
		line := lines.Line()
		end := line.Offset + len(line.Text)
		if end == 0 {
			continue
		}
		c.info[end-1].flags |= charBreakAfter
		if line.IsMandatoryBreak && isParagraphSeparator(c.runes[end-1]) {
			c.info[end-1].flags |= charMandatoryAfter
		}
	}

	graphemes := c.seg.GraphemeIterator()
	for graphemes.Next() {
		g := graphemes.Grapheme()
		c.info[g.Offset].flags |= charGraphemeStart
	}
}

// markWords flags word starts. Word granularity here serves cursor motion:
// a word starts at a whitespace-to-content transition, at a letter/digit to
// punctuation transition, and at every ideograph.
func (c *Context) markWords() {
	var prev rune
	for i, r := range c.runes {
		if c.info[i].flags&charGraphemeStart == 0 {
			prev = r
			continue
		}
		if isWordStart(prev, r, i == 0) {
			c.info[i].flags |= charWordStart
		}
		prev = r
	}
}

// isWordStart reports whether r begins a word after prev.
func isWordStart(prev, r rune, first bool) bool {
	if isBreakableSpace(r) {
		return false
	}
	if first || isBreakableSpace(prev) {
		return true
	}
	if isIdeograph(r) {
		return true
	}
	prevAlnum := unicode.IsLetter(prev) || unicode.IsDigit(prev)
	alnum := unicode.IsLetter(r) || unicode.IsDigit(r)
	return prevAlnum != alnum
}

// isBreakableSpace reports whitespace that may stretch under justification
// and may be dropped at a line end. No-break spaces are excluded.
func isBreakableSpace(r rune) bool {
	switch r {
	case '\u00A0', '\u202F':
		return false
	}
	return unicode.IsSpace(r)
}

// isParagraphSeparator reports runes that terminate a paragraph.
func isParagraphSeparator(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// isIdeograph reports CJK runes, which break lines and words anywhere.
func isIdeograph(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x20000 && r <= 0x2A6DF) || // CJK Extension B
		(r >= 0x3040 && r <= 0x309F) || // Hiragana
		(r >= 0x30A0 && r <= 0x30FF) || // Katakana
		(r >= 0xAC00 && r <= 0xD7AF) // Hangul Syllables
}

// isEmoji reports emoji-presentation and pictographic runes, including
// skin-tone modifiers and regional indicators.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // Misc pictographs through extended-A
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // Regional indicators
		return true
	case r >= 0x2600 && r <= 0x27BF: // Misc symbols, dingbats
		return true
	case r == 0xFE0F: // Emoji variation selector
		return true
	}
	return false
}

// runeIndexAt returns the index of the rune containing byte offset b.
// b must be a rune boundary; len(text) maps to len(runes).
func (c *Context) runeIndexAt(b int) int {
	lo, hi := 0, len(c.runeByte)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if c.runeByte[mid] < b {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
