package textlayout

import (
	"github.com/go-text/typesetting/language"
)

// clusterFlags packs per-cluster booleans.
type clusterFlags uint8

const (
	// clusterLigStart marks the first cluster of a ligature group. It owns
	// the group's glyphs and the whole group advance.
	clusterLigStart clusterFlags = 1 << iota
	// clusterLigCont marks a cluster folded into a preceding ligature.
	// It has no glyphs and zero advance.
	clusterLigCont
	// clusterWhitespace marks breakable whitespace.
	clusterWhitespace
	// clusterNewline marks a paragraph separator.
	clusterNewline
	// clusterBreakAfter marks a soft line break opportunity after this
	// cluster.
	clusterBreakAfter
	// clusterMandatoryAfter marks a mandatory line break after this
	// cluster.
	clusterMandatoryAfter
	// clusterWordStart marks the first cluster of a word.
	clusterWordStart
	// clusterBox marks a synthetic cluster standing in for an inline box.
	clusterBox
)

// Cluster is the atomic unit of layout: one grapheme cluster of text, or
// one inline box. Clusters are stored in logical order; a cluster never
// spans runs and is never split by a line break.
type Cluster struct {
	// RuneStart and RuneEnd delimit the cluster's runes, End exclusive.
	// Box clusters have an empty range at their insertion point.
	RuneStart, RuneEnd int

	// ByteStart and ByteEnd are the corresponding byte offsets.
	ByteStart, ByteEnd int

	// GlyphStart and GlyphEnd index the layout's glyph slice. Ligature
	// continuations and box clusters have an empty range.
	GlyphStart, GlyphEnd int

	// Advance is the cluster's width contribution in pixels, including
	// letter and word spacing.
	Advance float64

	// Run is the index of the owning run.
	Run int

	flags clusterFlags
}

// IsWhitespace reports whether the cluster is breakable whitespace.
func (c *Cluster) IsWhitespace() bool { return c.flags&clusterWhitespace != 0 }

// IsNewline reports whether the cluster is a paragraph separator.
func (c *Cluster) IsNewline() bool { return c.flags&clusterNewline != 0 }

// IsBox reports whether the cluster stands in for an inline box.
func (c *Cluster) IsBox() bool { return c.flags&clusterBox != 0 }

// IsLigatureStart reports whether the cluster starts a ligature group.
func (c *Cluster) IsLigatureStart() bool { return c.flags&clusterLigStart != 0 }

// IsLigatureContinuation reports whether the cluster was folded into a
// preceding ligature and therefore carries no glyphs of its own.
func (c *Cluster) IsLigatureContinuation() bool { return c.flags&clusterLigCont != 0 }

// IsWordStart reports whether the cluster begins a word.
func (c *Cluster) IsWordStart() bool { return c.flags&clusterWordStart != 0 }

// runKind distinguishes text runs from inline box runs.
type runKind uint8

const (
	runText runKind = iota
	runBox
)

// Run is a maximal sequence of clusters sharing one style span, font,
// bidi level and script. Inline boxes form single-cluster runs of their
// own.
type Run struct {
	// ClusterStart and ClusterEnd index the layout's cluster slice.
	ClusterStart, ClusterEnd int

	// GlyphStart and GlyphEnd index the layout's glyph slice.
	GlyphStart, GlyphEnd int

	// Style indexes the layout's span slice.
	Style int

	// Font is the resolved face; nil for box runs.
	Font *Font

	// Synthesis holds fake bold and italic adjustments for Font.
	Synthesis Synthesis

	// Level is the bidi embedding level.
	Level uint8

	// Script is the resolved script of the run's text.
	Script language.Script

	// Size is the font size in pixels per em.
	Size float64

	// Advance is the sum of cluster advances.
	Advance float64

	// Metrics are the face metrics at Size, scaled by the span's line
	// height multiplier. Box runs derive metrics from the box extent.
	Metrics Metrics

	// Box is the inline box index for box runs, -1 otherwise.
	Box int

	kind runKind
}

// Direction returns the run's visual direction, derived from its level.
func (r *Run) Direction() Direction { return levelDirection(r.Level) }

// IsBox reports whether the run wraps an inline box.
func (r *Run) IsBox() bool { return r.kind == runBox }
