// Package protect is the Protected Region Detector (C4): it finds byte
// spans of an input prompt that must be preserved verbatim and that no
// rewrite, pattern or concept, is permitted to touch.
package protect

import "sort"

// Kind tags why a span was protected. Merging two adjacent/overlapping
// spans drops the tag: a merged span is simply "protected" (§4.4).
type Kind string

const (
	KindCodeFence        Kind = "code-fence"
	KindInlineCode       Kind = "inline-code"
	KindIndentedCode     Kind = "indented-code"
	KindTemplate         Kind = "template"
	KindURLOrPath        Kind = "url-or-path"
	KindIdentifier       Kind = "identifier"
	KindQuotedLiteral    Kind = "quoted-literal"
	KindInstructionWord  Kind = "instruction-keyword"
	KindMerged           Kind = "protected"
)

// Span is a half-open byte interval [Start, End) over the input, per §3.
type Span struct {
	Start int
	End   int
	Kind  Kind
}

// Policy selects which recognizers run, per §4.4.
type Policy string

const (
	PolicyConservative Policy = "conservative"
	PolicyAggressive   Policy = "aggressive"
)

// Overlaps reports whether two half-open spans share any byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// OverlapsAny reports whether s overlaps any span in spans. spans need not
// be sorted.
func OverlapsAny(s Span, spans []Span) bool {
	for _, o := range spans {
		if s.Overlaps(o) {
			return true
		}
	}
	return false
}

// Merge sorts spans by start and merges any two spans a, b where
// b.Start <= a.End into [a.Start, max(a.End, b.End)), dropping the kind
// tag on merged output, per §4.4.
func Merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []Span{sorted[0]}
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if next.Start <= last.End {
			if next.End > last.End {
				last.End = next.End
			}
			last.Kind = KindMerged
			continue
		}
		merged = append(merged, next)
	}
	return merged
}
