package protect

import "regexp"

// fencedCode finds triple-backtick fenced blocks, including the fence
// lines themselves. An unterminated opening fence protects to end of
// input, per §4.4.
func fencedCode(text string) []Span {
	var spans []Span
	fence := regexp.MustCompile("(?m)^```")
	matches := fence.FindAllStringIndex(text, -1)
	for i := 0; i < len(matches); i += 2 {
		start := matches[i][0]
		if i+1 < len(matches) {
			// Closing fence line runs to end of that line.
			end := lineEnd(text, matches[i+1][0])
			spans = append(spans, Span{Start: start, End: end, Kind: KindCodeFence})
		} else {
			spans = append(spans, Span{Start: start, End: len(text), Kind: KindCodeFence})
		}
	}
	return spans
}

func lineEnd(text string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\n' {
			return i + 1
		}
	}
	return len(text)
}

// inlineCode finds single-backtick runs with a matching closing run of
// equal length on the same line, per §4.4. Content already covered by a
// fenced block is handled by the caller via the generic overlap/merge
// step, not here.
func inlineCode(text string) []Span {
	var spans []Span
	n := len(text)
	for i := 0; i < n; i++ {
		if text[i] != '`' {
			continue
		}
		runStart := i
		for i < n && text[i] == '`' {
			i++
		}
		runLen := i - runStart

		// Search for a closing run of equal length on the same line.
		j := i
		for j < n && text[j] != '\n' {
			if text[j] == '`' {
				closeStart := j
				for j < n && text[j] == '`' {
					j++
				}
				if j-closeStart == runLen {
					spans = append(spans, Span{Start: runStart, End: j, Kind: KindInlineCode})
					i = j - 1
					break
				}
				continue
			}
			j++
		}
	}
	return spans
}

// indentedCode finds runs of lines each beginning with >=4 spaces or a
// tab, preceded by a blank line, per §4.4.
func indentedCode(text string) []Span {
	var spans []Span
	lineStart := 0
	prevBlank := true // start of input counts as preceded by "blank"
	inBlock := false
	blockStart := 0

	flush := func(end int) {
		if inBlock {
			spans = append(spans, Span{Start: blockStart, End: end, Kind: KindIndentedCode})
			inBlock = false
		}
	}

	n := len(text)
	for lineStart <= n {
		end := lineStart
		for end < n && text[end] != '\n' {
			end++
		}
		lineEndIncl := end
		if end < n {
			lineEndIncl = end + 1
		}
		line := text[lineStart:end]

		isBlank := len(line) == 0
		isIndented := hasIndentPrefix(line)

		if isIndented && prevBlank && !isBlank {
			if !inBlock {
				inBlock = true
				blockStart = lineStart
			}
		} else if isIndented && inBlock {
			// continuation of an already-open block
		} else {
			flush(lineStart)
		}

		prevBlank = isBlank
		if end >= n {
			flush(lineEndIncl)
			break
		}
		lineStart = lineEndIncl
	}
	return spans
}

func hasIndentPrefix(line string) bool {
	if len(line) == 0 {
		return false
	}
	if line[0] == '\t' {
		return true
	}
	count := 0
	for _, c := range line {
		if c == ' ' {
			count++
			if count >= 4 {
				return true
			}
			continue
		}
		break
	}
	return false
}

// templateExpr finds {{...}}, ${...}, {%...%} template expressions, using
// innermost matching braces; an unbalanced opening extends to end of line,
// per §4.4.
func templateExpr(text string) []Span {
	openers := []struct {
		open, close string
	}{
		{"{{", "}}"},
		{"${", "}"},
		{"{%", "%}"},
	}
	var spans []Span
	for _, pair := range openers {
		spans = append(spans, matchDelimited(text, pair.open, pair.close)...)
	}
	return spans
}

func matchDelimited(text, open, close string) []Span {
	var spans []Span
	n := len(text)
	i := 0
	for i < n {
		idx := indexFrom(text, open, i)
		if idx < 0 {
			break
		}
		searchFrom := idx + len(open)
		closeIdx := indexFrom(text, close, searchFrom)
		lineEndIdx := lineEnd(text, idx)
		if closeIdx < 0 || closeIdx >= lineEndIdx {
			// Unbalanced: extend to end of line.
			spans = append(spans, Span{Start: idx, End: lineEndIdx, Kind: KindTemplate})
			i = lineEndIdx
			continue
		}
		spans = append(spans, Span{Start: idx, End: closeIdx + len(close), Kind: KindTemplate})
		i = closeIdx + len(close)
	}
	return spans
}

func indexFrom(text, sub string, from int) int {
	if from > len(text) {
		return -1
	}
	rel := indexOf(text[from:], sub)
	if rel < 0 {
		return -1
	}
	return from + rel
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 || m > n {
		if m == 0 {
			return 0
		}
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

var (
	urlPattern   = regexp.MustCompile(`[a-z][a-z0-9+.-]*://\S+`)
	nonSpaceRun  = regexp.MustCompile(`\S+`)
)

// urlOrPath finds scheme-prefixed URLs and slash/backslash-separated
// paths, per §4.4: any maximal run of non-space characters of length >= 2
// that contains a `/` or `\` between two other non-space characters.
func urlOrPath(text string) []Span {
	var spans []Span
	urlSpans := urlPattern.FindAllStringIndex(text, -1)
	for _, m := range urlSpans {
		spans = append(spans, Span{Start: m[0], End: m[1], Kind: KindURLOrPath})
	}

	for _, m := range nonSpaceRun.FindAllStringIndex(text, -1) {
		if OverlapsAny(Span{Start: m[0], End: m[1]}, spans) {
			continue
		}
		token := text[m[0]:m[1]]
		if len(token) < 2 {
			continue
		}
		if looksLikePath(token) {
			spans = append(spans, Span{Start: m[0], End: m[1], Kind: KindURLOrPath})
		}
	}
	return spans
}

// looksLikePath reports whether token has a `/` or `\` with a non-space
// character on each side.
func looksLikePath(token string) bool {
	for i := 1; i < len(token)-1; i++ {
		if token[i] == '/' || token[i] == '\\' {
			return true
		}
	}
	return false
}

var (
	camelCasePattern     = regexp.MustCompile(`\b[a-z][a-zA-Z0-9]*[A-Z][a-zA-Z0-9]*\b`)
	snakeCasePattern     = regexp.MustCompile(`\b[A-Za-z0-9]+(?:_[A-Za-z0-9]+)+\b`)
	screamingCasePattern = regexp.MustCompile(`\b[A-Z0-9]+(?:_[A-Z0-9]+)+\b`)
)

// identifier finds camelCase, snake_case, and SCREAMING_CASE tokens of
// length >= 3, per §4.4.
func identifier(text string) []Span {
	var spans []Span
	for _, pat := range []*regexp.Regexp{camelCasePattern, snakeCasePattern, screamingCasePattern} {
		for _, m := range pat.FindAllStringIndex(text, -1) {
			if m[1]-m[0] < 3 {
				continue
			}
			spans = append(spans, Span{Start: m[0], End: m[1], Kind: KindIdentifier})
		}
	}
	return spans
}

var quotedLiteralPattern = regexp.MustCompile(`"[^"\n]{0,}"|'[^'\n]{0,}'`)

// quotedLiteral finds balanced double- or single-quoted literals on a
// single line, length >= 2 including quotes. Only used under the
// conservative protection policy, per §4.4.
func quotedLiteral(text string) []Span {
	var spans []Span
	for _, m := range quotedLiteralPattern.FindAllStringIndex(text, -1) {
		if m[1]-m[0] < 2 {
			continue
		}
		spans = append(spans, Span{Start: m[0], End: m[1], Kind: KindQuotedLiteral})
	}
	return spans
}

var instructionKeywordPattern = regexp.MustCompile(`\b(MUST NOT|MUST|SHALL|REQUIRED|JSON|XML|FORMAT)\b`)

// instructionKeyword finds standalone occurrences of the fixed instruction
// vocabulary, per §4.4.
func instructionKeyword(text string) []Span {
	var spans []Span
	for _, m := range instructionKeywordPattern.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{Start: m[0], End: m[1], Kind: KindInstructionWord})
	}
	return spans
}
