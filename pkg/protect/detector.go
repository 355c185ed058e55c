package protect

// Detect runs every recognizer appropriate to policy over text and returns
// the sorted, merged list of protected spans, per §4.4.
func Detect(text string, policy Policy) []Span {
	var spans []Span
	spans = append(spans, fencedCode(text)...)
	spans = append(spans, inlineCode(text)...)
	spans = append(spans, indentedCode(text)...)
	spans = append(spans, templateExpr(text)...)
	spans = append(spans, urlOrPath(text)...)
	spans = append(spans, identifier(text)...)
	spans = append(spans, instructionKeyword(text)...)

	if policy == PolicyConservative {
		spans = append(spans, quotedLiteral(text)...)
	}

	return Merge(spans)
}
