// Package mdhint strips inline Markdown/HTML formatting markers from a
// proposed replacement string and returns the clean text plus a list of
// format hints recording where bold/italic/underline/strikethrough should
// apply once the text lands in a w:ins run (spec.md §4.C).
//
// Grounded on the corpus's regexp-based text-surgery style (the teacher's
// tracked_changes.go, the pack's markdown2word/converter.go heading-ID
// stripper, mydocx/diff.go's tokenizer) rather than a full Markdown AST
// library: spec.md requires character-offset hints into a reconstructed
// string under a bespoke earliest-start/longest-span overlap rule that a
// block/inline AST walk does not expose without being fought — see
// DESIGN.md's "Stdlib justifications".
package mdhint

import "regexp"

// Format is the set of inline styles a hint requests.
type Format struct {
	Bold, Italic, Underline, Strikethrough bool
}

// Union merges two Format sets (boolean flags compose by union within a span).
func (f Format) Union(o Format) Format {
	return Format{
		Bold:          f.Bold || o.Bold,
		Italic:        f.Italic || o.Italic,
		Underline:     f.Underline || o.Underline,
		Strikethrough: f.Strikethrough || o.Strikethrough,
	}
}

// Hint is a {startOffset, endOffset, format} triple into the cleaned text.
type Hint struct {
	Start, End int
	Format     Format
}

// pattern is one recognized syntax: a compiled matcher plus the Format it
// contributes.
type pattern struct {
	re     *regexp.Regexp
	format Format
}

// Patterns in priority order (spec.md §4.C): earliest match wins on tie,
// ties broken by longest span. The regexp capture group 1 is always the
// inner text.
var patterns = []pattern{
	// 1. HTML tags, case-insensitive.
	{regexp.MustCompile(`(?is)<b>(.*?)</b>`), Format{Bold: true}},
	{regexp.MustCompile(`(?is)<strong>(.*?)</strong>`), Format{Bold: true}},
	{regexp.MustCompile(`(?is)<i>(.*?)</i>`), Format{Italic: true}},
	{regexp.MustCompile(`(?is)<em>(.*?)</em>`), Format{Italic: true}},
	{regexp.MustCompile(`(?is)<u>(.*?)</u>`), Format{Underline: true}},
	{regexp.MustCompile(`(?is)<s>(.*?)</s>`), Format{Strikethrough: true}},
	{regexp.MustCompile(`(?is)<strike>(.*?)</strike>`), Format{Strikethrough: true}},
	{regexp.MustCompile(`(?is)<del>(.*?)</del>`), Format{Strikethrough: true}},
	// 2. HTML-escaped versions of the same.
	{regexp.MustCompile(`(?is)&lt;b&gt;(.*?)&lt;/b&gt;`), Format{Bold: true}},
	{regexp.MustCompile(`(?is)&lt;strong&gt;(.*?)&lt;/strong&gt;`), Format{Bold: true}},
	{regexp.MustCompile(`(?is)&lt;i&gt;(.*?)&lt;/i&gt;`), Format{Italic: true}},
	{regexp.MustCompile(`(?is)&lt;em&gt;(.*?)&lt;/em&gt;`), Format{Italic: true}},
	{regexp.MustCompile(`(?is)&lt;u&gt;(.*?)&lt;/u&gt;`), Format{Underline: true}},
	{regexp.MustCompile(`(?is)&lt;s&gt;(.*?)&lt;/s&gt;`), Format{Strikethrough: true}},
	{regexp.MustCompile(`(?is)&lt;strike&gt;(.*?)&lt;/strike&gt;`), Format{Strikethrough: true}},
	{regexp.MustCompile(`(?is)&lt;del&gt;(.*?)&lt;/del&gt;`), Format{Strikethrough: true}},
	// 3. Markdown delimiters, longest/most-specific first.
	{regexp.MustCompile(`\*\*\*(.+?)\*\*\*`), Format{Bold: true, Italic: true}},
	{regexp.MustCompile(`\*\*\+\+(.+?)\+\+\*\*`), Format{Bold: true, Underline: true}},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), Format{Bold: true}},
	{regexp.MustCompile(`__(.+?)__`), Format{Bold: true}},
	{regexp.MustCompile(`\+\+(.+?)\+\+`), Format{Underline: true}},
	{regexp.MustCompile(`~~(.+?)~~`), Format{Strikethrough: true}},
	{regexp.MustCompile(`~(.+?)~`), Format{Strikethrough: true}},
	{regexp.MustCompile(`\*([^*]+?)\*`), Format{Italic: true}},
	{regexp.MustCompile(`_([^_]+?)_`), Format{Italic: true}},
}

// match is one candidate occurrence found by scanning all patterns.
type match struct {
	start, end int // span in the *current* scope's raw text, including delimiters
	innerStart int // start of inner text within the raw text
	innerEnd   int
	format     Format
}

// Process strips recognized markup from raw and returns the clean text
// plus format hints whose offsets index into that clean text. Malformed
// or unmatched delimiter sequences are left as literal text (no error is
// ever raised — markdown pre-processing is purely structural).
func Process(raw string) (string, []Hint) {
	return processScope(raw)
}

// processScope finds all top-level (non-overlapping) matches in raw,
// recursively processes each match's inner text, and emits hints rebased
// into the reconstructed clean text of this scope.
func processScope(raw string) (string, []Hint) {
	matches := findTopLevelMatches(raw)
	if len(matches) == 0 {
		return raw, nil
	}

	var clean string
	var hints []Hint
	cursor := 0
	for _, m := range matches {
		// Literal text before this match passes through unchanged.
		clean += raw[cursor:m.start]

		inner := raw[m.innerStart:m.innerEnd]
		innerClean, innerHints := processScope(inner)

		hintStart := len(clean)
		clean += innerClean
		hintEnd := len(clean)

		hints = append(hints, Hint{Start: hintStart, End: hintEnd, Format: m.format})
		for _, ih := range innerHints {
			hints = append(hints, Hint{Start: hintStart + ih.Start, End: hintStart + ih.End, Format: ih.Format})
		}

		cursor = m.end
	}
	clean += raw[cursor:]
	return clean, hints
}

// findTopLevelMatches runs every pattern over raw, then keeps only
// non-overlapping matches: sort by (start asc, end desc — i.e. longest
// first on a tie) and scan with a monotonic lastEnd cursor.
func findTopLevelMatches(raw string) []match {
	var all []match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllSubmatchIndex([]byte(raw), -1) {
			all = append(all, match{
				start: loc[0], end: loc[1],
				innerStart: loc[2], innerEnd: loc[3],
				format: p.format,
			})
		}
	}

	// Sort by (start asc, end desc: longest span wins a tie).
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && less(all[j], all[j-1]); j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}

	var top []match
	lastEnd := -1
	for _, m := range all {
		if m.start < lastEnd {
			continue // overlaps a previously accepted top-level match
		}
		top = append(top, m)
		lastEnd = m.end
	}
	return top
}

func less(a, b match) bool {
	if a.start != b.start {
		return a.start < b.start
	}
	return a.end > b.end // longer span sorts first on a tie
}
