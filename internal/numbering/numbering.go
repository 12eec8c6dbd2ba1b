// Package numbering implements the numbering service (spec.md §4.H):
// detecting list markers in inserted text, allocating numId values, and
// synthesizing a numbering.xml part.
//
// Grounded on the teacher library's numbering_custom.go (CT_Numbering /
// CT_Num: a live registry of num→abstractNum bindings that mints a fresh
// id on miss) and parts/numbering.go's NumberingPart (the generated
// document's numbering.xml identity).
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Format classifies a detected list marker.
type Format int

const (
	FormatNone Format = iota
	FormatBullet
	FormatOutline
	FormatDecimal
	FormatLowerAlpha
	FormatUpperAlpha
	FormatLowerRoman
	FormatUpperRoman
)

func (f Format) String() string {
	switch f {
	case FormatBullet:
		return "bullet"
	case FormatOutline:
		return "outline"
	case FormatDecimal:
		return "decimal"
	case FormatLowerAlpha:
		return "lowerAlpha"
	case FormatUpperAlpha:
		return "upperAlpha"
	case FormatLowerRoman:
		return "lowerRoman"
	case FormatUpperRoman:
		return "upperRoman"
	default:
		return "none"
	}
}

// Suffix records how the marker attached to its content.
type Suffix int

const (
	SuffixNone Suffix = iota
	SuffixPeriod
	SuffixParenBoth
)

// Marker is the outcome of detecting a list marker at the start of a line.
type Marker struct {
	Format Format
	Suffix Suffix
	Depth  int // outline depth = dots between the numeric parts ("1.2.3" and "1.2.3." give 2); 0 otherwise
}

var (
	bulletRe     = regexp.MustCompile(`^[-*•]\s*`)
	outlineRe    = regexp.MustCompile(`^(\d+(\.\d+)+)\.?\s*`)
	parenAlphaLo = regexp.MustCompile(`^\(([a-z])\)\s*`)
	parenRoman   = regexp.MustCompile(`^\((i|ii|iii|iv|v|vi|vii|viii|ix|x)\)\s*`)
	parenDecimal = regexp.MustCompile(`^\((\d+)\)\s*`)
	decimalDot   = regexp.MustCompile(`^(\d+)\.\s*`)
	lowerAlphaDt = regexp.MustCompile(`^([a-z])\.\s*`)
	upperAlphaDt = regexp.MustCompile(`^([A-Z])\.\s*`)
	lowerRomanDt = regexp.MustCompile(`^(i|ii|iii|iv|v|vi|vii|viii|ix|x)\.\s*`)
	upperRomanDt = regexp.MustCompile(`^(I|II|III|IV|V|VI|VII|VIII|IX|X)\.\s*`)
	leadingDigit = regexp.MustCompile(`^\d`)
)

// detectNumberingFormat classifies a token preceding an inserted line,
// per spec.md §4.H's exact priority order.
func detectNumberingFormat(marker string) Marker {
	switch {
	case bulletRe.MatchString(marker):
		return Marker{Format: FormatBullet}
	case outlineRe.MatchString(marker):
		m := outlineRe.FindStringSubmatch(marker)
		depth := strings.Count(m[1], ".")
		return Marker{Format: FormatOutline, Depth: depth}
	case parenRoman.MatchString(marker):
		return Marker{Format: FormatLowerRoman, Suffix: SuffixParenBoth}
	case parenAlphaLo.MatchString(marker):
		return Marker{Format: FormatLowerAlpha, Suffix: SuffixParenBoth}
	case parenDecimal.MatchString(marker):
		return Marker{Format: FormatDecimal, Suffix: SuffixParenBoth}
	case decimalDot.MatchString(marker):
		return Marker{Format: FormatDecimal, Suffix: SuffixPeriod}
	case lowerAlphaDt.MatchString(marker):
		return Marker{Format: FormatLowerAlpha, Suffix: SuffixPeriod}
	case upperAlphaDt.MatchString(marker):
		return Marker{Format: FormatUpperAlpha, Suffix: SuffixPeriod}
	case lowerRomanDt.MatchString(marker):
		return Marker{Format: FormatLowerRoman, Suffix: SuffixPeriod}
	case upperRomanDt.MatchString(marker):
		return Marker{Format: FormatUpperRoman, Suffix: SuffixPeriod}
	case leadingDigit.MatchString(marker):
		return Marker{Format: FormatDecimal}
	default:
		return Marker{Format: FormatBullet}
	}
}

// markerPatterns lists the recognizers' regexps in detection priority
// order; MatchListMarker strips the first one that matches.
var markerPatterns = []*regexp.Regexp{
	bulletRe, outlineRe, parenRoman, parenAlphaLo, parenDecimal,
	decimalDot, lowerAlphaDt, upperAlphaDt, lowerRomanDt, upperRomanDt,
}

// MatchListMarker recognizes a list marker at the start of line and
// returns (remainder, marker, true) on a match, or ("", Marker{}, false)
// otherwise. allowZeroSpaceAfterMarker controls whether a marker with no
// trailing space (e.g. "1.text") still counts as a match.
func MatchListMarker(line string, allowZeroSpaceAfterMarker bool) (string, Marker, bool) {
	for _, re := range markerPatterns {
		loc := re.FindStringIndex(line)
		if loc == nil || loc[0] != 0 {
			continue
		}
		matched := line[:loc[1]]
		hasSpace := strings.HasSuffix(matched, " ") || strings.HasSuffix(matched, "\t")
		if !hasSpace && !allowZeroSpaceAfterMarker {
			continue
		}
		marker := detectNumberingFormat(line)
		return line[loc[1]:], marker, true
	}
	return "", Marker{}, false
}

// Context is the numbering context of an already-numbered paragraph.
type Context struct {
	NumID string
	Ilvl  int
	Type  string // "bullet", "numbered", "unknown"
}

// customConfig records one custom abstractNum allocated for a format
// signature not covered by the three stock abstractNums.
type customConfig struct {
	signature string
	format    Format
	abstractID int
	numID      string
}

// Service holds the process-scoped (per reconciliation call) numbering
// state: the numId cache and the custom-abstractNum allocation counter.
// A fresh Service is required per engine session (spec.md §5) — never
// package-level state.
type Service struct {
	cache      map[string]string // format signature -> numId
	customs    []customConfig
	nextCustom int
}

// NewService returns a fresh numbering service with the custom-id counter
// seeded at 1000, per spec.md §4.H.
func NewService() *Service {
	return &Service{cache: map[string]string{}, nextCustom: 1000}
}

// signatureFor builds the cache key for a marker's format.
func signatureFor(m Marker) string {
	return fmt.Sprintf("%s_%d", m.Format, m.Suffix)
}

// GetOrCreateNumID resolves a numId for marker m given the current
// paragraph's numbering context (possibly zero-valued when there is no
// current list), following spec.md §4.H's priority order.
func (s *Service) GetOrCreateNumID(m Marker, ctx Context, ilvl int) string {
	// 1. Reuse context.numId if its type matches or is unknown.
	if ctx.NumID != "" && (ctx.Type == "unknown" || ctx.Type == typeFor(m.Format)) {
		return ctx.NumID
	}

	sig := signatureFor(m)

	// 2. Cached numId for the same format signature.
	if id, ok := s.cache[sig]; ok {
		return id
	}

	// 3. Stock ids for outline/decimal/bullet.
	switch m.Format {
	case FormatOutline:
		s.cache[sig] = "3"
		return "3"
	case FormatDecimal:
		s.cache[sig] = "2"
		return "2"
	case FormatBullet:
		s.cache[sig] = "1"
		return "1"
	}

	// 4. At ilvl==0 with a non-default format, allocate a fresh numeric id.
	if ilvl == 0 {
		id := s.nextCustom
		s.nextCustom++
		numIDStr := strconv.Itoa(id)
		s.cache[sig] = numIDStr
		s.customs = append(s.customs, customConfig{
			signature: "custom_" + m.Format.String(), format: m.Format,
			abstractID: id, numID: numIDStr,
		})
		return numIDStr
	}

	// Fallback: non-zero ilvl with no existing context and no stock id —
	// behave as bullet (matches spec's "else -> bullet" detection default).
	s.cache[sig] = "1"
	return "1"
}

func typeFor(f Format) string {
	switch f {
	case FormatBullet:
		return "bullet"
	case FormatDecimal, FormatOutline:
		return "numbered"
	default:
		return "numbered"
	}
}

// BuildListPPr emits <w:pPr><w:numPr>…</w:numPr></w:pPr> for the given
// numId/ilvl, with no namespace declarations (the serializer's caller
// supplies them).
func BuildListPPr(numID string, ilvl int) string {
	return fmt.Sprintf(
		`<w:pPr><w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%s"/></w:numPr></w:pPr>`,
		ilvl, numID,
	)
}

// GenerateNumberingXml emits the fixed w:numbering document: abstractNum
// 0 (nine-level cycling bullet), abstractNum 1 (legal multi-level
// decimal → (a) → (i) → (1) → a.), abstractNum 2 (outline %1. …
// %1.%2.%3.%4.%5), plus one abstractNum per tracked custom configuration,
// and the matching w:num bindings.
func (s *Service) GenerateNumberingXml() string {
	var sb strings.Builder
	sb.WriteString(`<w:numbering>`)
	sb.WriteString(bulletAbstractNum())
	sb.WriteString(legalAbstractNum())
	sb.WriteString(outlineAbstractNum())
	for _, c := range s.customs {
		sb.WriteString(customAbstractNum(c))
	}
	sb.WriteString(`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>`)
	sb.WriteString(`<w:num w:numId="2"><w:abstractNumId w:val="1"/></w:num>`)
	sb.WriteString(`<w:num w:numId="3"><w:abstractNumId w:val="2"/></w:num>`)
	for _, c := range s.customs {
		sb.WriteString(fmt.Sprintf(`<w:num w:numId="%s"><w:abstractNumId w:val="%d"/></w:num>`, c.numID, c.abstractID))
	}
	sb.WriteString(`</w:numbering>`)
	return sb.String()
}

// HasCustomConfigs reports whether any custom abstractNum was allocated.
func (s *Service) HasCustomConfigs() bool { return len(s.customs) > 0 }

var bulletGlyphs = []string{"•", "o", "▪", "•", "o", "▪", "•", "o", "▪"}

func bulletAbstractNum() string {
	var sb strings.Builder
	sb.WriteString(`<w:abstractNum w:abstractNumId="0">`)
	for lvl := 0; lvl < 9; lvl++ {
		sb.WriteString(fmt.Sprintf(
			`<w:lvl w:ilvl="%d"><w:numFmt w:val="bullet"/><w:lvlText w:val="%s"/><w:lvlJc w:val="left"/></w:lvl>`,
			lvl, bulletGlyphs[lvl%len(bulletGlyphs)],
		))
	}
	sb.WriteString(`</w:abstractNum>`)
	return sb.String()
}

func legalAbstractNum() string {
	levels := []struct {
		fmtVal, text string
	}{
		{"decimal", "%1."},
		{"lowerLetter", "(%2)"},
		{"lowerRoman", "(%3)"},
		{"decimal", "(%4)"},
		{"lowerLetter", "%5."},
	}
	var sb strings.Builder
	sb.WriteString(`<w:abstractNum w:abstractNumId="1">`)
	for lvl, l := range levels {
		sb.WriteString(fmt.Sprintf(
			`<w:lvl w:ilvl="%d"><w:numFmt w:val="%s"/><w:lvlText w:val="%s"/><w:lvlJc w:val="left"/></w:lvl>`,
			lvl, l.fmtVal, l.text,
		))
	}
	sb.WriteString(`</w:abstractNum>`)
	return sb.String()
}

func outlineAbstractNum() string {
	texts := []string{"%1.", "%1.%2", "%1.%2.%3", "%1.%2.%3.%4", "%1.%2.%3.%4.%5"}
	var sb strings.Builder
	sb.WriteString(`<w:abstractNum w:abstractNumId="2">`)
	for lvl, text := range texts {
		sb.WriteString(fmt.Sprintf(
			`<w:lvl w:ilvl="%d"><w:numFmt w:val="decimal"/><w:lvlText w:val="%s"/><w:lvlJc w:val="left"/></w:lvl>`,
			lvl, text,
		))
	}
	sb.WriteString(`</w:abstractNum>`)
	return sb.String()
}

func customAbstractNum(c customConfig) string {
	fmtVal, text := wordNumFmtFor(c.format)
	return fmt.Sprintf(
		`<w:abstractNum w:abstractNumId="%d"><w:lvl w:ilvl="0"><w:numFmt w:val="%s"/><w:lvlText w:val="%s"/><w:lvlJc w:val="left"/></w:lvl></w:abstractNum>`,
		c.abstractID, fmtVal, text,
	)
}

func wordNumFmtFor(f Format) (fmtVal, text string) {
	switch f {
	case FormatLowerAlpha:
		return "lowerLetter", "%1."
	case FormatUpperAlpha:
		return "upperLetter", "%1."
	case FormatLowerRoman:
		return "lowerRoman", "%1."
	case FormatUpperRoman:
		return "upperRoman", "%1."
	default:
		return "decimal", "%1."
	}
}

// DetectFormat exposes detectNumberingFormat for callers (the patcher's
// line-classification step) that already have the raw marker text.
func DetectFormat(marker string) Marker { return detectNumberingFormat(marker) }
