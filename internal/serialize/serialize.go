// Package serialize implements the serializer (spec.md §4.G): it walks a
// patched run model and emits WordprocessingML paragraph XML, wrapping
// INSERTION/DELETION entries in w:ins/w:del revision elements with
// monotonically increasing, process-configurable revision ids and an
// ISO-8601 date, splitting runs on format hints, and never emitting
// namespace declarations (the caller's document already has them in
// scope).
//
// Grounded on the teacher library's replacetext.go (the run-rebuilding
// half: wrapping replacement text in a fresh <w:r><w:rPr>...<w:t> shape
// reusing the original run's formatting) and tracked_changes.go (the
// w:ins/w:del wrapping convention with author/date/id attributes).
package serialize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vortex/ooxml-redline/internal/mdhint"
	"github.com/vortex/ooxml-redline/internal/model"
)

var rFontsRe = regexp.MustCompile(`<w:rFonts\b[^>]*/>`)

// RevisionClock mints monotonically increasing revision ids. A fresh
// clock is required per engine session (spec.md §5) — never package-level
// counter state, so concurrent sessions never interleave ids and tests
// can reset deterministically.
type RevisionClock struct {
	next int
}

// NewRevisionClock returns a clock seeded at 1.
func NewRevisionClock() *RevisionClock { return &RevisionClock{next: 1} }

// Reset reseeds the clock, letting ResetRevisionIdCounter (spec.md §6)
// make ids deterministic across test runs.
func (c *RevisionClock) Reset(seed int) { c.next = seed }

func (c *RevisionClock) next_() int {
	id := c.next
	c.next++
	return id
}

// Options configures paragraph emission.
type Options struct {
	Author string
	// Date is the ISO-8601 timestamp stamped on every w:ins/w:del emitted
	// in this call. Passed in rather than read from the clock so a whole
	// ApplyRedline call shares one timestamp.
	Date  string
	Hints []mdhint.Hint
	// Font, when non-empty, replaces or inserts a <w:rFonts w:ascii
	// w:hAnsi> inside every emitted run's rPr (spec.md §4.G).
	Font string
}

// Paragraphs renders entries (a full patched run model, possibly
// spanning several paragraphs joined by the ingestion-inserted "\n"
// boundaries) back into one WordprocessingML string, one <w:p> per
// PARAGRAPH_START encountered. fallbackPPr supplies the properties for a
// paragraph whose own PARAGRAPH_START did not survive patching.
func Paragraphs(entries []model.Entry, clock *RevisionClock, opts Options, fallbackPPr string) string {
	var sb strings.Builder
	var cur []model.Entry
	pPr := fallbackPPr
	opened := false

	flush := func() {
		if !opened {
			return
		}
		sb.WriteString(renderParagraph(pPr, cur, clock, opts))
		cur = nil
	}

	for _, e := range entries {
		if e.Kind == model.ParagraphStart {
			flush()
			pPr = e.PPrXml
			opened = true
			continue
		}
		if !opened {
			opened = true
		}
		cur = append(cur, e)
	}
	flush()
	return sb.String()
}

func renderParagraph(pPrXml string, entries []model.Entry, clock *RevisionClock, opts Options) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	if pPrXml != "" {
		sb.WriteString(pPrXml)
	}

	var containerStack []model.Entry
	for _, e := range entries {
		switch e.Kind {
		case model.Text:
			sb.WriteString(renderTextRuns(e, opts.Hints, opts.Font))
		case model.Insertion:
			sb.WriteString(renderRevision("ins", e, clock, opts))
		case model.Deletion:
			sb.WriteString(renderDeletion(e, clock, opts))
		case model.Bookmark:
			sb.WriteString(e.NodeXml)
		case model.ContainerStart:
			sb.WriteString(openContainer(e))
			containerStack = append(containerStack, e)
		case model.ContainerEnd:
			sb.WriteString(closeContainer(e))
			if n := len(containerStack); n > 0 {
				containerStack = containerStack[:n-1]
			}
		}
	}

	sb.WriteString("</w:p>")
	return sb.String()
}

// renderTextRuns emits an accepted TEXT entry, splitting it into several
// <w:r> when format hints (spec.md §4.C) overlap its span with bold/
// italic/underline/strikethrough requests.
func renderTextRuns(e model.Entry, hints []mdhint.Hint, font string) string {
	spans := applicableHints(e, hints)
	if len(spans) == 0 {
		return renderRun(e.TextValue, e.RPrXml, nil, font)
	}
	var sb strings.Builder
	cursor := e.Start
	for _, h := range spans {
		if h.Start > cursor {
			sb.WriteString(renderRun(sliceAt(e, cursor, h.Start), e.RPrXml, nil, font))
		}
		start := maxInt(h.Start, e.Start)
		end := minInt(h.End, e.End)
		sb.WriteString(renderRun(sliceAt(e, start, end), e.RPrXml, &h.Format, font))
		cursor = end
	}
	if cursor < e.End {
		sb.WriteString(renderRun(sliceAt(e, cursor, e.End), e.RPrXml, nil, font))
	}
	return sb.String()
}

func sliceAt(e model.Entry, start, end int) string {
	return e.TextValue[start-e.Start : end-e.Start]
}

func applicableHints(e model.Entry, hints []mdhint.Hint) []mdhint.Hint {
	var out []mdhint.Hint
	for _, h := range hints {
		if h.End <= e.Start || h.Start >= e.End {
			continue
		}
		out = append(out, h)
	}
	return out
}

// renderRun emits one <w:r>, merging an optional format override onto
// the carried rPr by appending bold/italic/underline/strike toggles,
// then replacing or inserting a <w:rFonts> when font is non-empty.
func renderRun(text, rPrXml string, format *mdhint.Format, font string) string {
	if text == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<w:r>")
	rPr := rPrXml
	if format != nil {
		rPr = mergeFormatIntoRPr(rPr, *format)
	}
	if font != "" {
		rPr = applyFont(rPr, font)
	}
	sb.WriteString(rPr)
	sb.WriteString("<w:t xml:space=\"preserve\">")
	sb.WriteString(escapeText(text))
	sb.WriteString("</w:t></w:r>")
	return sb.String()
}

// applyFont injects <w:rFonts w:ascii="font" w:hAnsi="font"/> into rPrXml,
// replacing any existing w:rFonts element (spec.md §4.G).
func applyFont(rPrXml, font string) string {
	rFonts := `<w:rFonts w:ascii="` + escapeAttr(font) + `" w:hAnsi="` + escapeAttr(font) + `"/>`
	body := rPrXml
	const open, close = "<w:rPr>", "</w:rPr>"
	hasWrapper := strings.HasPrefix(body, open) && strings.HasSuffix(body, close)
	if hasWrapper {
		body = body[len(open) : len(body)-len(close)]
	}
	if loc := rFontsRe.FindStringIndex(body); loc != nil {
		body = body[:loc[0]] + rFonts + body[loc[1]:]
	} else {
		body = rFonts + body
	}
	return open + body + close
}

func mergeFormatIntoRPr(rPrXml string, f mdhint.Format) string {
	var toggles strings.Builder
	if f.Bold {
		toggles.WriteString("<w:b/>")
	}
	if f.Italic {
		toggles.WriteString("<w:i/>")
	}
	if f.Underline {
		toggles.WriteString(`<w:u w:val="single"/>`)
	}
	if f.Strikethrough {
		toggles.WriteString("<w:strike/>")
	}
	if toggles.Len() == 0 {
		return rPrXml
	}
	inner := toggles.String()
	if rPrXml == "" {
		return "<w:rPr>" + inner + "</w:rPr>"
	}
	const open, close = "<w:rPr>", "</w:rPr>"
	if strings.HasPrefix(rPrXml, open) && strings.HasSuffix(rPrXml, close) {
		body := rPrXml[len(open) : len(rPrXml)-len(close)]
		return open + body + inner + close
	}
	return rPrXml + "<w:rPr>" + inner + "</w:rPr>"
}

// renderRevision emits a <w:tag> (w:ins) wrapping the entry's run(s),
// split by format hints exactly as renderTextRuns splits a TEXT entry.
func renderRevision(tag string, e model.Entry, clock *RevisionClock, opts Options) string {
	id := clock.next_()
	author := e.Author
	if author == "" {
		author = opts.Author
	}
	var sb strings.Builder
	sb.WriteString("<w:")
	sb.WriteString(tag)
	sb.WriteString(` w:id="`)
	sb.WriteString(strconv.Itoa(id))
	sb.WriteString(`" w:author="`)
	sb.WriteString(escapeAttr(author))
	sb.WriteString(`" w:date="`)
	sb.WriteString(opts.Date)
	sb.WriteString(`">`)
	sb.WriteString(renderTextRuns(e, opts.Hints, opts.Font))
	sb.WriteString("</w:")
	sb.WriteString(tag)
	sb.WriteString(">")
	return sb.String()
}

// renderDeletion emits either the original <w:del> verbatim (when
// NodeXml survived ingestion untouched) or a freshly synthesized
// w:del/w:r/w:delText wrapping a patcher-produced deletion.
func renderDeletion(e model.Entry, clock *RevisionClock, opts Options) string {
	if e.NodeXml != "" {
		return e.NodeXml
	}
	id := clock.next_()
	author := e.Author
	if author == "" {
		author = opts.Author
	}
	var sb strings.Builder
	sb.WriteString(`<w:del w:id="`)
	sb.WriteString(strconv.Itoa(id))
	sb.WriteString(`" w:author="`)
	sb.WriteString(escapeAttr(author))
	sb.WriteString(`" w:date="`)
	sb.WriteString(opts.Date)
	sb.WriteString(`"><w:r>`)
	sb.WriteString(e.RPrXml)
	sb.WriteString(`<w:delText xml:space="preserve">`)
	sb.WriteString(escapeText(e.TextValue))
	sb.WriteString(`</w:delText></w:r></w:del>`)
	return sb.String()
}

func openContainer(e model.Entry) string {
	switch e.ContainerKindValue {
	case model.ContainerSdt:
		return "<w:sdt>" + e.PropertiesXml + "<w:sdtContent>"
	case model.ContainerSmartTag:
		if e.PropertiesXml == "" {
			return "<w:smartTag>"
		}
		return "<w:smartTag " + e.PropertiesXml + ">"
	case model.ContainerHyperlink:
		props := decodeHyperlinkProps(e.PropertiesXml)
		return "<w:hyperlink " + props + ">"
	default:
		return ""
	}
}

func closeContainer(e model.Entry) string {
	switch e.ContainerKindValue {
	case model.ContainerSdt:
		return "</w:sdtContent></w:sdt>"
	case model.ContainerSmartTag:
		return "</w:smartTag>"
	case model.ContainerHyperlink:
		return "</w:hyperlink>"
	default:
		return ""
	}
}

// decodeHyperlinkProps turns the {"rId":"...","anchor":"..."} JSON blob
// ingestion recorded back into r:id/w:anchor attributes.
func decodeHyperlinkProps(propsJSON string) string {
	rid := jsonField(propsJSON, "rId")
	anchor := jsonField(propsJSON, "anchor")
	var sb strings.Builder
	if rid != "" {
		sb.WriteString(`r:id="`)
		sb.WriteString(rid)
		sb.WriteByte('"')
	}
	if anchor != "" {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(`w:anchor="`)
		sb.WriteString(anchor)
		sb.WriteByte('"')
	}
	return sb.String()
}

// jsonField does a minimal extraction of a flat string field from a
// {"key":"value"} blob without pulling in encoding/json for a two-field
// lookup already paid for at ingestion time.
func jsonField(blob, key string) string {
	marker := `"` + key + `":"`
	idx := strings.Index(blob, marker)
	if idx < 0 {
		return ""
	}
	rest := blob[idx+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "'", "&apos;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	return r.Replace(s)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
