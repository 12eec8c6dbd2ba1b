// Package comments implements the comment injection subsystem (spec.md
// §4.J): given document XML text and a set of {paragraphIndex,
// snippet, author, text} requests, it locates each snippet inside its
// paragraph's accepted text, surgically splits the run(s) straddling the
// match so a clean commentRangeStart/commentRangeEnd pair can bracket
// exactly the matched span, and appends a commentReference run. It also
// renders the accompanying comments.xml part.
//
// Grounded on the teacher library's comments.go (Comments.AddComment /
// splitNewlines: multi-paragraph comment body construction) and
// parts/comments.go (CommentsPart: the part that owns the comment id
// space) — id uniqueness here is enforced the same way the teacher's
// CT_Comments.AddCommentFull implicitly relies on the part owning a
// single counter, generalized to a caller-supplied id plus an explicit
// duplicate check since spec.md requires rejecting a reused id rather
// than auto-incrementing past it.
package comments

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-redline/internal/oxml"
	"github.com/vortex/ooxml-redline/internal/rlerrors"
	"github.com/vortex/ooxml-redline/internal/textindex"
)

// Request is one comment to inject.
type Request struct {
	ParagraphIndex int
	Snippet        string
	Author         string
	Initials       string
	Text           string
	CommentID      int
}

// Options configures comment rendering.
type Options struct {
	// Date stamps every comment's w:date; shared across one call like
	// serialize.Options.Date.
	Date string
}

// Result is the outcome of injecting a batch of comments into a document.
type Result struct {
	DocumentXML     string
	CommentsXML     string
	CommentsApplied int
	Warnings        []string
}

// Inject locates every request's snippet in its target paragraph,
// splits runs as needed, inserts range markers and a reference run, and
// renders the accompanying comments.xml. Requests are applied in order.
// A duplicate CommentID across requests is rejected up front (fatal —
// the caller must reconcile, spec.md §7's DuplicateCommentId). A single
// request with an out-of-range paragraph index or an unmatched snippet
// is instead skipped with a warning, and the remaining requests still
// run (spec.md §7's OutOfRangeParagraph / TextNotFound).
func Inject(documentXML string, requests []Request, opts Options) (Result, error) {
	if err := checkDuplicateIDs(requests); err != nil {
		return Result{}, err
	}

	doc, err := oxml.Parse(documentXML, "document")
	if err != nil {
		return Result{}, err
	}

	paragraphs := findParagraphs(doc)

	var commentEntries []string
	var warnings []string
	applied := 0
	for _, req := range requests {
		if req.ParagraphIndex < 0 || req.ParagraphIndex >= len(paragraphs) {
			warnings = append(warnings, rlerrors.NewOutOfRangeParagraph(req.ParagraphIndex, len(paragraphs)).Error())
			continue
		}
		p := paragraphs[req.ParagraphIndex]
		idx := textindex.Build(p)
		start := idx.IndexOf(req.Snippet)
		if start < 0 {
			warnings = append(warnings, rlerrors.NewTextNotFound(req.Snippet, req.ParagraphIndex).Error())
			continue
		}
		end := start + len(req.Snippet)

		markRange(p, idx, start, end, req.CommentID)
		commentEntries = append(commentEntries, renderComment(req, opts.Date))
		applied++
	}

	return Result{
		DocumentXML:     oxml.Serialize(doc),
		CommentsXML:     renderCommentsPart(commentEntries),
		CommentsApplied: applied,
		Warnings:        warnings,
	}, nil
}

func checkDuplicateIDs(requests []Request) error {
	seen := map[int]bool{}
	for _, r := range requests {
		if seen[r.CommentID] {
			return rlerrors.NewDuplicateCommentID(r.CommentID)
		}
		seen[r.CommentID] = true
	}
	return nil
}

// findParagraphs returns every <w:p> in document order, at any depth
// (paragraphs may live inside table cells).
func findParagraphs(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if child.Space == "w" && child.Tag == "p" {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

// markRange splices commentRangeStart before the run containing start,
// commentRangeEnd plus a commentReference run after the run containing
// end-1, splitting either boundary run in two when the match doesn't
// align with run edges.
func markRange(p *etree.Element, idx *textindex.Index, start, end, commentID int) {
	startRO := idx.RunAt(start)
	endRO := idx.RunAt(end - 1)
	if startRO == nil || endRO == nil {
		return
	}

	startRun := startRO.Run
	if left := splitRunAt(p, startRO.Run, start-startRO.Start); left != startRO.Run {
		parent := left.Parent()
		startRun = parent.ChildElements()[childIndex(parent, left)+1]
	}
	// When start and end share the original run, the end cut is made in
	// the run the match now begins with.
	endRun, endStart := endRO.Run, endRO.Start
	if endRO.Run == startRO.Run {
		endRun, endStart = startRun, start
	}
	// splitRunAt returns the piece before the cut: the match's last run.
	lastRun := splitRunAt(p, endRun, end-endStart)
	if endRun == startRun {
		startRun = lastRun
	}

	startMarker := etree.NewElement("w:commentRangeStart")
	startMarker.CreateAttr("w:id", strconv.Itoa(commentID))
	p.InsertChildAt(childIndex(p, startRun), startMarker)

	endMarker := etree.NewElement("w:commentRangeEnd")
	endMarker.CreateAttr("w:id", strconv.Itoa(commentID))
	refRun := etree.NewElement("w:r")
	ref := refRun.CreateElement("w:commentReference")
	ref.CreateAttr("w:id", strconv.Itoa(commentID))

	insertPos := childIndex(p, lastRun) + 1
	p.InsertChildAt(insertPos, endMarker)
	p.InsertChildAt(insertPos+1, refRun)
}

// splitRunAt splits run into [0,cut) and [cut,len) when cut is strictly
// inside its text contribution, returning the run whose contribution
// starts at offset 0 relative to the original run (i.e. the first half,
// or the run unchanged if cut is 0 or at its end).
func splitRunAt(p *etree.Element, run *etree.Element, cut int) *etree.Element {
	tEl := findTChild(run)
	if tEl == nil {
		return run
	}
	text := tEl.Text()
	if cut <= 0 || cut >= len(text) {
		return run
	}

	left := run.Copy()
	right := run.Copy()
	setTText(left, text[:cut])
	setTText(right, text[cut:])

	parent := run.Parent()
	idx := childIndex(parent, run)
	parent.RemoveChild(run)
	parent.InsertChildAt(idx, right)
	parent.InsertChildAt(idx, left)
	return left
}

// childAfterSplit returns the run element immediately holding the text
// starting at offset cut within the original run's span — i.e. the
// "right" half produced by splitRunAt, or run itself if no split
// happened (cut was 0 or at the run's end).
func childAfterSplit(p *etree.Element, run *etree.Element, cut int) *etree.Element {
	tEl := findTChild(run)
	if tEl == nil {
		return run
	}
	if cut <= 0 || cut >= len(tEl.Text()) {
		return run
	}
	idx := childIndex(run.Parent(), run)
	siblings := run.Parent().ChildElements()
	if idx+1 < len(siblings) {
		return siblings[idx+1]
	}
	return run
}

func findTChild(run *etree.Element) *etree.Element {
	for _, c := range run.ChildElements() {
		if c.Space == "w" && c.Tag == "t" {
			return c
		}
	}
	return nil
}

func setTText(run *etree.Element, text string) {
	if t := findTChild(run); t != nil {
		t.SetText(text)
	}
}

func childIndex(parent, child *etree.Element) int {
	for i, c := range parent.ChildElements() {
		if c == child {
			return i
		}
	}
	return len(parent.ChildElements())
}

// renderComment emits a single <w:comment> with one paragraph per
// newline-separated line of req.Text, following the teacher's
// splitNewlines multi-paragraph convention.
func renderComment(req Request, date string) string {
	if date == "" {
		date = time.Now().UTC().Format(time.RFC3339)
	}
	var sb strings.Builder
	sb.WriteString(`<w:comment w:id="`)
	sb.WriteString(strconv.Itoa(req.CommentID))
	sb.WriteString(`" w:author="`)
	sb.WriteString(escapeAttr(req.Author))
	sb.WriteString(`" w:date="`)
	sb.WriteString(date)
	sb.WriteString(`" w:initials="`)
	sb.WriteString(escapeAttr(initialsFor(req)))
	sb.WriteString(`">`)
	for _, line := range splitNewlines(req.Text) {
		sb.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		sb.WriteString(escapeText(line))
		sb.WriteString(`</w:t></w:r></w:p>`)
	}
	sb.WriteString(`</w:comment>`)
	return sb.String()
}

// initialsFor returns the request's explicit initials when set, or else
// the uppercase first letters of each whitespace-split word in Author,
// falling back to "AI" when Author is also empty — the same derivation
// spec.md's buildCommentElement performs.
func initialsFor(req Request) string {
	if req.Initials != "" {
		return req.Initials
	}
	words := strings.Fields(req.Author)
	if len(words) == 0 {
		return "AI"
	}
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(strings.ToUpper(w[:1]))
	}
	return sb.String()
}

func renderCommentsPart(entries []string) string {
	var sb strings.Builder
	sb.WriteString(`<w:comments>`)
	for _, e := range entries {
		sb.WriteString(e)
	}
	sb.WriteString(`</w:comments>`)
	return sb.String()
}

// splitNewlines splits on \n, \r\n, and \r, mirroring the teacher's
// comments.go helper of the same name.
func splitNewlines(s string) []string {
	var result []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r':
			result = append(result, s[start:i])
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			start = i + 1
		case '\n':
			result = append(result, s[start:i])
			start = i + 1
		}
	}
	result = append(result, s[start:])
	return result
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "'", "&apos;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	return r.Replace(s)
}
