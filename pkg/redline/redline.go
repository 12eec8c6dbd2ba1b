// Package redline is the engine orchestrator (spec.md §4.I, §6): the
// single public entry point that wires ingestion, markdown
// pre-processing, word diffing, patching, serialization, numbering, and
// comment injection into the three operations external callers use.
//
// Grounded on the teacher library's document.go/docx.go top-level Open/
// NewDocument orchestration style (a small facade assembling the real
// work from package-private helpers) and replacetext.go's ReplaceText
// entry point, which this package's ApplyRedline generalizes from
// whole-string replacement to diff-driven partial redlining.
package redline

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vortex/ooxml-redline/internal/comments"
	"github.com/vortex/ooxml-redline/internal/ingest"
	"github.com/vortex/ooxml-redline/internal/mdhint"
	"github.com/vortex/ooxml-redline/internal/numbering"
	"github.com/vortex/ooxml-redline/internal/oxml"
	"github.com/vortex/ooxml-redline/internal/patch"
	"github.com/vortex/ooxml-redline/internal/pkgwrap"
	"github.com/vortex/ooxml-redline/internal/rlerrors"
	"github.com/vortex/ooxml-redline/internal/sectpr"
	"github.com/vortex/ooxml-redline/internal/serialize"
	"github.com/vortex/ooxml-redline/internal/worddiff"
)

// Session is the engine's unit of state (spec.md §5): the revision-id
// counter and the numbering service are both scoped to one Session, so
// concurrent callers each holding their own Session never interleave ids
// or numId allocations. A Session is not safe for concurrent use by
// multiple goroutines at once — callers needing concurrency create one
// Session per goroutine.
type Session struct {
	clock     *serialize.RevisionClock
	numbering *numbering.Service
}

// NewSession returns a Session with its revision-id counter seeded at 1
// and an empty numbering allocation table.
func NewSession() *Session {
	return &Session{
		clock:     serialize.NewRevisionClock(),
		numbering: numbering.NewService(),
	}
}

// ResetRevisionIDCounter reseeds the session's revision-id counter,
// letting tests produce deterministic w:id values across runs (spec.md
// §6).
func (s *Session) ResetRevisionIDCounter(seed int) {
	s.clock.Reset(seed)
}

// Options configures one ApplyRedline call.
type Options struct {
	// GenerateRedlines selects tracked-change output (w:ins/w:del) over
	// silently accepted text.
	GenerateRedlines bool
	Author           string
	// StripMarkdown runs the markdown/HTML pre-processor (spec.md §4.C)
	// over modifiedText before diffing, converting recognized markers
	// into bold/italic/underline/strikethrough run formatting instead of
	// literal asterisks/tags in the output.
	StripMarkdown bool
}

// Result is the outcome of one ApplyRedline call.
type Result struct {
	// ParagraphXML holds one or more <w:p> elements, concatenated, in
	// document order — or, when IncludeNumbering is set, a full
	// pkg:package wrapping both the paragraph(s) and the numbering part.
	ParagraphXML string
	// AcceptedText is the text the result would read as once every
	// tracked change is accepted.
	AcceptedText string
	// HasChanges is false when the sanitized modifiedText was already
	// identical to the caller's originalText or to the paragraph's
	// accepted text: ParagraphXML is then
	// the caller's input, byte for byte, and no revision ids were
	// consumed.
	HasChanges bool
	// IncludeNumbering reports whether ParagraphXML is a pkg:package
	// wrapping a numbering.xml part rather than a bare paragraph fragment.
	// It is set only when this call allocated the session's first custom
	// list format; lists using the stock bullet/decimal/outline numIds,
	// and custom formats allocated after the session's first, come back
	// as bare paragraph XML.
	IncludeNumbering bool
	Warnings         []string
}

// ApplyRedline ingests paragraphXML, diffs its accepted text against
// modifiedText, and serializes a patched paragraph (or sequence of
// paragraphs, if modifiedText introduces newlines) reflecting the
// requested edit. originalText is the caller's own record of what the
// paragraph currently reads as. When it already equals the sanitized
// modifiedText, paragraphXML is returned unchanged without being parsed.
// Otherwise the diff runs against what ingestion actually finds, and a
// mismatch with originalText is logged so a caller relying on a cached
// copy notices the drift.
func (s *Session) ApplyRedline(paragraphXML, originalText, modifiedText string, opts Options) (Result, error) {
	sanitized := sanitizeModifiedText(modifiedText)

	if originalText == sanitized {
		return Result{ParagraphXML: paragraphXML, AcceptedText: originalText, HasChanges: false}, nil
	}

	paragraphs, err := oxml.ParseFragment(paragraphXML, "paragraph")
	if err != nil {
		return recoverableParseFailure(paragraphXML, originalText, err)
	}

	counter := ingest.NewContainerCounter()
	ingested, err := ingest.Paragraphs(paragraphs, counter)
	if err != nil {
		return recoverableParseFailure(paragraphXML, originalText, err)
	}

	var warnings []string
	if originalText != "" && originalText != ingested.AcceptedText {
		slog.Warn("redline: accepted-text drift from caller-supplied originalText",
			"expected_len", len(originalText), "actual_len", len(ingested.AcceptedText))
		warnings = append(warnings, "accepted text differs from caller-supplied originalText; proceeding with the document's actual text")
	}

	cleanedModified := sanitized
	var hints []mdhint.Hint
	if opts.StripMarkdown {
		cleanedModified, hints = mdhint.Process(sanitized)
	}

	if cleanedModified == ingested.AcceptedText {
		return Result{ParagraphXML: paragraphXML, AcceptedText: ingested.AcceptedText, HasChanges: false, Warnings: warnings}, nil
	}

	ops := worddiff.Diff(ingested.AcceptedText, cleanedModified)

	hadNumbering := s.numbering.HasCustomConfigs()
	patched := patch.Apply(ingested.RunModel, ops, patch.Options{
		GenerateRedlines: opts.GenerateRedlines,
		Author:           opts.Author,
		Numbering:        s.numbering,
	})
	introducedNumbering := !hadNumbering && s.numbering.HasCustomConfigs()

	date := time.Now().UTC().Format(time.RFC3339)
	xml := serialize.Paragraphs(patched, s.clock, serialize.Options{
		Author: opts.Author,
		Date:   date,
		Hints:  hints,
	}, ingested.FirstPPr)

	if strings.TrimSpace(xml) == "" || !strings.Contains(xml, "<w:t") {
		return Result{}, rlerrors.NewEmptyOutput()
	}

	result := Result{ParagraphXML: xml, AcceptedText: cleanedModified, HasChanges: true, Warnings: warnings}
	if introducedNumbering {
		result.ParagraphXML = pkgwrap.DocumentWithNumbering(xml, s.numbering.GenerateNumberingXml())
		result.IncludeNumbering = true
	}
	return result, nil
}

// recoverableParseFailure converts the two recoverable XML error kinds
// (spec.md §7: InvalidXml and NoParagraphs) into a well-formed,
// unchanged-input Result with a warning, rather than letting them
// propagate as errors out of ApplyRedline — the edit path never throws.
// Any other error (a genuine bug in the pipeline) is returned as-is.
func recoverableParseFailure(paragraphXML, originalText string, err error) (Result, error) {
	var invalid *rlerrors.InvalidXML
	var noParagraphs *rlerrors.NoParagraphs
	switch {
	case errors.As(err, &invalid):
		return Result{ParagraphXML: paragraphXML, AcceptedText: originalText, HasChanges: false, Warnings: []string{invalid.Detail}}, nil
	case errors.As(err, &noParagraphs):
		return Result{ParagraphXML: paragraphXML, AcceptedText: originalText, HasChanges: false, Warnings: []string{noParagraphs.Error()}}, nil
	default:
		return Result{}, err
	}
}

// sanitizeModifiedText trims surrounding whitespace and strips a stray
// leading "Text:" prefix some upstream AI clients emit, per spec.md
// §4.I step 1.
func sanitizeModifiedText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Text:")
	return strings.TrimSpace(s)
}

// IngestResult exposes a paragraph's accepted text and first pPr without
// applying any edit — the read-only half of the engine, for callers that
// only need to inspect a paragraph.
type IngestResult struct {
	AcceptedText string
	FirstPPr     string
}

// IngestOoxml parses paragraphXML and returns its accepted text.
func (s *Session) IngestOoxml(paragraphXML string) (IngestResult, error) {
	paragraphs, err := oxml.ParseFragment(paragraphXML, "paragraph")
	if err != nil {
		return IngestResult{}, err
	}
	counter := ingest.NewContainerCounter()
	ingested, err := ingest.Paragraphs(paragraphs, counter)
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{AcceptedText: ingested.AcceptedText, FirstPPr: ingested.FirstPPr}, nil
}

// CommentRequest is one comment to inject into a document.
type CommentRequest struct {
	// ParagraphIndex is 1-based, matching the external API's paragraph
	// numbering (spec.md §4.J).
	ParagraphIndex int
	Snippet        string
	Author         string
	Initials       string
	Text           string
	CommentID      int
}

// CommentOptions configures one InjectComments call.
type CommentOptions struct {
	Date string
}

// CommentResult is the outcome of injecting a batch of comments.
type CommentResult struct {
	DocumentXML     string
	CommentsXML     string
	CommentsApplied int
	Warnings        []string
}

// InjectComments locates every request's snippet in its target paragraph
// of documentXML and brackets it with commentRangeStart/End markers plus
// a commentReference, returning the patched document and the
// accompanying comments.xml part.
func (s *Session) InjectComments(documentXML string, requests []CommentRequest, opts CommentOptions) (CommentResult, error) {
	internalReqs := make([]comments.Request, len(requests))
	for i, r := range requests {
		internalReqs[i] = comments.Request{
			ParagraphIndex: r.ParagraphIndex - 1,
			Snippet:        r.Snippet,
			Author:         r.Author,
			Initials:       r.Initials,
			Text:           r.Text,
			CommentID:      r.CommentID,
		}
	}
	res, err := comments.Inject(documentXML, internalReqs, comments.Options{Date: opts.Date})
	if err != nil {
		return CommentResult{}, err
	}
	return CommentResult{
		DocumentXML:     res.DocumentXML,
		CommentsXML:     res.CommentsXML,
		CommentsApplied: res.CommentsApplied,
		Warnings:        res.Warnings,
	}, nil
}

// NormalizeSectionProperties exposes the sectPr normalizer (spec.md
// §4.L) for a single paragraph's <w:pPr>: a mid-document section
// break's sectPr must be the last child of that pPr.
func NormalizeSectionProperties(pPrXML string) string {
	if pPrXML == "" {
		return pPrXML
	}
	el, err := oxml.Parse("<w:pPr xmlns:w=\""+oxml.NSWordprocessingML+"\">"+stripOuterTag(pPrXML, "w:pPr")+"</w:pPr>", "pPr")
	if err != nil {
		return pPrXML
	}
	sectpr.Normalize(el)
	return oxml.StripNamespaceDecls(oxml.SerializeChildren(el))
}

// NormalizeBody exposes the sectPr normalizer (spec.md §4.L, invariant
// 7) at the w:body level: given the concatenated children of a body
// (paragraphs plus zero or more stray w:sectPr elements, in whatever
// order a caller assembled them from several patched fragments),
// returns the same children with every sectPr but the first dropped and
// that one moved to be the last direct child of the body.
func NormalizeBody(bodyChildrenXML string) string {
	if bodyChildrenXML == "" {
		return bodyChildrenXML
	}
	el, err := oxml.Parse("<w:body xmlns:w=\""+oxml.NSWordprocessingML+"\">"+stripOuterTag(bodyChildrenXML, "w:body")+"</w:body>", "body")
	if err != nil {
		return bodyChildrenXML
	}
	sectpr.Normalize(el)
	return oxml.StripNamespaceDecls(oxml.SerializeChildren(el))
}

// stripOuterTag removes a wrapping <tag>...</tag> if present, since
// the normalizers above re-wrap their input to guarantee a namespace
// context for parsing.
func stripOuterTag(xml, tag string) string {
	open, close := "<"+tag+">", "</"+tag+">"
	if strings.HasPrefix(xml, open) && strings.HasSuffix(xml, close) {
		return xml[len(open) : len(xml)-len(close)]
	}
	return xml
}
