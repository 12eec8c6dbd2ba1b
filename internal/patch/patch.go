// Package patch implements the patcher (spec.md §4.F): it takes an
// ingested run model plus a word-diff op list and produces a new run
// model in which DELETE-covered text has become DELETION entries (or
// vanished, when redlining is off), INSERT ops have become new
// INSERTION entries (possibly opening new paragraphs when the inserted
// text contains newlines or list markers), and everything else passes
// through untouched.
//
// Grounded on the teacher library's replacetext.go (applyReplacements:
// ordered, offset-stable processing of a captured atom list, and the
// "recover formatting from the atom that used to occupy this span" rule)
// generalized from whole-paragraph replacement to arbitrary diff ops.
package patch

import (
	"sort"
	"strings"

	"github.com/vortex/ooxml-redline/internal/model"
	"github.com/vortex/ooxml-redline/internal/numbering"
	"github.com/vortex/ooxml-redline/internal/worddiff"
)

// Options configures how the patcher materializes edits.
type Options struct {
	// GenerateRedlines selects tracked-change output: true wraps deletions
	// as DELETION entries and insertions as INSERTION entries; false
	// drops deleted text and accepts inserted text as plain TEXT.
	GenerateRedlines bool
	Author           string
	Numbering        *numbering.Service
}

// containerFrame is one open sdt/smartTag/hyperlink on the container
// stack encountered while walking the run model.
type containerFrame struct {
	Kind model.ContainerKind
	ID   string
}

// patchState is the apply stage's single piece of walk state. Resolves
// the container-stack/pPr ambiguity by keeping them as two independent
// fields rather than folding the current paragraph's pPr onto the stack
// entries (the stray field the teacher's own container bookkeeping
// carried, and which spec.md §9 flags as a bug to not reproduce):
// CurrentParagraphPPrXML belongs to the paragraph, ContainerStack
// belongs to nested inline containers, and the two never alias.
type patchState struct {
	ContainerStack         []containerFrame
	CurrentParagraphPPrXML string
}

// Apply runs both patcher stages: splitting TEXT entries at diff
// boundaries, then walking the split model applying each op.
func Apply(entries []model.Entry, ops []worddiff.Op, opts Options) []model.Entry {
	split := splitAtBoundaries(entries, ops)
	return applyOps(split, ops, opts)
}

// --- Stage 1: split -----------------------------------------------------

// splitAtBoundaries cuts every TEXT entry at each diff op boundary that
// falls strictly inside it, so that after this stage every TEXT entry's
// [Start,End) lies entirely within exactly one op's range.
func splitAtBoundaries(entries []model.Entry, ops []worddiff.Op) []model.Entry {
	boundaries := collectBoundaries(ops)
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind != model.Text {
			out = append(out, e)
			continue
		}
		out = append(out, splitEntry(e, boundaries)...)
	}
	return out
}

func collectBoundaries(ops []worddiff.Op) []int {
	set := map[int]struct{}{}
	for _, op := range ops {
		set[op.Start] = struct{}{}
		set[op.End] = struct{}{}
	}
	b := make([]int, 0, len(set))
	for k := range set {
		b = append(b, k)
	}
	sort.Ints(b)
	return b
}

func splitEntry(e model.Entry, boundaries []int) []model.Entry {
	var cuts []int
	for _, b := range boundaries {
		if b > e.Start && b < e.End {
			cuts = append(cuts, b)
		}
	}
	if len(cuts) == 0 {
		return []model.Entry{e}
	}
	out := make([]model.Entry, 0, len(cuts)+1)
	prev := e.Start
	remaining := e.TextValue
	for _, c := range cuts {
		n := c - prev
		piece := remaining[:n]
		out = append(out, model.Entry{Kind: model.Text, Start: prev, End: c, TextValue: piece, RPrXml: e.RPrXml})
		remaining = remaining[n:]
		prev = c
	}
	out = append(out, model.Entry{Kind: model.Text, Start: prev, End: e.End, TextValue: remaining, RPrXml: e.RPrXml})
	return out
}

// --- Stage 2: apply ------------------------------------------------------

// applyOps walks the split entries in order, interleaving materialized
// INSERT ops at the right stream position, flipping DELETE-covered TEXT
// entries to DELETION (or dropping them), and passing everything else
// through.
func applyOps(entries []model.Entry, ops []worddiff.Op, opts Options) []model.Entry {
	state := &patchState{}
	inserts := insertOps(ops)
	insertIdx := 0
	var out []model.Entry

	flushInsertsBefore := func(pos int, allowEqual bool) {
		for insertIdx < len(inserts) {
			op := inserts[insertIdx]
			if op.Start > pos || (!allowEqual && op.Start == pos) {
				break
			}
			materializeInsertion(op, entries, &out, opts)
			insertIdx++
		}
	}

	for _, e := range entries {
		switch e.Kind {
		case model.ParagraphStart:
			flushInsertsBefore(e.Start, false)
			state.CurrentParagraphPPrXML = e.PPrXml
			out = append(out, e)
		case model.ContainerEnd, model.Bookmark:
			// Closing structure flushes pending inserts at the same offset
			// first, so new text lands inside the container/bookmark span
			// that was still open when it was produced.
			flushInsertsBefore(e.Start, true)
			if e.Kind == model.ContainerEnd {
				popContainer(state, e)
			}
			out = append(out, e)
		case model.ContainerStart:
			// Opening structure flushes only strictly-earlier inserts, so
			// an insertion positioned exactly at this offset is treated as
			// preceding (outside) the newly-opened container.
			flushInsertsBefore(e.Start, false)
			state.ContainerStack = append(state.ContainerStack, containerFrame{Kind: e.ContainerKindValue, ID: e.ContainerID})
			out = append(out, e)
		case model.Deletion:
			flushInsertsBefore(e.Start, true)
			out = append(out, e)
		case model.Text:
			flushInsertsBefore(e.Start, true)
			out = append(out, applyToText(e, ops, opts)...)
		default:
			out = append(out, e)
		}
	}
	// Tail insertion: any remaining INSERT ops land past every existing
	// entry, appended at the end of the model.
	for ; insertIdx < len(inserts); insertIdx++ {
		materializeInsertion(inserts[insertIdx], entries, &out, opts)
	}
	return out
}

func popContainer(state *patchState, end model.Entry) {
	for i := len(state.ContainerStack) - 1; i >= 0; i-- {
		if state.ContainerStack[i].ID == end.ContainerID {
			state.ContainerStack = append(state.ContainerStack[:i], state.ContainerStack[i+1:]...)
			return
		}
	}
}

func insertOps(ops []worddiff.Op) []worddiff.Op {
	var out []worddiff.Op
	for _, op := range ops {
		if op.Type == worddiff.Insert {
			out = append(out, op)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// applyToText resolves a (post-split) TEXT entry against the op whose
// range covers it: EQUAL passes through unchanged, DELETE flips it to a
// DELETION (or drops it outright when redlining is off), and the
// unmatched case (shouldn't occur once boundaries are aligned) passes
// through as a defensive fallback.
func applyToText(e model.Entry, ops []worddiff.Op, opts Options) []model.Entry {
	op := coveringOp(e, ops)
	if op == nil {
		return []model.Entry{e}
	}
	switch op.Type {
	case worddiff.Equal:
		return []model.Entry{e}
	case worddiff.Delete:
		if !opts.GenerateRedlines {
			return nil
		}
		d := model.NewDeletion(e.TextValue, opts.Author, "", e.Start)
		d.RPrXml = e.RPrXml
		return []model.Entry{d}
	default:
		return []model.Entry{e}
	}
}

func coveringOp(e model.Entry, ops []worddiff.Op) *worddiff.Op {
	for i := range ops {
		op := &ops[i]
		if op.Type == worddiff.Insert {
			continue
		}
		if e.Start >= op.Start && e.End <= op.End {
			return op
		}
	}
	return nil
}

// materializeInsertion turns one INSERT op into one or more entries,
// appended directly onto out. The inserted text is split on "\n": the
// first segment is appended as an INSERTION entry at the current
// position (promoting the paragraph already open in out to a list
// paragraph in place if that first segment is itself a list line); every
// following segment opens a new paragraph, first checking whether it
// starts with a recognized list marker (spec.md §4.H) and if so building
// the matching numPr pPr via the numbering service instead of inheriting
// the ambient paragraph properties.
func materializeInsertion(op worddiff.Op, context []model.Entry, out *[]model.Entry, opts Options) {
	if op.Text == "" {
		return
	}
	lines := strings.Split(op.Text, "\n")
	rPr := resolveInsertionRPr(context, op.Start, op.Text)
	newEntry := func(text string) model.Entry {
		if opts.GenerateRedlines {
			return model.NewInsertion(text, rPr, opts.Author, op.Start)
		}
		return model.NewText(text, rPr, op.Start)
	}
	// New paragraphs without a list marker take the properties of the
	// paragraph the insertion starts in.
	currentPPr := ""
	for _, e := range context {
		if e.Kind == model.ParagraphStart && e.Start <= op.Start {
			currentPPr = e.PPrXml
		}
	}

	for i, line := range lines {
		if i == 0 {
			line = promoteCurrentParagraphIfListLine(line, out, opts)
			if line == "" {
				continue
			}
			*out = append(*out, newEntry(line))
			continue
		}
		pPr, content := numberedParagraphStart(line, opts)
		if pPr == "" {
			pPr = currentPPr
		}
		*out = append(*out, model.NewParagraphStart(pPr, op.Start))
		// Emitted even when content is empty, to preserve the paragraph
		// (spec.md §4.F).
		*out = append(*out, newEntry(content))
	}
}

// promoteCurrentParagraphIfListLine detects a list marker at the start
// of the inserted text's first line and, when found and a paragraph is
// currently open in out, rewrites that paragraph's PARAGRAPH_START pPr
// in place to a list pPr — promoting the paragraph the insertion landed
// in to a list item rather than opening a new one. Returns the line with
// any matched marker stripped (unchanged if no promotion happened).
func promoteCurrentParagraphIfListLine(line string, out *[]model.Entry, opts Options) string {
	if opts.Numbering == nil {
		return line
	}
	remainder, marker, ok := numbering.MatchListMarker(line, false)
	if !ok {
		return line
	}
	idx := lastParagraphStartIndex(*out)
	if idx < 0 {
		return line
	}
	numID := opts.Numbering.GetOrCreateNumID(marker, numbering.Context{}, 0)
	(*out)[idx].PPrXml = numbering.BuildListPPr(numID, 0)
	return remainder
}

// lastParagraphStartIndex returns the index of the most recently
// emitted PARAGRAPH_START entry in entries, or -1 if none exists yet.
func lastParagraphStartIndex(entries []model.Entry) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Kind == model.ParagraphStart {
			return i
		}
	}
	return -1
}

// numberedParagraphStart inspects a new paragraph's first line for a
// list marker and, when found, returns a numPr-bearing pPr and the line
// with the marker stripped; otherwise returns an empty pPr (the caller
// then uses the properties of the paragraph the insertion starts in) and
// the line unchanged.
func numberedParagraphStart(line string, opts Options) (pPrXml string, content string) {
	if opts.Numbering == nil {
		return "", line
	}
	remainder, marker, ok := numbering.MatchListMarker(line, false)
	if !ok {
		return "", line
	}
	numID := opts.Numbering.GetOrCreateNumID(marker, numbering.Context{}, 0)
	return numbering.BuildListPPr(numID, 0), remainder
}

// resolveInsertionRPr implements the style-inheritance rule (spec.md
// §4.F/§8): let P be the nearest preceding TEXT entry and N the nearest
// following one. If only one of them exists, use it. If both exist: an
// inserted span that starts with a space inherits P (the leading space
// continues whatever formatting was already flowing); one that ends with
// a space inherits N (the trailing space belongs to what follows);
// otherwise it inherits P.
func resolveInsertionRPr(entries []model.Entry, pos int, insertedText string) string {
	var preceding, following *model.Entry
	for i := range entries {
		e := &entries[i]
		if e.Kind != model.Text {
			continue
		}
		if e.End <= pos {
			if preceding == nil || e.End > preceding.End {
				preceding = e
			}
		}
		if e.Start >= pos && following == nil {
			following = e
		}
	}
	if preceding == nil {
		if following != nil {
			return following.RPrXml
		}
		return ""
	}
	if following == nil {
		return preceding.RPrXml
	}
	if strings.HasPrefix(insertedText, " ") || strings.HasPrefix(insertedText, "\t") {
		return preceding.RPrXml
	}
	endsWithSpace := strings.HasSuffix(insertedText, " ") || strings.HasSuffix(insertedText, "\t")
	if endsWithSpace {
		return following.RPrXml
	}
	return preceding.RPrXml
}
