// Package textindex builds a single-pass mapping from a paragraph's
// plaintext offsets to the runs that produced them, used by the comment
// locator (spec.md §4.B, §4.J).
//
// Grounded on the teacher library's replacetext.go: collectTextAtoms /
// collectRunAtoms walk a <w:p>'s children in the same order and skip the
// same non-text elements (pPr, bookmarks, comment markers, proofErr, ins,
// del, sdt). textindex narrows that to run granularity — it only needs
// enough to locate and split a run, not to rebuild full accepted text.
package textindex

import (
	"strings"

	"github.com/beevik/etree"
)

// RunOffset records the half-open [Start, End) text interval a single
// <w:r> (or hyperlink-nested <w:r>) contributed to FullText.
type RunOffset struct {
	Run        *etree.Element
	Start, End int
}

// Index is the paragraph text index: the concatenated plaintext plus the
// run that produced each interval of it.
type Index struct {
	FullText   string
	RunOffsets []RunOffset
}

// Build walks pElem's direct <w:r> children and any <w:r> nested in a
// <w:hyperlink> child, in document order, accumulating FullText and
// RunOffsets. <w:t> text contributes verbatim, w:br/w:cr contribute
// "\n", w:tab/w:ptab contribute "\t" and w:noBreakHyphen contributes
// U+2011, matching accepted-text rules.
func Build(pElem *etree.Element) *Index {
	idx := &Index{}
	pos := 0
	for _, child := range pElem.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "r":
			idx.addRun(child, &pos)
		case "hyperlink":
			for _, gc := range child.ChildElements() {
				if gc.Space == "w" && gc.Tag == "r" {
					idx.addRun(gc, &pos)
				}
			}
		}
	}
	return idx
}

func (idx *Index) addRun(run *etree.Element, pos *int) {
	start := *pos
	var text string
	for _, child := range run.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "t":
			text += child.Text()
		case "br", "cr":
			text += "\n"
		case "tab", "ptab":
			text += "\t"
		case "noBreakHyphen":
			text += "‑"
		}
	}
	if text == "" {
		return
	}
	idx.FullText += text
	*pos += len(text)
	idx.RunOffsets = append(idx.RunOffsets, RunOffset{Run: run, Start: start, End: *pos})
}

// RunAt returns the RunOffset covering byte offset pos, or nil if none does.
func (idx *Index) RunAt(pos int) *RunOffset {
	for i := range idx.RunOffsets {
		ro := &idx.RunOffsets[i]
		if pos >= ro.Start && pos < ro.End {
			return ro
		}
	}
	return nil
}

// IndexOf returns the byte offset of the first occurrence of needle in
// FullText, or -1 if absent.
func (idx *Index) IndexOf(needle string) int {
	return strings.Index(idx.FullText, needle)
}
