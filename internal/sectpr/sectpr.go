// Package sectpr normalizes section-properties placement within
// <w:body> (spec.md §4.L, invariant 7): a <w:sectPr> that ends up
// anywhere but the last direct child of w:body is moved there, and any
// duplicate sectPr beyond the first encountered is dropped rather than
// rejected. The same placement rule also governs a single paragraph's
// <w:pPr> (a mid-document section break's sectPr must be the last
// child of that pPr), so Normalize works on whichever container
// element is passed in — both are "keep at most one sectPr, as the
// final child" instances of the identical invariant.
//
// Grounded on the teacher library's section_custom.go (CT_SectPr: the
// same "section properties live at a fixed position in the owning
// element" invariant).
package sectpr

import "github.com/beevik/etree"

// Normalize ensures container (a <w:body> or <w:pPr> element, possibly
// nil) has at most one direct <w:sectPr> child and, if present, that it
// is the last child. Idempotent: normalize(normalize(x)) == normalize(x).
// Returns the element unchanged if container is nil or carries no sectPr.
func Normalize(container *etree.Element) *etree.Element {
	if container == nil {
		return container
	}
	var sectPrs []*etree.Element
	for _, child := range container.ChildElements() {
		if child.Space == "w" && child.Tag == "sectPr" {
			sectPrs = append(sectPrs, child)
		}
	}
	if len(sectPrs) == 0 {
		return container
	}
	keep := sectPrs[0]
	for _, extra := range sectPrs[1:] {
		container.RemoveChild(extra)
	}
	container.RemoveChild(keep)
	container.AddChild(keep)
	return container
}
