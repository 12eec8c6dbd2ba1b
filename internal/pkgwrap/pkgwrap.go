// Package pkgwrap renders the flat pkg:package wire format (spec.md §6):
// a single-file, non-archived stand-in for a .docx package used by
// callers that want a self-contained string rather than a zip. It is
// deliberately NOT the teacher library's opc/Part/Relationship assembly
// — that machinery builds a real zip archive with a relationship graph,
// which spec.md's Non-goals explicitly exclude (archive packaging and
// relationship bookkeeping are out of scope; see DESIGN.md). This
// package reproduces only the flat-text projection of that same shape:
// a package-level .rels part pointing at word/document.xml, a
// document-level .rels part pointing at whichever of numbering.xml /
// comments.xml are present, the document part itself (wrapping the
// caller's paragraph XML in w:document/w:body plus the trailing
// Word-insertion blank-paragraph shim spec.md §9 calls out), and the
// numbering/comments parts themselves.
//
// Grounded on the teacher library's oxml/ns.go content-type constants
// (reused verbatim from internal/oxml) and parts/numbering.go /
// parts/comments.go's notion that numbering and comments are distinct,
// optionally-present parts — pkgwrap exposes one function per present-
// parts combination instead of a general part-registry, resolving
// spec.md §9's open question about caller-side wrapping choice: the
// caller picks the function matching what it has, rather than passing a
// list pkgwrap must interpret.
package pkgwrap

import (
	"strings"

	"github.com/vortex/ooxml-redline/internal/oxml"
)

// part is one entry of the flat package: a target path, content type,
// and body.
type part struct {
	name        string
	contentType string
	body        string
}

// blankParagraphShim is the trailing Word-insertion paragraph the
// wrapper always appends after the edited content; a downstream caller
// strips it back off (spec.md §9).
const blankParagraphShim = "<w:p><w:pPr/></w:p>"

// Document wraps just the document part (no numbering or comments).
func Document(documentXML string) string {
	return render(packageRels(), documentRels(false, false), documentPart(documentXML))
}

// DocumentWithNumbering wraps the document and numbering parts.
func DocumentWithNumbering(documentXML, numberingXML string) string {
	return render(
		packageRels(),
		documentRels(true, false),
		documentPart(documentXML),
		part{"/word/numbering.xml", oxml.ContentTypeNumbering, numberingXML},
	)
}

// DocumentWithComments wraps the document and comments parts.
func DocumentWithComments(documentXML, commentsXML string) string {
	return render(
		packageRels(),
		documentRels(false, true),
		documentPart(documentXML),
		part{"/word/comments.xml", oxml.ContentTypeComments, commentsXML},
	)
}

// DocumentWithNumberingAndComments wraps all three parts.
func DocumentWithNumberingAndComments(documentXML, numberingXML, commentsXML string) string {
	return render(
		packageRels(),
		documentRels(true, true),
		documentPart(documentXML),
		part{"/word/numbering.xml", oxml.ContentTypeNumbering, numberingXML},
		part{"/word/comments.xml", oxml.ContentTypeComments, commentsXML},
	)
}

// documentPart builds /word/document.xml: the caller's paragraph XML
// wrapped in w:document/w:body, followed by the trailing blank-paragraph
// shim.
func documentPart(documentXML string) part {
	var sb strings.Builder
	sb.WriteString(`<w:document xmlns:w="`)
	sb.WriteString(oxml.NSWordprocessingML)
	sb.WriteString(`" xmlns:r="`)
	sb.WriteString(oxml.NSRelationships)
	sb.WriteString(`"><w:body>`)
	sb.WriteString(documentXML)
	sb.WriteString(blankParagraphShim)
	sb.WriteString(`</w:body></w:document>`)
	return part{"/word/document.xml", oxml.ContentTypeDocument, sb.String()}
}

// packageRels builds /_rels/.rels: the single relationship pointing the
// package at its main document part.
func packageRels() part {
	body := relationshipsXML([]relationship{{"rId1", oxml.RelTypeOfficeDocument, "word/document.xml"}})
	return part{"/_rels/.rels", oxml.ContentTypeRelationships, body}
}

// documentRels builds /word/_rels/document.xml.rels: numbering always
// takes rId2 when present; comments takes rId1 when numbering is absent,
// or rId3 (rIdN+1) when both are present, per spec.md §6.
func documentRels(hasNumbering, hasComments bool) part {
	var rels []relationship
	if hasNumbering {
		rels = append(rels, relationship{"rId2", oxml.RelTypeNumbering, "numbering.xml"})
	}
	if hasComments {
		id := "rId1"
		if hasNumbering {
			id = "rId3"
		}
		rels = append(rels, relationship{id, oxml.RelTypeComments, "comments.xml"})
	}
	return part{"/word/_rels/document.xml.rels", oxml.ContentTypeRelationships, relationshipsXML(rels)}
}

type relationship struct {
	id, relType, target string
}

func relationshipsXML(rels []relationship) string {
	var sb strings.Builder
	sb.WriteString(`<Relationships xmlns="`)
	sb.WriteString(oxml.NSPackageRelationships)
	sb.WriteString(`">`)
	for _, r := range rels {
		sb.WriteString(`<Relationship Id="`)
		sb.WriteString(r.id)
		sb.WriteString(`" Type="`)
		sb.WriteString(r.relType)
		sb.WriteString(`" Target="`)
		sb.WriteString(r.target)
		sb.WriteString(`"/>`)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func render(parts ...part) string {
	var sb strings.Builder
	sb.WriteString(`<pkg:package xmlns:pkg="`)
	sb.WriteString(oxml.NSPkg)
	sb.WriteString(`">`)
	for _, p := range parts {
		sb.WriteString(`<pkg:part pkg:name="`)
		sb.WriteString(p.name)
		sb.WriteString(`" pkg:contentType="`)
		sb.WriteString(p.contentType)
		sb.WriteString(`"><pkg:xmlData>`)
		sb.WriteString(p.body)
		sb.WriteString(`</pkg:xmlData></pkg:part>`)
	}
	sb.WriteString(`</pkg:package>`)
	return sb.String()
}
