// Package ingest implements paragraph ingestion (spec.md §4.E): walking
// one or more <w:p> elements into a linear run model plus the "accepted
// text" those runs currently produce.
//
// Grounded on the teacher library's replacetext.go (collectTextAtoms /
// collectRunAtoms: the same dispatch-by-local-name walk, the same set of
// text-contributing vs. skipped child elements) and hyperlink.go's
// CT_Hyperlink (the r:id / w:anchor shape a hyperlink's properties take).
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-redline/internal/model"
	"github.com/vortex/ooxml-redline/internal/oxml"
	"github.com/vortex/ooxml-redline/internal/rlerrors"
)

// Result is the ingestion output: the run model, the accepted text it
// produces, and the first paragraph's pPr (the serializer's fallback
// when a patched model has no surviving PARAGRAPH_START of its own).
type Result struct {
	RunModel     []model.Entry
	AcceptedText string
	FirstPPr     string
}

// ContainerCounter assigns unique-per-kind container ids within one
// ingestion call. An explicit counter value, not package-level state —
// see spec.md §5 and §9's open question about the teacher's stray
// containerStack field.
type ContainerCounter struct {
	next map[model.ContainerKind]int
}

// NewContainerCounter returns a fresh, zeroed counter.
func NewContainerCounter() *ContainerCounter {
	return &ContainerCounter{next: map[model.ContainerKind]int{}}
}

func (c *ContainerCounter) nextID(kind model.ContainerKind) string {
	n := c.next[kind]
	c.next[kind] = n + 1
	return fmt.Sprintf("%s_%d", kind.String(), n)
}

// Paragraphs ingests one or more <w:p> elements (already parsed) into a
// single run model and accepted text. A "\n" boundary is inserted between
// paragraphs but not after the last one.
func Paragraphs(paragraphs []*etree.Element, counter *ContainerCounter) (Result, error) {
	if len(paragraphs) == 0 {
		return Result{}, rlerrors.NewNoParagraphs()
	}

	var entries []model.Entry
	var text strings.Builder
	var firstPPr string

	for i, p := range paragraphs {
		if i > 0 {
			text.WriteByte('\n')
		}
		pPrXml := serializeFirstChild(p, "pPr")
		if i == 0 {
			firstPPr = pPrXml
		}
		entries = append(entries, model.NewParagraphStart(pPrXml, text.Len()))
		walkChildren(p, &entries, &text, counter)
	}

	return Result{RunModel: entries, AcceptedText: text.String(), FirstPPr: firstPPr}, nil
}

// walkChildren dispatches by local element name exactly per spec.md §4.E.
func walkChildren(parent *etree.Element, entries *[]model.Entry, text *strings.Builder, counter *ContainerCounter) {
	for _, child := range parent.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "pPr", "proofErr":
			// skip
		case "r":
			emitRun(child, entries, text)
		case "ins":
			walkChildren(child, entries, text, counter)
		case "del":
			emitDeletion(child, entries, text.Len())
		case "bookmarkStart", "bookmarkEnd":
			*entries = append(*entries, model.NewBookmark(oxml.StripNamespaceDecls(oxml.Serialize(child)), text.Len()))
		case "sdt":
			emitContainer(child, model.ContainerSdt, entries, text, counter)
		case "smartTag":
			emitContainer(child, model.ContainerSmartTag, entries, text, counter)
		case "hyperlink":
			emitContainer(child, model.ContainerHyperlink, entries, text, counter)
		default:
			// ignored
		}
	}
}

// emitRun emits a TEXT entry for a <w:r> only if it contributes non-empty
// text, per spec.md §4.E.
func emitRun(r *etree.Element, entries *[]model.Entry, text *strings.Builder) {
	contribution := runTextContribution(r)
	if contribution == "" {
		return
	}
	rPrXml := serializeFirstChild(r, "rPr")
	start := text.Len()
	text.WriteString(contribution)
	*entries = append(*entries, model.NewText(contribution, rPrXml, start))
}

// runTextContribution computes the accepted-text contribution of a
// single <w:r>: w:t verbatim, w:br/w:cr → "\n", w:tab → "\t",
// w:noBreakHyphen → U+2011.
func runTextContribution(r *etree.Element) string {
	var sb strings.Builder
	for _, child := range r.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "t":
			sb.WriteString(child.Text())
		case "br", "cr":
			sb.WriteByte('\n')
		case "tab", "ptab":
			sb.WriteByte('\t')
		case "noBreakHyphen":
			sb.WriteString("‑")
		}
	}
	return sb.String()
}

// emitDeletion emits a DELETION entry for a <w:del>: the concatenation of
// every contained w:delText leaf (including those nested in w:r), with
// author from @w:author. Contributes nothing to accepted text.
func emitDeletion(del *etree.Element, entries *[]model.Entry, offset int) {
	var sb strings.Builder
	collectDelText(del, &sb)
	author := oxml.AttrValue(del, "w", "author")
	nodeXml := oxml.StripNamespaceDecls(oxml.Serialize(del))
	*entries = append(*entries, model.NewDeletion(sb.String(), author, nodeXml, offset))
}

func collectDelText(el *etree.Element, sb *strings.Builder) {
	for _, child := range el.ChildElements() {
		if child.Space == "w" && child.Tag == "delText" {
			sb.WriteString(child.Text())
			continue
		}
		collectDelText(child, sb)
	}
}

// hyperlinkProperties is the JSON shape carried in a hyperlink
// CONTAINER_START's PropertiesXml field.
type hyperlinkProperties struct {
	RID    string `json:"rId,omitempty"`
	Anchor string `json:"anchor,omitempty"`
}

func emitContainer(el *etree.Element, kind model.ContainerKind, entries *[]model.Entry, text *strings.Builder, counter *ContainerCounter) {
	id := counter.nextID(kind)
	var props string
	content := el

	switch kind {
	case model.ContainerSdt:
		props = serializeFirstChild(el, "sdtPr")
		if sc := findChild(el, "sdtContent"); sc != nil {
			content = sc
		}
	case model.ContainerSmartTag:
		props = serializeAttrs(el)
	case model.ContainerHyperlink:
		hp := hyperlinkProperties{
			RID:    oxml.AttrValue(el, "r", "id"),
			Anchor: oxml.AttrValue(el, "w", "anchor"),
		}
		b, _ := json.Marshal(hp)
		props = string(b)
	}

	*entries = append(*entries, model.NewContainerStart(kind, id, props, text.Len()))
	walkChildren(content, entries, text, counter)
	*entries = append(*entries, model.NewContainerEnd(kind, id, text.Len()))
}

// findChild returns the first direct child element named (any namespace
// prefix, matched by local tag) localName, or nil.
func findChild(el *etree.Element, localName string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == localName {
			return child
		}
	}
	return nil
}

// serializeFirstChild returns the serialized first <w:localName> child of
// el, namespace declarations stripped, or "" if absent.
func serializeFirstChild(el *etree.Element, localName string) string {
	child := findChild(el, localName)
	if child == nil {
		return ""
	}
	return oxml.StripNamespaceDecls(oxml.Serialize(child))
}

// serializeAttrs renders an element's attribute list as a bare string
// (e.g. `w:uri="..." w:element="..."`) for opaque smartTag properties.
func serializeAttrs(el *etree.Element) string {
	var sb strings.Builder
	for i, a := range el.Attr {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if a.Space != "" {
			sb.WriteString(a.Space)
			sb.WriteByte(':')
		}
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(a.Value)
		sb.WriteByte('"')
	}
	return sb.String()
}
