// Package model defines the run model: the linear, typed representation
// of a paragraph's content that ingestion produces, the patcher
// transforms, and the serializer consumes.
//
// An Entry is a flat tagged union rather than an interface hierarchy —
// this mirrors the teacher library's textAtom struct (replacetext.go),
// which carries kind-discriminating fields on one type instead of a
// class per element kind. It keeps the patcher's split/splice logic a
// simple value copy instead of a tree rebuild.
package model

// Kind discriminates which fields of an Entry are meaningful.
type Kind int

const (
	// ParagraphStart opens a paragraph; holds serialized paragraph
	// properties. Zero-length at its offset.
	ParagraphStart Kind = iota
	// Text is a plain visible run contributing [Start, End) to accepted text.
	Text
	// Deletion is a run that was already a Word deletion in the input
	// (w:del), preserved verbatim. Contributes nothing to accepted text.
	Deletion
	// Insertion is produced only by the patcher from a diff INSERT op.
	Insertion
	// Bookmark is a w:bookmarkStart or w:bookmarkEnd, passed through as
	// opaque XML. Zero length.
	Bookmark
	// ContainerStart opens an sdt / smartTag / hyperlink container.
	ContainerStart
	// ContainerEnd closes the matching container.
	ContainerEnd
)

func (k Kind) String() string {
	switch k {
	case ParagraphStart:
		return "PARAGRAPH_START"
	case Text:
		return "TEXT"
	case Deletion:
		return "DELETION"
	case Insertion:
		return "INSERTION"
	case Bookmark:
		return "BOOKMARK"
	case ContainerStart:
		return "CONTAINER_START"
	case ContainerEnd:
		return "CONTAINER_END"
	default:
		return "UNKNOWN"
	}
}

// ContainerKind distinguishes the three container element kinds.
type ContainerKind int

const (
	ContainerNone ContainerKind = iota
	ContainerSdt
	ContainerSmartTag
	ContainerHyperlink
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerSdt:
		return "sdt"
	case ContainerSmartTag:
		return "smartTag"
	case ContainerHyperlink:
		return "hyperlink"
	default:
		return "none"
	}
}

// Entry is one element of the run model.
type Entry struct {
	Kind Kind

	// Offsets into accepted text (ingestion) or cleaned modified text
	// (entries produced by the patcher from diff ops). Every non-Text/
	// Insertion entry has Start == End.
	Start, End int

	// Text entries and Deletion/Insertion entries carry their literal text.
	// For Deletion this is the concatenation of w:delText leaves.
	TextValue string

	// PPrXml is set on ParagraphStart: the serialized <w:pPr>, or "" if absent.
	PPrXml string

	// RPrXml is set on Text/Insertion: the serialized first <w:rPr> child,
	// or "" if absent.
	RPrXml string

	// Author is set on Deletion (from @w:author) and Insertion.
	Author string

	// NodeXml is set on Deletion (the full original <w:del> XML, verbatim)
	// and Bookmark (the bookmarkStart/End element, verbatim).
	NodeXml string

	// ContainerID pairs a ContainerStart with its ContainerEnd.
	ContainerID string
	// ContainerKind is set on ContainerStart/ContainerEnd.
	ContainerKindValue ContainerKind
	// PropertiesXml is set on ContainerStart: sdtPr XML for sdt, the
	// serialized attribute list for smartTag, or a JSON blob
	// {"rId":"...","anchor":"..."} for hyperlink.
	PropertiesXml string
}

// IsZeroLength reports whether this entry contributes no characters to
// whatever offset space it lives in (invariant 3 in spec.md §3).
func (e Entry) IsZeroLength() bool {
	return e.Start == e.End
}

// NewParagraphStart builds a PARAGRAPH_START entry at offset.
func NewParagraphStart(pPrXml string, offset int) Entry {
	return Entry{Kind: ParagraphStart, Start: offset, End: offset, PPrXml: pPrXml}
}

// NewText builds a TEXT entry covering [start, start+len(text)).
func NewText(text, rPrXml string, start int) Entry {
	return Entry{Kind: Text, Start: start, End: start + len(text), TextValue: text, RPrXml: rPrXml}
}

// NewDeletion builds a DELETION entry at offset (zero-length).
func NewDeletion(text, author, nodeXml string, offset int) Entry {
	return Entry{Kind: Deletion, Start: offset, End: offset, TextValue: text, Author: author, NodeXml: nodeXml}
}

// NewInsertion builds an INSERTION entry covering [start, start+len(text)).
func NewInsertion(text, rPrXml, author string, start int) Entry {
	return Entry{Kind: Insertion, Start: start, End: start + len(text), TextValue: text, RPrXml: rPrXml, Author: author}
}

// NewBookmark builds a BOOKMARK entry at offset (zero-length).
func NewBookmark(nodeXml string, offset int) Entry {
	return Entry{Kind: Bookmark, Start: offset, End: offset, NodeXml: nodeXml}
}

// NewContainerStart builds a CONTAINER_START entry at offset (zero-length).
func NewContainerStart(kind ContainerKind, id, propertiesXml string, offset int) Entry {
	return Entry{Kind: ContainerStart, Start: offset, End: offset, ContainerID: id, ContainerKindValue: kind, PropertiesXml: propertiesXml}
}

// NewContainerEnd builds a CONTAINER_END entry at offset (zero-length),
// sharing ContainerID with its matching start.
func NewContainerEnd(kind ContainerKind, id string, offset int) Entry {
	return Entry{Kind: ContainerEnd, Start: offset, End: offset, ContainerID: id, ContainerKindValue: kind}
}
