package oxml

import (
	"bytes"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-redline/internal/rlerrors"
)

// Parse parses XML text into an *etree.Element rooted at the document's
// top element. label identifies the input in error messages (e.g. a
// paragraph index or "comments request").
//
// etree fails outright on malformed markup, which is this adapter's
// equivalent of probing for an embedded parsererror element: any read
// failure here is reported as rlerrors.InvalidXML.
func Parse(text string, label string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, rlerrors.NewInvalidXML(label, err.Error(), err)
	}
	root := doc.Root()
	if root == nil {
		return nil, rlerrors.NewInvalidXML(label, "no root element found", nil)
	}
	return root, nil
}

// ParseFragment parses one or more sibling elements wrapped in a
// throwaway root, returning the root's children. Used for inputs that are
// a bare sequence of <w:p> elements with no common ancestor.
func ParseFragment(text string, label string) ([]*etree.Element, error) {
	wrapped := "<rl:fragment xmlns:rl=\"urn:ooxml-redline:fragment\" xmlns:w=\"" + NSWordprocessingML + "\" xmlns:r=\"" + NSRelationships + "\" xmlns:w14=\"" + NSWordML14 + "\">" + text + "</rl:fragment>"
	root, err := Parse(wrapped, label)
	if err != nil {
		return nil, err
	}
	return root.ChildElements(), nil
}

// Serialize renders el (and its subtree) back to an XML string, with no
// XML declaration — callers compose fragments into larger documents.
func Serialize(el *etree.Element) string {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	doc.WriteSettings.CanonicalEndTags = true
	var buf bytes.Buffer
	_, _ = doc.WriteTo(&buf)
	return buf.String()
}

// SerializeChildren renders just the children of el, concatenated, with
// no wrapping element and no namespace declarations reintroduced — the
// form the serializer needs for opaque property blobs (pPrXml, rPrXml,
// container property XML).
func SerializeChildren(el *etree.Element) string {
	var buf bytes.Buffer
	for _, child := range el.ChildElements() {
		doc := etree.NewDocument()
		doc.SetRoot(child.Copy())
		doc.WriteSettings.CanonicalEndTags = true
		_, _ = doc.WriteTo(&buf)
	}
	return StripNamespaceDecls(buf.String())
}

// StripNamespaceDecls removes xmlns / xmlns:* declarations from a
// serialized XML fragment. Every opaque blob the run model carries is
// stored without namespace declarations; the outer wrapper reintroduces
// them once.
func StripNamespaceDecls(xmlText string) string {
	return stripNsDeclsRegexp.ReplaceAllString(xmlText, "")
}

// LocalName returns an element's unprefixed tag name, e.g. "p" for a
// <w:p> element parsed by etree (etree already splits Space/Tag).
func LocalName(el *etree.Element) string {
	return el.Tag
}

// AttrValue returns the value of a namespace-prefixed attribute such as
// "w:id", or "" if absent.
func AttrValue(el *etree.Element, space, key string) string {
	for _, a := range el.Attr {
		if a.Space == space && a.Key == key {
			return a.Value
		}
	}
	return ""
}
