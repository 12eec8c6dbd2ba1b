// Package oxml is the XML provider adapter: the narrow interface every
// other component speaks through to parse and serialize XML, plus the
// bit-exact namespace and content-type constants the wire format requires.
package oxml

// Namespace URIs, bit-exact per the engine's external interface contract.
const (
	NSWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSWordML14         = "http://schemas.microsoft.com/office/word/2010/wordml"
	NSRelationships    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPkg              = "http://schemas.microsoft.com/office/2006/xmlPackage"
)

// Content-type strings for the parts the package builder may emit.
const (
	ContentTypeDocument      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ContentTypeComments      = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
	ContentTypeNumbering     = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ContentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
)

// NSPackageRelationships is the XML namespace of a .rels part's root
// <Relationships> element.
const NSPackageRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationship type URIs (spec.md §6): officeDocument, numbering, and
// comments relationships all live under NSRelationships.
const (
	RelTypeOfficeDocument = NSRelationships + "/officeDocument"
	RelTypeNumbering      = NSRelationships + "/numbering"
	RelTypeComments       = NSRelationships + "/comments"
)

// Nsmap maps namespace prefixes to their URIs, mirroring the teacher
// library's oxml.Nsmap.
var Nsmap = map[string]string{
	"w":   NSWordprocessingML,
	"w14": NSWordML14,
	"r":   NSRelationships,
	"pkg": NSPkg,
}
