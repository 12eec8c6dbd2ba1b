// Package rlerrors defines the typed error taxonomy shared by the
// reconciliation core. Every error embeds Base so errors.Is / errors.As
// can traverse the chain, mirroring the teacher library's DocxError
// hierarchy.
package rlerrors

import "fmt"

// Base is the shared error payload: a formatted message plus an optional
// wrapped cause.
type Base struct {
	msg   string
	cause error
}

func (e *Base) Error() string { return e.msg }
func (e *Base) Unwrap() error { return e.cause }

func newBase(cause error, format string, args ...any) Base {
	return Base{msg: fmt.Sprintf(format, args...), cause: cause}
}

// InvalidXML indicates the XML provider adapter failed to parse input.
type InvalidXML struct {
	Base
	Label  string
	Detail string
}

// NewInvalidXML builds an InvalidXML error for the named input.
func NewInvalidXML(label, detail string, cause error) *InvalidXML {
	return &InvalidXML{
		Base:   newBase(cause, "rlerrors: invalid xml in %s: %s", label, detail),
		Label:  label,
		Detail: detail,
	}
}

// NoParagraphs indicates the input contained no w:p elements.
type NoParagraphs struct{ Base }

// NewNoParagraphs builds a NoParagraphs error.
func NewNoParagraphs() *NoParagraphs {
	return &NoParagraphs{newBase(nil, "rlerrors: input contains no paragraphs")}
}

// EmptyOutput indicates the pipeline reported changes but produced no
// replacement nodes — a bug, not a recoverable user-facing condition.
type EmptyOutput struct{ Base }

// NewEmptyOutput builds an EmptyOutput error.
func NewEmptyOutput() *EmptyOutput {
	return &EmptyOutput{newBase(nil, "rlerrors: pipeline reported changes but produced no output")}
}

// OutOfRangeParagraph indicates a comment request referenced a paragraph
// index outside the document.
type OutOfRangeParagraph struct {
	Base
	Index, Total int
}

// NewOutOfRangeParagraph builds an OutOfRangeParagraph error.
func NewOutOfRangeParagraph(idx, total int) *OutOfRangeParagraph {
	return &OutOfRangeParagraph{
		Base:  newBase(nil, "rlerrors: paragraph index %d out of range (total=%d)", idx, total),
		Index: idx, Total: total,
	}
}

// TextNotFound indicates a comment's target snippet was not located in
// its paragraph's accepted text.
type TextNotFound struct {
	Base
	Snippet      string
	ParagraphIdx int
}

// NewTextNotFound builds a TextNotFound error.
func NewTextNotFound(snippet string, idx int) *TextNotFound {
	return &TextNotFound{
		Base:         newBase(nil, "rlerrors: text %q not found in paragraph %d", snippet, idx),
		Snippet:      snippet,
		ParagraphIdx: idx,
	}
}

// DuplicateCommentID indicates that two comment requests of one batch
// carry the same comment id. Fatal — the caller must reconcile.
type DuplicateCommentID struct {
	Base
	ID int
}

// NewDuplicateCommentID builds a DuplicateCommentID error.
func NewDuplicateCommentID(id int) *DuplicateCommentID {
	return &DuplicateCommentID{
		Base: newBase(nil, "rlerrors: duplicate comment id %d", id),
		ID:   id,
	}
}

// UnsupportedNativeFallback indicates the engine wanted a Word-host-only
// fallback in a hostless environment.
type UnsupportedNativeFallback struct {
	Base
	Reason string
}

// NewUnsupportedNativeFallback builds an UnsupportedNativeFallback error.
func NewUnsupportedNativeFallback(reason string) *UnsupportedNativeFallback {
	return &UnsupportedNativeFallback{
		Base:   newBase(nil, "rlerrors: unsupported native fallback: %s", reason),
		Reason: reason,
	}
}
