package comments

import (
	"strings"
	"testing"
)

const docNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func TestInject_SingleParagraphSnippet(t *testing.T) {
	doc := `<w:document ` + docNS + `><w:body><w:p><w:r><w:t>Hello world today</w:t></w:r></w:p></w:body></w:document>`
	reqs := []Request{{ParagraphIndex: 0, Snippet: "world", Author: "Alice", Text: "needs review", CommentID: 1}}
	res, err := Inject(doc, reqs, Options{Date: "2026-01-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if res.CommentsApplied != 1 {
		t.Fatalf("CommentsApplied = %d", res.CommentsApplied)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", res.Warnings)
	}
	if !strings.Contains(res.DocumentXML, "<w:commentRangeStart") || !strings.Contains(res.DocumentXML, "<w:commentRangeEnd") {
		t.Fatalf("expected comment range markers, got %q", res.DocumentXML)
	}
	if !strings.Contains(res.DocumentXML, "<w:commentReference") {
		t.Fatalf("expected a comment reference run, got %q", res.DocumentXML)
	}
	if !strings.Contains(res.CommentsXML, `w:id="1"`) || !strings.Contains(res.CommentsXML, "needs review") {
		t.Fatalf("expected rendered comment part, got %q", res.CommentsXML)
	}
}

func TestInject_SplitsRunAtMatchBoundary(t *testing.T) {
	doc := `<w:document ` + docNS + `><w:body><w:p><w:r><w:t>abcdefgh</w:t></w:r></w:p></w:body></w:document>`
	reqs := []Request{{ParagraphIndex: 0, Snippet: "cde", Author: "A", Text: "x", CommentID: 1}}
	res, err := Inject(doc, reqs, Options{Date: "d"})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if !strings.Contains(res.DocumentXML, "ab") || !strings.Contains(res.DocumentXML, "cde") || !strings.Contains(res.DocumentXML, "fgh") {
		t.Fatalf("expected run split into three text pieces, got %q", res.DocumentXML)
	}
}

func TestInject_OutOfRangeParagraphWarnsAndSkips(t *testing.T) {
	doc := `<w:document ` + docNS + `><w:body><w:p><w:r><w:t>only paragraph</w:t></w:r></w:p></w:body></w:document>`
	reqs := []Request{
		{ParagraphIndex: 5, Snippet: "x", Author: "A", Text: "t", CommentID: 1},
		{ParagraphIndex: 0, Snippet: "only", Author: "A", Text: "t", CommentID: 2},
	}
	res, err := Inject(doc, reqs, Options{Date: "d"})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if res.CommentsApplied != 1 {
		t.Fatalf("expected the in-range request to still apply, got %d applied", res.CommentsApplied)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning for the out-of-range request, got %+v", res.Warnings)
	}
}

func TestInject_TextNotFoundWarnsAndSkipsButOthersContinue(t *testing.T) {
	doc := `<w:document ` + docNS + `><w:body><w:p><w:r><w:t>findable text</w:t></w:r></w:p></w:body></w:document>`
	reqs := []Request{
		{ParagraphIndex: 0, Snippet: "missing", Author: "A", Text: "t", CommentID: 1},
		{ParagraphIndex: 0, Snippet: "findable", Author: "A", Text: "t", CommentID: 2},
	}
	res, err := Inject(doc, reqs, Options{Date: "d"})
	if err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if res.CommentsApplied != 1 {
		t.Fatalf("expected one applied comment, got %d", res.CommentsApplied)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", res.Warnings)
	}
}

func TestInject_DuplicateCommentIDIsFatal(t *testing.T) {
	doc := `<w:document ` + docNS + `><w:body><w:p><w:r><w:t>hello</w:t></w:r></w:p></w:body></w:document>`
	reqs := []Request{
		{ParagraphIndex: 0, Snippet: "hello", Author: "A", Text: "t", CommentID: 1},
		{ParagraphIndex: 0, Snippet: "hello", Author: "A", Text: "t2", CommentID: 1},
	}
	_, err := Inject(doc, reqs, Options{Date: "d"})
	if err == nil {
		t.Fatal("expected a duplicate comment id error")
	}
}

func TestInject_InvalidDocumentIsFatal(t *testing.T) {
	_, err := Inject("<not-xml", nil, Options{})
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestInitialsFor_DerivesFromAuthorWhenExplicitMissing(t *testing.T) {
	got := initialsFor(Request{Author: "Jane Doe"})
	if got != "JD" {
		t.Fatalf("initials = %q", got)
	}
}

func TestInitialsFor_FallsBackToAI(t *testing.T) {
	got := initialsFor(Request{})
	if got != "AI" {
		t.Fatalf("initials = %q", got)
	}
}

func TestSplitNewlines_HandlesAllLineEndings(t *testing.T) {
	got := splitNewlines("a\nb\r\nc\rd")
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %+v want %+v", got, want)
		}
	}
}

func TestEscapeText_EscapesApostrophe(t *testing.T) {
	if got := escapeText("can't"); got != "can&apos;t" {
		t.Fatalf("escapeText = %q", got)
	}
}
