package redline

import (
	"strings"
	"testing"
)

func TestApplyRedline_NoChangeWhenTextIdentical(t *testing.T) {
	s := NewSession()
	xml := `<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>`
	res, err := s.ApplyRedline(xml, "Hello world", "Hello world", Options{})
	if err != nil {
		t.Fatalf("ApplyRedline: %v", err)
	}
	if res.HasChanges {
		t.Fatal("expected no changes for identical text")
	}
	if res.ParagraphXML != xml {
		t.Fatalf("expected input echoed back unchanged, got %q", res.ParagraphXML)
	}
}

func TestApplyRedline_GeneratesTrackedChanges(t *testing.T) {
	s := NewSession()
	s.ResetRevisionIDCounter(1)
	xml := `<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>`
	res, err := s.ApplyRedline(xml, "Hello world", "Hello there", Options{GenerateRedlines: true, Author: "reviewer"})
	if err != nil {
		t.Fatalf("ApplyRedline: %v", err)
	}
	if !res.HasChanges {
		t.Fatal("expected changes to be detected")
	}
	if !strings.Contains(res.ParagraphXML, "<w:ins") || !strings.Contains(res.ParagraphXML, "<w:del") {
		t.Fatalf("expected tracked insertion and deletion, got %q", res.ParagraphXML)
	}
	if res.AcceptedText != "Hello there" {
		t.Fatalf("AcceptedText = %q", res.AcceptedText)
	}
}

func TestApplyRedline_SilentAcceptWhenRedliningOff(t *testing.T) {
	s := NewSession()
	xml := `<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>`
	res, err := s.ApplyRedline(xml, "Hello world", "Hello there", Options{GenerateRedlines: false})
	if err != nil {
		t.Fatalf("ApplyRedline: %v", err)
	}
	if strings.Contains(res.ParagraphXML, "<w:ins") || strings.Contains(res.ParagraphXML, "<w:del") {
		t.Fatalf("expected no tracked-change elements, got %q", res.ParagraphXML)
	}
	if !strings.Contains(res.ParagraphXML, "Hello there") {
		t.Fatalf("expected accepted text inline, got %q", res.ParagraphXML)
	}
}

func TestApplyRedline_InvalidXMLIsRecoverable(t *testing.T) {
	s := NewSession()
	res, err := s.ApplyRedline("<not-valid", "original", "modified", Options{})
	if err != nil {
		t.Fatalf("expected a recovered result, not an error: %v", err)
	}
	if res.HasChanges {
		t.Fatal("expected HasChanges false on a recoverable parse failure")
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", res.Warnings)
	}
	if res.AcceptedText != "original" {
		t.Fatalf("expected originalText echoed back, got %q", res.AcceptedText)
	}
}

func TestApplyRedline_SanitizesLeadingTextPrefix(t *testing.T) {
	s := NewSession()
	xml := `<w:p><w:r><w:t>Hello world</w:t></w:r></w:p>`
	res, err := s.ApplyRedline(xml, "Hello world", "Text: Hello there", Options{})
	if err != nil {
		t.Fatalf("ApplyRedline: %v", err)
	}
	if res.AcceptedText != "Hello there" {
		t.Fatalf("expected the stray 'Text:' prefix stripped, got %q", res.AcceptedText)
	}
}

func TestApplyRedline_IntroducesCustomNumberingWrapsInPkgPackage(t *testing.T) {
	// A lettered-paren marker like "(a)" has no stock abstractNum id, so
	// allocating it registers a custom config and triggers pkg:package
	// wrapping; a plain "-" bullet uses the stock id and does not.
	s := NewSession()
	xml := `<w:p><w:r><w:t>intro</w:t></w:r></w:p>`
	res, err := s.ApplyRedline(xml, "intro", "intro\n(a) lettered item", Options{})
	if err != nil {
		t.Fatalf("ApplyRedline: %v", err)
	}
	if !res.IncludeNumbering {
		t.Fatal("expected IncludeNumbering to be set when a custom list format is introduced")
	}
	if !strings.Contains(res.ParagraphXML, "<pkg:package") {
		t.Fatalf("expected a pkg:package wrapper, got %q", res.ParagraphXML)
	}
}

func TestIngestOoxml_ReturnsAcceptedText(t *testing.T) {
	s := NewSession()
	res, err := s.IngestOoxml(`<w:p><w:r><w:t>plain text</w:t></w:r></w:p>`)
	if err != nil {
		t.Fatalf("IngestOoxml: %v", err)
	}
	if res.AcceptedText != "plain text" {
		t.Fatalf("AcceptedText = %q", res.AcceptedText)
	}
}

func TestInjectComments_AppliesAndReportsCount(t *testing.T) {
	s := NewSession()
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>hello world</w:t></w:r></w:p></w:body></w:document>`
	res, err := s.InjectComments(doc, []CommentRequest{{ParagraphIndex: 1, Snippet: "world", Author: "A", Text: "note", CommentID: 1}}, CommentOptions{Date: "d"})
	if err != nil {
		t.Fatalf("InjectComments: %v", err)
	}
	if res.CommentsApplied != 1 {
		t.Fatalf("CommentsApplied = %d", res.CommentsApplied)
	}
	if !strings.Contains(res.CommentsXML, "note") {
		t.Fatalf("expected rendered comment, got %q", res.CommentsXML)
	}
}

func TestNormalizeBody_MovesSectPrToEnd(t *testing.T) {
	children := `<w:sectPr w:id="s"/><w:p><w:r><w:t>x</w:t></w:r></w:p>`
	out := NormalizeBody(children)
	if !strings.HasSuffix(strings.TrimSpace(out), "</w:sectPr>") {
		t.Fatalf("expected sectPr moved to the end, got %q", out)
	}
}

func TestNormalizeSectionProperties_MovesSectPrToEndOfPPr(t *testing.T) {
	pPr := `<w:sectPr/><w:jc w:val="center"/>`
	out := NormalizeSectionProperties(pPr)
	if !strings.HasSuffix(strings.TrimSpace(out), "</w:sectPr>") {
		t.Fatalf("expected sectPr moved to the end, got %q", out)
	}
}
