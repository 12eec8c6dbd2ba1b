package pkgwrap

import (
	"strings"
	"testing"
)

func TestDocument_WrapsBodyWithBlankParagraphShim(t *testing.T) {
	out := Document("<w:p><w:r><w:t>hi</w:t></w:r></w:p>")
	if !strings.Contains(out, "<pkg:package") {
		t.Fatalf("expected pkg:package root, got %q", out)
	}
	if !strings.Contains(out, `pkg:name="/word/document.xml"`) {
		t.Fatalf("expected the document part, got %q", out)
	}
	if !strings.Contains(out, blankParagraphShim) {
		t.Fatalf("expected the trailing blank paragraph shim, got %q", out)
	}
	if strings.Contains(out, "numbering.xml") {
		t.Fatalf("expected no numbering part for a bare document, got %q", out)
	}
}

func TestDocument_PackageRelsPointAtDocumentPart(t *testing.T) {
	out := Document("<w:p/>")
	if !strings.Contains(out, `pkg:name="/_rels/.rels"`) {
		t.Fatalf("expected package rels part, got %q", out)
	}
	if !strings.Contains(out, `Target="word/document.xml"`) {
		t.Fatalf("expected officeDocument relationship target, got %q", out)
	}
}

func TestDocumentWithNumbering_AssignsRId2(t *testing.T) {
	out := DocumentWithNumbering("<w:p/>", "<w:numbering/>")
	if !strings.Contains(out, `pkg:name="/word/numbering.xml"`) {
		t.Fatalf("expected numbering part, got %q", out)
	}
	if !strings.Contains(out, `Id="rId2"`) {
		t.Fatalf("expected numbering relationship at rId2, got %q", out)
	}
}

func TestDocumentWithComments_AssignsRId1WhenAlone(t *testing.T) {
	out := DocumentWithComments("<w:p/>", "<w:comments/>")
	if !strings.Contains(out, `pkg:name="/word/comments.xml"`) {
		t.Fatalf("expected comments part, got %q", out)
	}
	if !strings.Contains(out, `Id="rId1"`) {
		t.Fatalf("expected comments relationship at rId1 when alone, got %q", out)
	}
}

func TestDocumentWithNumberingAndComments_CommentsGetsRId3(t *testing.T) {
	out := DocumentWithNumberingAndComments("<w:p/>", "<w:numbering/>", "<w:comments/>")
	if !strings.Contains(out, `Id="rId2"`) {
		t.Fatalf("expected numbering at rId2, got %q", out)
	}
	if !strings.Contains(out, `Id="rId3"`) {
		t.Fatalf("expected comments at rId3 when numbering is also present, got %q", out)
	}
	if !strings.Contains(out, `pkg:name="/word/numbering.xml"`) || !strings.Contains(out, `pkg:name="/word/comments.xml"`) {
		t.Fatalf("expected both parts present, got %q", out)
	}
}

func TestDocumentPart_WrapsInDocumentAndBody(t *testing.T) {
	p := documentPart("<w:p><w:r><w:t>x</w:t></w:r></w:p>")
	if !strings.Contains(p.body, "<w:document") || !strings.Contains(p.body, "<w:body>") {
		t.Fatalf("expected w:document/w:body wrapper, got %q", p.body)
	}
	if !strings.HasSuffix(p.body, "</w:body></w:document>") {
		t.Fatalf("expected body/document closed at the end, got %q", p.body)
	}
}
