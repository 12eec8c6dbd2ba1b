package serialize

import (
	"strings"
	"testing"

	"github.com/vortex/ooxml-redline/internal/mdhint"
	"github.com/vortex/ooxml-redline/internal/model"
)

func TestParagraphs_PlainText(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("<w:pPr/>", 0),
		model.NewText("hello", "", 0),
	}
	clock := NewRevisionClock()
	out := Paragraphs(entries, clock, Options{}, "")
	if !strings.Contains(out, "<w:p>") || !strings.Contains(out, "</w:p>") {
		t.Fatalf("expected a wrapped paragraph, got %q", out)
	}
	if !strings.Contains(out, "<w:t xml:space=\"preserve\">hello</w:t>") {
		t.Fatalf("expected a run with the text, got %q", out)
	}
}

func TestParagraphs_InsertionWrapsInWsIns(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewInsertion("added", "", "reviewer", 0),
	}
	clock := NewRevisionClock()
	clock.Reset(7)
	out := Paragraphs(entries, clock, Options{Author: "fallback", Date: "2026-01-01T00:00:00Z"}, "")
	if !strings.Contains(out, `<w:ins w:id="7" w:author="reviewer" w:date="2026-01-01T00:00:00Z">`) {
		t.Fatalf("expected w:ins with id 7 and entry author, got %q", out)
	}
	if !strings.Contains(out, "added") {
		t.Fatalf("expected inserted text, got %q", out)
	}
}

func TestParagraphs_InsertionGetsHintSplitting(t *testing.T) {
	clean, hints := mdhint.Process("plain **bold** word")
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewInsertion(clean, "", "a", 0),
	}
	clock := NewRevisionClock()
	out := Paragraphs(entries, clock, Options{Hints: hints, Date: "d"}, "")
	if !strings.Contains(out, "<w:b/>") {
		t.Fatalf("expected the bold hint to produce a <w:b/> toggle inside w:ins, got %q", out)
	}
	if strings.Count(out, "<w:r>") < 2 {
		t.Fatalf("expected at least two runs from hint splitting, got %q", out)
	}
}

func TestParagraphs_DeletionSynthesizesWhenNoNodeXml(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewDeletion("gone", "a", "", 0),
	}
	clock := NewRevisionClock()
	clock.Reset(1)
	out := Paragraphs(entries, clock, Options{Date: "d"}, "")
	if !strings.Contains(out, `<w:delText xml:space="preserve">gone</w:delText>`) {
		t.Fatalf("expected synthesized delText, got %q", out)
	}
}

func TestParagraphs_DeletionPreservesVerbatimNodeXml(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		{Kind: model.Deletion, NodeXml: "<w:del><w:r><w:delText>x</w:delText></w:r></w:del>"},
	}
	clock := NewRevisionClock()
	out := Paragraphs(entries, clock, Options{}, "")
	if !strings.Contains(out, "<w:del><w:r><w:delText>x</w:delText></w:r></w:del>") {
		t.Fatalf("expected verbatim node xml preserved, got %q", out)
	}
}

func TestRenderRun_FontReplacesExistingRFonts(t *testing.T) {
	out := renderRun("hi", `<w:rPr><w:rFonts w:ascii="Old"/><w:b/></w:rPr>`, nil, "Calibri")
	if !strings.Contains(out, `w:ascii="Calibri"`) {
		t.Fatalf("expected new font applied, got %q", out)
	}
	if strings.Contains(out, "Old") {
		t.Fatalf("expected old font replaced, got %q", out)
	}
	if !strings.Contains(out, "<w:b/>") {
		t.Fatalf("expected other rPr children preserved, got %q", out)
	}
}

func TestRenderRun_FontInsertedWhenNoRFonts(t *testing.T) {
	out := renderRun("hi", "<w:rPr><w:b/></w:rPr>", nil, "Calibri")
	if !strings.Contains(out, `<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/>`) {
		t.Fatalf("expected rFonts inserted, got %q", out)
	}
}

func TestEscapeText_EscapesApostrophe(t *testing.T) {
	if got := escapeText("it's"); got != "it&apos;s" {
		t.Fatalf("escapeText(%q) = %q", "it's", got)
	}
}

func TestEscapeAttr_EscapesApostropheAndQuote(t *testing.T) {
	if got := escapeAttr(`it's "ok"`); got != "it&apos;s &quot;ok&quot;" {
		t.Fatalf("escapeAttr = %q", got)
	}
}

func TestParagraphs_MultipleParagraphStartsEmitSeveralWP(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("first", "", 0),
		model.NewParagraphStart("", 0),
		model.NewText("second", "", 0),
	}
	clock := NewRevisionClock()
	out := Paragraphs(entries, clock, Options{}, "")
	if strings.Count(out, "<w:p>") != 2 {
		t.Fatalf("expected two paragraphs, got %q", out)
	}
}
