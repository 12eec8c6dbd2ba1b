package patch

import (
	"strings"
	"testing"

	"github.com/vortex/ooxml-redline/internal/model"
	"github.com/vortex/ooxml-redline/internal/numbering"
	"github.com/vortex/ooxml-redline/internal/worddiff"
)

func TestApply_EqualPassesThrough(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("hello", "", 0),
	}
	ops := worddiff.Diff("hello", "hello")
	out := Apply(entries, ops, Options{})
	var texts []string
	for _, e := range out {
		if e.Kind == model.Text {
			texts = append(texts, e.TextValue)
		}
	}
	if strings.Join(texts, "") != "hello" {
		t.Fatalf("texts = %+v", texts)
	}
}

func TestApply_DeleteBecomesDeletionWhenRedlining(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("hello world", "", 0),
	}
	ops := worddiff.Diff("hello world", "hello")
	out := Apply(entries, ops, Options{GenerateRedlines: true, Author: "tester"})
	var sawDeletion bool
	for _, e := range out {
		if e.Kind == model.Deletion {
			sawDeletion = true
			if e.Author != "tester" {
				t.Fatalf("deletion author = %q", e.Author)
			}
		}
	}
	if !sawDeletion {
		t.Fatalf("expected a deletion entry, got %+v", out)
	}
}

func TestApply_DeleteDroppedWhenNotRedlining(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("hello world", "", 0),
	}
	ops := worddiff.Diff("hello world", "hello")
	out := Apply(entries, ops, Options{GenerateRedlines: false})
	for _, e := range out {
		if e.Kind == model.Deletion {
			t.Fatalf("expected no deletion entries, got %+v", out)
		}
	}
}

func TestApply_InsertProducesInsertionEntry(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("hello", "", 0),
	}
	ops := worddiff.Diff("hello", "hello there")
	out := Apply(entries, ops, Options{GenerateRedlines: true, Author: "a"})
	var found bool
	for _, e := range out {
		if e.Kind == model.Insertion && strings.Contains(e.TextValue, "there") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an insertion with 'there', got %+v", out)
	}
}

func TestApply_MultilineInsertOpensNewParagraph(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("hello", "", 0),
	}
	ops := worddiff.Diff("hello", "hello\nworld")
	out := Apply(entries, ops, Options{GenerateRedlines: false})
	var paragraphStarts int
	var sawWorld bool
	for _, e := range out {
		if e.Kind == model.ParagraphStart {
			paragraphStarts++
		}
		if e.Kind == model.Text && e.TextValue == "world" {
			sawWorld = true
		}
	}
	if paragraphStarts != 2 {
		t.Fatalf("expected 2 paragraph starts, got %d (%+v)", paragraphStarts, out)
	}
	if !sawWorld {
		t.Fatalf("expected a text entry 'world', got %+v", out)
	}
}

func TestApply_FirstLineListMarkerPromotesOpenParagraph(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("<w:pPr/>", 0),
	}
	ops := []worddiff.Op{{Type: worddiff.Insert, Start: 0, End: 0, Text: "- item one"}}
	svc := numbering.NewService()
	out := Apply(entries, ops, Options{Numbering: svc})

	if out[0].Kind != model.ParagraphStart {
		t.Fatalf("expected first entry to remain a paragraph start, got %+v", out[0])
	}
	if !strings.Contains(out[0].PPrXml, "numPr") {
		t.Fatalf("expected promoted pPr to carry numPr, got %q", out[0].PPrXml)
	}
	var sawText bool
	for _, e := range out {
		if e.Kind == model.Text && e.TextValue == "item one" {
			sawText = true
		}
	}
	if !sawText {
		t.Fatalf("expected marker stripped from inserted text, got %+v", out)
	}
}

func TestApply_SubsequentLineListMarkerBuildsNumPr(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("intro", "", 0),
	}
	ops := []worddiff.Op{{Type: worddiff.Insert, Start: 5, End: 5, Text: "\n1. first"}}
	svc := numbering.NewService()
	out := Apply(entries, ops, Options{Numbering: svc})

	var sawNumberedStart bool
	for _, e := range out {
		if e.Kind == model.ParagraphStart && strings.Contains(e.PPrXml, "numPr") {
			sawNumberedStart = true
		}
	}
	if !sawNumberedStart {
		t.Fatalf("expected a new numbered paragraph start, got %+v", out)
	}
}

func TestApply_EmptyInsertedLinePreservesParagraph(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("a", "", 0),
	}
	ops := []worddiff.Op{{Type: worddiff.Insert, Start: 1, End: 1, Text: "\n\nb"}}
	out := Apply(entries, ops, Options{})

	var paragraphStarts int
	for _, e := range out {
		if e.Kind == model.ParagraphStart {
			paragraphStarts++
		}
	}
	// original + two more opened by the two "\n" separators
	if paragraphStarts != 3 {
		t.Fatalf("expected 3 paragraph starts for a blank-line insert, got %d (%+v)", paragraphStarts, out)
	}
}

func TestApply_InsertionInheritsPrecedingRunProperties(t *testing.T) {
	entries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("hello", "<w:rPr><w:b/></w:rPr>", 0),
	}
	ops := worddiff.Diff("hello", "hello there")
	out := Apply(entries, ops, Options{GenerateRedlines: false})
	for _, e := range out {
		if e.Kind == model.Text && strings.Contains(e.TextValue, "there") {
			if e.RPrXml != "<w:rPr><w:b/></w:rPr>" {
				t.Fatalf("expected inserted text to inherit bold rPr, got %q", e.RPrXml)
			}
		}
	}
}

// An insertion sitting between two runs with different rPr picks its
// formatting by whether it starts or ends with a space (spec.md §4.F/§8):
// leading space -> the preceding run's rPr, trailing space -> the
// following run's rPr, neither -> the preceding run's rPr.
func TestApply_InsertionBetweenRunsPicksRPrBySpacePosition(t *testing.T) {
	boldRPr := "<w:rPr><w:b/></w:rPr>"
	italicRPr := "<w:rPr><w:i/></w:rPr>"
	baseEntries := []model.Entry{
		model.NewParagraphStart("", 0),
		model.NewText("left", boldRPr, 0),
		model.NewText("right", italicRPr, 4),
	}

	cases := []struct {
		name    string
		text    string
		wantRPr string
	}{
		{"leading space inherits preceding", " mid", boldRPr},
		{"trailing space inherits following", "mid ", italicRPr},
		{"no boundary space inherits preceding", "mid", boldRPr},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ops := []worddiff.Op{
				{Type: worddiff.Equal, Start: 0, End: 4, Text: "left"},
				{Type: worddiff.Insert, Start: 4, End: 4, Text: tc.text},
				{Type: worddiff.Equal, Start: 4, End: 9, Text: "right"},
			}
			entries := append([]model.Entry(nil), baseEntries...)
			out := Apply(entries, ops, Options{GenerateRedlines: false})
			found := false
			for _, e := range out {
				if e.Kind == model.Text && e.TextValue == tc.text {
					found = true
					if e.RPrXml != tc.wantRPr {
						t.Fatalf("expected inserted %q to carry rPr %q, got %q", tc.text, tc.wantRPr, e.RPrXml)
					}
				}
			}
			if !found {
				t.Fatalf("inserted entry %q not found in output", tc.text)
			}
		})
	}
}
