package worddiff

import "testing"

func opsString(ops []Op) string {
	s := ""
	for _, op := range ops {
		s += op.Text + "|"
	}
	return s
}

func TestDiff_EqualStrings(t *testing.T) {
	ops := Diff("hello world", "hello world")
	if len(ops) != 1 || ops[0].Type != Equal || ops[0].Text != "hello world" {
		t.Fatalf("got %+v", ops)
	}
}

func TestDiff_EmptyBoth(t *testing.T) {
	if ops := Diff("", ""); ops != nil {
		t.Fatalf("expected nil, got %+v", ops)
	}
}

func TestDiff_EmptyOriginal(t *testing.T) {
	ops := Diff("", "new text")
	if len(ops) != 1 || ops[0].Type != Insert || ops[0].Text != "new text" {
		t.Fatalf("got %+v", ops)
	}
	if ops[0].Start != 0 || ops[0].End != 0 {
		t.Fatalf("insert should be zero-width, got start=%d end=%d", ops[0].Start, ops[0].End)
	}
}

func TestDiff_EmptyModified(t *testing.T) {
	ops := Diff("old text", "")
	if len(ops) != 1 || ops[0].Type != Delete || ops[0].Text != "old text" {
		t.Fatalf("got %+v", ops)
	}
}

func TestDiff_SingleWordChange(t *testing.T) {
	ops := Diff("the quick fox", "the slow fox")
	var hasDelete, hasInsert, hasEqual bool
	for _, op := range ops {
		switch op.Type {
		case Delete:
			hasDelete = true
		case Insert:
			hasInsert = true
		case Equal:
			hasEqual = true
		}
	}
	if !hasDelete || !hasInsert || !hasEqual {
		t.Fatalf("expected a mix of equal/delete/insert ops, got %+v", ops)
	}
}

func TestDiff_OpsPartitionOriginal(t *testing.T) {
	original := "alpha beta gamma delta"
	ops := Diff(original, "alpha beta gamma epsilon")
	cursor := 0
	for _, op := range ops {
		if op.Type == Insert {
			continue
		}
		if op.Start != cursor {
			t.Fatalf("ops do not partition original text contiguously: %+v", ops)
		}
		cursor = op.End
	}
	if cursor != len(original) {
		t.Fatalf("ops did not cover full original text, ended at %d want %d", cursor, len(original))
	}
}

func TestDiff_AppendAtEnd(t *testing.T) {
	ops := Diff("hello", "hello world")
	last := ops[len(ops)-1]
	if last.Type != Insert || last.Text != " world" {
		t.Fatalf("expected tail insertion ' world', got %+v", ops)
	}
}
