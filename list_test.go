package espalier

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
)

func TestSectionAtBounds(t *testing.T) {
	list := NewList[section, row](sec("a"), sec("b"))

	tests := []struct {
		name    string
		index   int
		wantErr bool
		wantID  string
	}{
		{name: "negative", index: -1, wantErr: true},
		{name: "at length", index: 2, wantErr: true},
		{name: "last valid", index: 1, wantID: "b"},
		{name: "first", index: 0, wantID: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := list.SectionAt(tt.index)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrOutOfRange) {
					t.Fatalf("expected ErrOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.id != tt.wantID {
				t.Errorf("got section %q, want %q", s.id, tt.wantID)
			}
		})
	}

	empty := NewList[section, row]()
	if _, err := empty.SectionAt(0); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("empty list SectionAt(0) should be out of range, got %v", err)
	}
}

func TestRowAtBounds(t *testing.T) {
	list := NewList[section, row](sec("a", "x", "y"), sec("b"))

	tests := []struct {
		name    string
		pos     domain.Position
		wantErr bool
		wantID  string
	}{
		{name: "valid", pos: domain.Pos(0, 1), wantID: "y"},
		{name: "last valid", pos: domain.Pos(0, 1), wantID: "y"},
		{name: "row at length", pos: domain.Pos(0, 2), wantErr: true},
		{name: "row negative", pos: domain.Pos(0, -1), wantErr: true},
		{name: "section out of range", pos: domain.Pos(2, 0), wantErr: true},
		{name: "empty section", pos: domain.Pos(1, 0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := list.RowAt(tt.pos)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrOutOfRange) {
					t.Fatalf("expected ErrOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.id != tt.wantID {
				t.Errorf("got row %q, want %q", r.id, tt.wantID)
			}
		})
	}
}

func TestRangeErrorDetail(t *testing.T) {
	list := NewList[section, row](sec("a", "x"))

	_, err := list.SectionAt(5)
	var rangeErr *domain.RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError, got %T", err)
	}
	if rangeErr.Index != 5 || rangeErr.Len != 1 || rangeErr.What != "section" {
		t.Errorf("unexpected detail: %+v", rangeErr)
	}
	if !strings.Contains(rangeErr.Error(), "out of range") {
		t.Errorf("unexpected message: %s", rangeErr.Error())
	}
}

func TestSectionQueries(t *testing.T) {
	list := NewList[section, row](
		section{id: "inbox", title: "hot"},
		section{id: "archive", title: "cold"},
		section{id: "trash", title: "cold"},
	)

	cold := list.SectionIndexes(func(_ int, s section) bool { return s.title == "cold" })
	if !reflect.DeepEqual(cold, []int{1, 2}) {
		t.Errorf("cold indexes = %v, want [1 2]", cold)
	}

	matches := list.Sections(func(_ int, s section) bool { return s.title == "cold" })
	if len(matches) != 2 || matches[0].id != "archive" || matches[1].id != "trash" {
		t.Errorf("unexpected sections: %v", matches)
	}

	first, ok := list.FirstSectionIndex(func(_ int, s section) bool { return s.title == "cold" })
	if !ok || first != 1 {
		t.Errorf("first cold = %d, %v", first, ok)
	}

	if _, ok := list.FirstSectionIndex(func(_ int, s section) bool { return false }); ok {
		t.Error("no-match lookup should report absence, not an error")
	}
}

func TestRowQueriesIterationOrder(t *testing.T) {
	list := NewList[section, row](sec("s1", "a", "b"), sec("s2", "c"), sec("s3"), sec("s4", "d"))

	all := list.Positions(func(domain.Position, section, row) bool { return true })
	want := []domain.Position{
		domain.Pos(0, 0), domain.Pos(0, 1), domain.Pos(1, 0), domain.Pos(3, 0),
	}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("positions = %v, want %v", all, want)
	}

	rows := list.Rows(func(p domain.Position, _ section, _ row) bool { return p.Row == 0 })
	if len(rows) != 3 || rows[0].id != "a" || rows[1].id != "c" || rows[2].id != "d" {
		t.Errorf("unexpected rows: %v", rows)
	}

	pos, ok := list.FirstPosition(func(_ domain.Position, _ section, r row) bool { return r.id == "c" })
	if !ok || pos != domain.Pos(1, 0) {
		t.Errorf("first c at %v, %v", pos, ok)
	}

	if _, ok := list.FirstPosition(func(domain.Position, section, row) bool { return false }); ok {
		t.Error("no-match lookup should report absence")
	}
}

func TestRowCount(t *testing.T) {
	list := NewList[section, row](sec("a", "x", "y"), sec("b"))

	if n, err := list.RowCount(0); err != nil || n != 2 {
		t.Errorf("RowCount(0) = %d, %v", n, err)
	}
	if n, err := list.RowCount(1); err != nil || n != 0 {
		t.Errorf("RowCount(1) = %d, %v", n, err)
	}
	if _, err := list.RowCount(2); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("RowCount(2) err = %v", err)
	}
}

func TestSetCopiesInput(t *testing.T) {
	list := NewList[section, row]()
	input := []section{sec("a"), sec("b")}
	list.Set(input)

	input[0] = sec("mutated")
	if s, _ := list.SectionAt(0); s.id != "a" {
		t.Errorf("Set must copy the section slice; got %q", s.id)
	}

	snap := list.Snapshot()
	snap[1] = sec("also-mutated")
	if s, _ := list.SectionAt(1); s.id != "b" {
		t.Errorf("Snapshot must copy the section slice; got %q", s.id)
	}
}

func TestKeyLookups(t *testing.T) {
	list := newFixture(sec("s1", "a"), sec("s2", "b", "c"))

	if i, ok := list.SectionIndex("s2"); !ok || i != 1 {
		t.Errorf("SectionIndex(s2) = %d, %v", i, ok)
	}
	if _, ok := list.SectionIndex("nope"); ok {
		t.Error("absent section key should report absence")
	}

	if p, ok := list.RowPosition("s2", "c"); !ok || p != domain.Pos(1, 1) {
		t.Errorf("RowPosition(s2, c) = %v, %v", p, ok)
	}
	if _, ok := list.RowPosition("s2", "a"); ok {
		t.Error("row key from another section should not match")
	}

	if !reflect.DeepEqual(list.Keys(), []string{"s1", "s2"}) {
		t.Errorf("Keys = %v", list.Keys())
	}
	if !reflect.DeepEqual(rowKeysAt(list, 1), []string{"b", "c"}) {
		t.Errorf("RowKeys(1) = %v", rowKeysAt(list, 1))
	}
}
