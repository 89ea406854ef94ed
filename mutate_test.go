package espalier

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
)

func keysOf(list *List[section, row]) []string {
	out := make([]string, list.Len())
	for i := range out {
		s, _ := list.SectionAt(i)
		out[i] = s.id
	}
	return out
}

func TestInsertSections(t *testing.T) {
	tests := []struct {
		name        string
		at          int
		wantErr     bool
		wantIndexes []int
		wantKeys    []string
	}{
		{name: "prepend", at: 0, wantIndexes: []int{0, 1}, wantKeys: []string{"x", "y", "a", "b"}},
		{name: "middle", at: 1, wantIndexes: []int{1, 2}, wantKeys: []string{"a", "x", "y", "b"}},
		{name: "append", at: 2, wantIndexes: []int{2, 3}, wantKeys: []string{"a", "b", "x", "y"}},
		{name: "past end", at: 3, wantErr: true},
		{name: "negative", at: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewList[section, row](sec("a"), sec("b"))
			indexes, err := list.InsertSections([]section{sec("x"), sec("y")}, tt.at)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrOutOfRange) {
					t.Fatalf("expected ErrOutOfRange, got %v", err)
				}
				if !reflect.DeepEqual(keysOf(list), []string{"a", "b"}) {
					t.Error("failed insert must leave the collection untouched")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(indexes, tt.wantIndexes) {
				t.Errorf("indexes = %v, want %v", indexes, tt.wantIndexes)
			}
			if !reflect.DeepEqual(keysOf(list), tt.wantKeys) {
				t.Errorf("keys = %v, want %v", keysOf(list), tt.wantKeys)
			}
		})
	}

	t.Run("empty run", func(t *testing.T) {
		list := NewList[section, row](sec("a"))
		indexes, err := list.InsertSections(nil, 1)
		if err != nil || indexes != nil {
			t.Errorf("empty insert = %v, %v", indexes, err)
		}
	})
}

func TestReplaceSection(t *testing.T) {
	list := NewList[section, row](sec("a"), sec("b"))

	if err := list.ReplaceSection(section{id: "b2"}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(keysOf(list), []string{"a", "b2"}) {
		t.Errorf("keys = %v", keysOf(list))
	}
	if err := list.ReplaceSection(section{id: "z"}, 2); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestReplaceSectionsFunc(t *testing.T) {
	list := NewList[section, row](sec("a"), sec("b"), sec("c"), sec("d"))

	touched := list.ReplaceSectionsFunc(func(i int, s section) (section, bool) {
		if i%2 == 1 {
			s.title = "odd"
			return s, true
		}
		return section{}, false
	})

	if !reflect.DeepEqual(touched, []int{1, 3}) {
		t.Errorf("touched = %v, want [1 3]", touched)
	}
	s, _ := list.SectionAt(1)
	if s.title != "odd" || s.id != "b" {
		t.Errorf("section 1 = %+v", s)
	}
	s, _ = list.SectionAt(0)
	if s.title != "" {
		t.Errorf("section 0 should be untouched, got %+v", s)
	}
}

func TestRemoveSection(t *testing.T) {
	list := NewList[section, row](sec("a"), sec("b"), sec("c"))

	if err := list.RemoveSection(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(keysOf(list), []string{"a", "c"}) {
		t.Errorf("keys = %v", keysOf(list))
	}
	if err := list.RemoveSection(2); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestRemoveSectionsBatch(t *testing.T) {
	list := NewList[section, row](sec("a"), sec("b"), sec("c"), sec("d"))

	removed, err := list.RemoveSections([]int{2, 0, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(removed, []int{0, 2}) {
		t.Errorf("removed = %v, want sorted deduplicated [0 2]", removed)
	}
	if !reflect.DeepEqual(keysOf(list), []string{"b", "d"}) {
		t.Errorf("survivors = %v, want [b d]", keysOf(list))
	}
}

func TestRemoveSectionsValidatesBeforeRemoving(t *testing.T) {
	list := NewList[section, row](sec("a"), sec("b"))

	_, err := list.RemoveSections([]int{0, 9})
	if !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if !reflect.DeepEqual(keysOf(list), []string{"a", "b"}) {
		t.Error("failed batch removal must leave the collection untouched")
	}
}

func TestRemoveSectionsFunc(t *testing.T) {
	list := NewList[section, row](sec("a"), sec("b"), sec("c"), sec("d"))

	removed := list.RemoveSectionsFunc(func(_ int, s section) bool {
		return s.id == "a" || s.id == "c"
	})

	if !reflect.DeepEqual(removed, []int{0, 2}) {
		t.Errorf("removed = %v, want pre-edit indexes [0 2]", removed)
	}
	if !reflect.DeepEqual(keysOf(list), []string{"b", "d"}) {
		t.Errorf("survivors = %v", keysOf(list))
	}
}

func TestInsertRows(t *testing.T) {
	list := NewList[section, row](sec("s", "a", "b"))

	positions, err := list.InsertRows([]row{{id: "x"}, {id: "y"}}, domain.Pos(0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Position{domain.Pos(0, 1), domain.Pos(0, 2)}
	if !reflect.DeepEqual(positions, want) {
		t.Errorf("positions = %v, want %v", positions, want)
	}
	s, _ := list.SectionAt(0)
	if !reflect.DeepEqual(rowIDs(s), []string{"a", "x", "y", "b"}) {
		t.Errorf("rows = %v", rowIDs(s))
	}

	// Inserting exactly at the row count appends.
	if _, err := list.InsertRows([]row{{id: "z"}}, domain.Pos(0, 4)); err != nil {
		t.Fatalf("append position should be valid: %v", err)
	}

	if _, err := list.InsertRows([]row{{id: "w"}}, domain.Pos(0, 6)); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange past the end, got %v", err)
	}
	if _, err := list.InsertRows([]row{{id: "w"}}, domain.Pos(1, 0)); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for bad section, got %v", err)
	}
}

func TestAppendRows(t *testing.T) {
	list := NewList[section, row](sec("s", "a"))

	positions, err := list.AppendRows([]row{{id: "b"}, {id: "c"}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Position{domain.Pos(0, 1), domain.Pos(0, 2)}
	if !reflect.DeepEqual(positions, want) {
		t.Errorf("positions = %v, want %v", positions, want)
	}

	if _, err := list.AppendRows([]row{{id: "d"}}, 3); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestReplaceRow(t *testing.T) {
	list := NewList[section, row](sec("s", "a", "b"))

	if err := list.ReplaceRow(row{id: "b", text: "edited"}, domain.Pos(0, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, _ := list.RowAt(domain.Pos(0, 1))
	if r.text != "edited" {
		t.Errorf("row = %+v", r)
	}
	if err := list.ReplaceRow(row{id: "z"}, domain.Pos(0, 2)); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestReplaceRowsFunc(t *testing.T) {
	list := NewList[section, row](sec("s1", "a", "b"), sec("s2", "c"))

	touched := list.ReplaceRowsFunc(func(p domain.Position, _ section, r row) (row, bool) {
		if r.id == "b" || r.id == "c" {
			r.text = "seen"
			return r, true
		}
		return row{}, false
	})

	want := []domain.Position{domain.Pos(0, 1), domain.Pos(1, 0)}
	if !reflect.DeepEqual(touched, want) {
		t.Errorf("touched = %v, want %v", touched, want)
	}
	r, _ := list.RowAt(domain.Pos(1, 0))
	if r.text != "seen" {
		t.Errorf("row = %+v", r)
	}
	r, _ = list.RowAt(domain.Pos(0, 0))
	if r.text != "" {
		t.Errorf("untouched row changed: %+v", r)
	}
}

func TestRemoveRow(t *testing.T) {
	list := NewList[section, row](sec("s", "a", "b", "c"))

	if err := list.RemoveRow(domain.Pos(0, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, _ := list.SectionAt(0)
	if !reflect.DeepEqual(rowIDs(s), []string{"a", "c"}) {
		t.Errorf("rows = %v", rowIDs(s))
	}
	if err := list.RemoveRow(domain.Pos(0, 2)); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestRemoveRowsBatch(t *testing.T) {
	list := NewList[section, row](sec("s1", "a", "b", "c"), sec("s2", "d", "e"))

	removed, err := list.RemoveRows([]domain.Position{
		domain.Pos(0, 2), domain.Pos(0, 0), domain.Pos(1, 1), domain.Pos(0, 2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Position{domain.Pos(0, 0), domain.Pos(0, 2), domain.Pos(1, 1)}
	if !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v in pre-edit coordinates", removed, want)
	}

	s1, _ := list.SectionAt(0)
	s2, _ := list.SectionAt(1)
	if !reflect.DeepEqual(rowIDs(s1), []string{"b"}) || !reflect.DeepEqual(rowIDs(s2), []string{"d"}) {
		t.Errorf("survivors = %v / %v", rowIDs(s1), rowIDs(s2))
	}
}

func TestRemoveRowsValidatesBeforeRemoving(t *testing.T) {
	list := NewList[section, row](sec("s", "a", "b"))

	_, err := list.RemoveRows([]domain.Position{domain.Pos(0, 0), domain.Pos(0, 7)})
	if !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	s, _ := list.SectionAt(0)
	if !reflect.DeepEqual(rowIDs(s), []string{"a", "b"}) {
		t.Error("failed batch removal must leave the collection untouched")
	}
}

func TestRemoveRowsFunc(t *testing.T) {
	list := NewList[section, row](sec("s1", "a", "keep"), sec("s2", "b", "keep"))

	removed := list.RemoveRowsFunc(func(_ domain.Position, _ section, r row) bool {
		return r.id != "keep"
	})

	want := []domain.Position{domain.Pos(0, 0), domain.Pos(1, 0)}
	if !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	s1, _ := list.SectionAt(0)
	if !reflect.DeepEqual(rowIDs(s1), []string{"keep"}) {
		t.Errorf("survivors = %v", rowIDs(s1))
	}
}

func TestMoveRow(t *testing.T) {
	t.Run("forward within section", func(t *testing.T) {
		list := NewList[section, row](sec("s", "a", "b", "c"))
		if err := list.MoveRow(domain.Pos(0, 0), domain.Pos(0, 2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s, _ := list.SectionAt(0)
		if !reflect.DeepEqual(rowIDs(s), []string{"b", "c", "a"}) {
			t.Errorf("rows = %v; destination resolves after removal", rowIDs(s))
		}
	})

	t.Run("backward within section", func(t *testing.T) {
		list := NewList[section, row](sec("s", "a", "b", "c"))
		if err := list.MoveRow(domain.Pos(0, 2), domain.Pos(0, 0)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s, _ := list.SectionAt(0)
		if !reflect.DeepEqual(rowIDs(s), []string{"c", "a", "b"}) {
			t.Errorf("rows = %v", rowIDs(s))
		}
	})

	t.Run("across sections", func(t *testing.T) {
		list := NewList[section, row](sec("s1", "a", "b"), sec("s2", "c"))
		if err := list.MoveRow(domain.Pos(0, 1), domain.Pos(1, 0)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s1, _ := list.SectionAt(0)
		s2, _ := list.SectionAt(1)
		if !reflect.DeepEqual(rowIDs(s1), []string{"a"}) || !reflect.DeepEqual(rowIDs(s2), []string{"b", "c"}) {
			t.Errorf("rows = %v / %v", rowIDs(s1), rowIDs(s2))
		}
	})

	t.Run("bad destination restores source", func(t *testing.T) {
		list := NewList[section, row](sec("s", "a", "b"))
		err := list.MoveRow(domain.Pos(0, 0), domain.Pos(0, 5))
		if !errors.Is(err, domain.ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
		s, _ := list.SectionAt(0)
		if !reflect.DeepEqual(rowIDs(s), []string{"a", "b"}) {
			t.Errorf("rows = %v; failed move must not lose the row", rowIDs(s))
		}
	})

	t.Run("bad source", func(t *testing.T) {
		list := NewList[section, row](sec("s", "a"))
		if err := list.MoveRow(domain.Pos(0, 3), domain.Pos(0, 0)); !errors.Is(err, domain.ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange, got %v", err)
		}
	})
}

func TestRowEditsDoNotWriteThroughCallerSlices(t *testing.T) {
	original := []row{{id: "x"}, {id: "y"}}
	list := NewList[section, row](section{id: "s", rows: original})

	if err := list.ReplaceRow(row{id: "x", text: "edited"}, domain.Pos(0, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := list.InsertRows([]row{{id: "z"}}, domain.Pos(0, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := list.RemoveRow(domain.Pos(0, 2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if original[0].text != "" || original[1].id != "y" {
		t.Errorf("caller slice was written through: %+v", original)
	}
}

func rowIDs(s section) []string {
	out := make([]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.id
	}
	return out
}
