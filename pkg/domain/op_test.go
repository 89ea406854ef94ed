package domain

import (
	"reflect"
	"testing"
)

func TestPositionCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want int
	}{
		{name: "equal", a: Pos(1, 2), b: Pos(1, 2), want: 0},
		{name: "earlier section", a: Pos(0, 9), b: Pos(1, 0), want: -1},
		{name: "later section", a: Pos(2, 0), b: Pos(1, 9), want: 1},
		{name: "same section earlier row", a: Pos(1, 1), b: Pos(1, 2), want: -1},
		{name: "same section later row", a: Pos(1, 3), b: Pos(1, 2), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPositionString(t *testing.T) {
	if got := Pos(3, 14).String(); got != "[3:14]" {
		t.Errorf("String() = %q", got)
	}
}

func TestOpString(t *testing.T) {
	from, to := Pos(0, 2), Pos(1, 0)
	tests := []struct {
		name string
		op   Op
		want string
	}{
		{
			name: "reload",
			op:   Op{Kind: OpReload},
			want: "reload",
		},
		{
			name: "sections",
			op:   Op{Kind: OpInsertSections, Sections: []int{1, 2}},
			want: "insert_sections [1 2]",
		},
		{
			name: "rows",
			op:   Op{Kind: OpRemoveRows, Positions: []Position{Pos(0, 1), Pos(0, 4)}},
			want: "remove_rows [0:1] [0:4]",
		},
		{
			name: "move",
			op:   Op{Kind: OpMoveRow, From: &from, To: &to},
			want: "move_row [0:2] -> [1:0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpStructural(t *testing.T) {
	structural := []OpKind{OpReload, OpInsertSections, OpRemoveSections, OpInsertRows, OpRemoveRows, OpMoveRow}
	for _, kind := range structural {
		if !(Op{Kind: kind}).Structural() {
			t.Errorf("%s should be structural", kind)
		}
	}
	for _, kind := range []OpKind{OpReplaceSections, OpReplaceRows} {
		if (Op{Kind: kind}).Structural() {
			t.Errorf("%s should not be structural", kind)
		}
	}
}

func TestScriptSummary(t *testing.T) {
	script := Script{
		{Kind: OpRemoveRows, Positions: []Position{Pos(0, 1)}},
		{Kind: OpInsertRows, Positions: []Position{Pos(0, 3)}},
		{Kind: OpRemoveRows, Positions: []Position{Pos(2, 0)}},
		{Kind: OpReplaceSections, Sections: []int{0}},
	}

	want := map[OpKind]int{OpRemoveRows: 2, OpInsertRows: 1, OpReplaceSections: 1}
	if got := script.Summary(); !reflect.DeepEqual(got, want) {
		t.Errorf("Summary() = %v, want %v", got, want)
	}
	if got := script.StructuralCount(); got != 3 {
		t.Errorf("StructuralCount() = %d, want 3", got)
	}
	if script.IsEmpty() {
		t.Error("IsEmpty() on a populated script")
	}

	var empty Script
	if empty.Summary() != nil {
		t.Error("Summary() of an empty script should be nil")
	}
	if !empty.IsEmpty() {
		t.Error("IsEmpty() on an empty script")
	}
}
