package domain

import "fmt"

// Position addresses a single row as a (section index, row index) pair.
// A bare section index addresses a section on its own.
//
// Positions are transient: they are valid immediately after the edit that
// produced them and stop being meaningful after the next structural edit,
// because later edits shift them.
type Position struct {
	Section int `json:"section" yaml:"section"`
	Row     int `json:"row" yaml:"row"`
}

// Pos is shorthand for constructing a Position.
func Pos(section, row int) Position {
	return Position{Section: section, Row: row}
}

// Compare orders positions section-major, row-minor. It returns a negative
// number when p sorts before other, zero when equal, positive otherwise.
func (p Position) Compare(other Position) int {
	if p.Section != other.Section {
		return p.Section - other.Section
	}
	return p.Row - other.Row
}

func (p Position) String() string {
	return fmt.Sprintf("[%d:%d]", p.Section, p.Row)
}
