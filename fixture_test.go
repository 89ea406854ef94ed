package espalier

// Minimal section/row types used across the package tests. Rows carry a bit
// of content besides the key so content-sync behavior is observable.

type row struct {
	id   string
	text string
}

func (r row) Key() string { return r.id }

type section struct {
	id    string
	title string
	rows  []row
}

func (s section) Key() string { return s.id }

func (s section) Rows() []row { return s.rows }

func (s section) WithRows(rows []row) section {
	s.rows = rows
	return s
}

// sec builds a section whose rows carry the given keys and empty content.
func sec(id string, rowIDs ...string) section {
	rows := make([]row, len(rowIDs))
	for i, rid := range rowIDs {
		rows[i] = row{id: rid}
	}
	return section{id: id, rows: rows}
}

func newFixture(sections ...section) *KeyedList[section, row, string] {
	return NewKeyedList[section, row, string](sections...)
}

func rowKeysAt(l *KeyedList[section, row, string], index int) []string {
	keys, err := l.RowKeys(index)
	if err != nil {
		return nil
	}
	return keys
}
