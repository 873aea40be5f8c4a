// Package aggregate merges weather, solar geometry and per-scenario
// simulation results into one wide, time-indexed table.
package aggregate

import (
	"strings"

	"github.com/chrissnell/pvforecast/internal/types"
)

// TotalACField is the field name of the per-scenario system total.
const TotalACField = "ALL_AC_POWER"

// Key identifies one output column. Empty parts are omitted when the key is
// flattened to a column name.
type Key struct {
	ArrayID  string
	Field    string
	Subfield string
	Scenario types.Scenario
}

// Name flattens the key to {array}_{field}_{subfield}_{scenario}.
func (k Key) Name() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{k.ArrayID, k.Field, k.Subfield, string(k.Scenario)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}

func (k Key) String() string { return k.Name() }

// Table is the aggregated output: one row per timestamp of Index and an
// ordered set of columns.
type Table struct {
	Index   types.Index
	keys    []Key
	columns map[Key][]float64
	names   map[string]Key
}

func newTable(idx types.Index) *Table {
	return &Table{
		Index:   idx,
		columns: make(map[Key][]float64),
		names:   make(map[string]Key),
	}
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return len(t.Index) }

// Keys returns the column keys in output order.
func (t *Table) Keys() []Key {
	out := make([]Key, len(t.keys))
	copy(out, t.keys)
	return out
}

// Names returns the flattened column names in output order.
func (t *Table) Names() []string {
	out := make([]string, len(t.keys))
	for i, k := range t.keys {
		out[i] = k.Name()
	}
	return out
}

// Column returns the values stored under k.
func (t *Table) Column(k Key) ([]float64, bool) {
	v, ok := t.columns[k]
	return v, ok
}

// ColumnByName returns the values stored under a flattened column name.
func (t *Table) ColumnByName(name string) ([]float64, bool) {
	k, ok := t.names[name]
	if !ok {
		return nil, false
	}
	return t.Column(k)
}
