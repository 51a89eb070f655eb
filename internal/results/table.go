package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Row is one Monte-Carlo trial.
type Row struct {
	// RunID identifies the trial across files.
	RunID string
	// Trial is the trial index.
	Trial int
	// Params are the sampled parameters, in Table.ParamNames order.
	Params []float64
	// Values are the bounds, in Table.ValueNames order. +Inf marks an
	// infeasible bound.
	Values []float64
}

// Table is a set of rows sharing parameter and value columns. It is not
// safe for concurrent use.
type Table struct {
	ParamNames []string
	ValueNames []string
	Rows       []Row
}

// NewTable returns an empty table with the given columns.
func NewTable(paramNames, valueNames []string) *Table {
	return &Table{
		ParamNames: append([]string(nil), paramNames...),
		ValueNames: append([]string(nil), valueNames...),
	}
}

// Append adds r after checking its shape.
func (t *Table) Append(r Row) error {
	if len(r.Params) != len(t.ParamNames) || len(r.Values) != len(t.ValueNames) {
		return fmt.Errorf("row %d has %d params and %d values, want %d and %d",
			r.Trial, len(r.Params), len(r.Values), len(t.ParamNames), len(t.ValueNames))
	}
	t.Rows = append(t.Rows, r)
	return nil
}

// SortByTrial orders the rows by trial index.
func (t *Table) SortByTrial() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Trial < t.Rows[j].Trial
	})
}

// Column returns the named value or parameter column.
func (t *Table) Column(name string) ([]float64, bool) {
	for i, n := range t.ValueNames {
		if n == name {
			out := make([]float64, len(t.Rows))
			for k, r := range t.Rows {
				out[k] = r.Values[i]
			}
			return out, true
		}
	}
	for i, n := range t.ParamNames {
		if n == name {
			out := make([]float64, len(t.Rows))
			for k, r := range t.Rows {
				out[k] = r.Params[i]
			}
			return out, true
		}
	}
	return nil, false
}

// Header returns the CSV header: run_id, trial, parameters, values.
func (t *Table) Header() []string {
	header := []string{"run_id", "trial"}
	header = append(header, t.ParamNames...)
	return append(header, t.ValueNames...)
}

// WriteCSV writes the header and every row to w. Floats use the shortest
// representation that round-trips; infeasible bounds render as +Inf.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	record := make([]string, 0, 2+len(t.ParamNames)+len(t.ValueNames))
	for _, r := range t.Rows {
		record = record[:0]
		record = append(record, r.RunID, strconv.Itoa(r.Trial))
		for _, v := range r.Params {
			record = append(record, formatFloat(v))
		}
		for _, v := range r.Values {
			record = append(record, formatFloat(v))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing trial %d: %w", r.Trial, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ColumnSummary aggregates one value column.
type ColumnSummary struct {
	Column string `json:"column"`
	// Infeasible counts rows whose bound was infeasible.
	Infeasible int                         `json:"infeasible"`
	Stats      map[AggregationType]float64 `json:"stats,omitempty"`
}

// Summarize aggregates every value column. Columns without finite values
// report only their infeasible count.
func (t *Table) Summarize(aggs []AggregationType) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(t.ValueNames))
	for _, name := range t.ValueNames {
		col, _ := t.Column(name)
		s := ColumnSummary{Column: name, Infeasible: len(col) - len(Finite(col))}
		for _, agg := range aggs {
			v, err := Aggregate(col, agg)
			if err != nil {
				continue
			}
			if s.Stats == nil {
				s.Stats = make(map[AggregationType]float64, len(aggs))
			}
			s.Stats[agg] = v
		}
		out = append(out, s)
	}
	return out
}
