package productfile

import (
	"bytes"
	"encoding/csv"
	"strings"

	"eie-registry/internal/model"
)

// Failure is a row that could not be registered and why.
type Failure struct {
	Row    Row
	Reason string
}

// BuildReport renders failures as a CSV with the original columns followed
// by an error column, ready to be corrected and uploaded again.
func BuildReport(c model.Category, failures []Failure) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(append(Header(c), ColError)); err != nil {
		return nil, err
	}
	for _, f := range failures {
		if err := w.Write(append(f.Row.Record(c), f.Reason)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FailuresFromErrors turns validation errors into report lines, one per row.
func FailuresFromErrors(rows []Row, errs []RowError) []Failure {
	byRow := GroupByRow(errs)
	var out []Failure
	for _, r := range rows {
		rowErrs, ok := byRow[r.Line]
		if !ok {
			continue
		}
		msgs := make([]string, len(rowErrs))
		for i, e := range rowErrs {
			msgs[i] = e.Field + ": " + e.Message
		}
		out = append(out, Failure{Row: r, Reason: strings.Join(msgs, "; ")})
	}
	return out
}
