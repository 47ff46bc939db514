package productfile

import (
	"fmt"
	"strings"

	"eie-registry/internal/model"
	"eie-registry/pkg/validator"
)

// RowError is a problem with one field of one row.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("riga %d, %s: %s", e.Row, e.Field, e.Message)
}

type rowInput struct {
	EprelCode   string `validate:"omitempty,digits,max=20"`
	GtinCode    string `validate:"required,gtin"`
	ProductCode string `validate:"required,max=100"`
	Country     string `validate:"required,len=2,alpha"`
	Brand       string `validate:"max=100"`
	Model       string `validate:"max=100"`
}

var fieldColumns = map[string]string{
	"EprelCode":   ColEprel,
	"GtinCode":    ColGtin,
	"ProductCode": ColProduct,
	"Country":     ColCountry,
	"Brand":       ColBrand,
	"Model":       ColModel,
}

var tagMessages = map[string]string{
	"required": "campo obbligatorio",
	"gtin":     "codice GTIN non valido",
	"digits":   "deve contenere solo cifre",
	"len":      "lunghezza non valida",
	"alpha":    "deve contenere solo lettere",
	"max":      "valore troppo lungo",
}

// ValidateRows checks every field of every row plus the rules that span rows
// (duplicate GTINs, category consistency). It returns all problems found.
func ValidateRows(rows []Row, c model.Category) []RowError {
	var out []RowError
	seen := make(map[string]int, len(rows))

	for _, r := range rows {
		out = append(out, validateRow(r, c)...)

		if r.GtinCode != "" {
			if first, dup := seen[r.GtinCode]; dup {
				out = append(out, RowError{
					Row:     r.Line,
					Field:   ColGtin,
					Message: fmt.Sprintf("codice GTIN duplicato (già presente alla riga %d)", first),
				})
			} else {
				seen[r.GtinCode] = r.Line
			}
		}
	}
	return out
}

func validateRow(r Row, c model.Category) []RowError {
	var out []RowError
	in := rowInput{
		EprelCode:   r.EprelCode,
		GtinCode:    r.GtinCode,
		ProductCode: r.ProductCode,
		Country:     r.Country,
		Brand:       r.Brand,
		Model:       r.Model,
	}
	for _, e := range validator.ValidateStruct(&in) {
		field := e.FailedField[strings.LastIndex(e.FailedField, ".")+1:]
		msg, ok := tagMessages[e.Tag]
		if !ok {
			msg = "valore non valido"
		}
		out = append(out, RowError{Row: r.Line, Field: fieldColumns[field], Message: msg})
	}

	if c.HasEPREL() && r.EprelCode == "" {
		out = append(out, RowError{Row: r.Line, Field: ColEprel, Message: tagMessages["required"]})
	}
	if !c.HasEPREL() {
		if r.Brand == "" {
			out = append(out, RowError{Row: r.Line, Field: ColBrand, Message: tagMessages["required"]})
		}
		if r.Model == "" {
			out = append(out, RowError{Row: r.Line, Field: ColModel, Message: tagMessages["required"]})
		}
	}
	if r.Category != string(c) {
		out = append(out, RowError{
			Row:     r.Line,
			Field:   ColCategory,
			Message: fmt.Sprintf("categoria %q diversa da quella selezionata (%s)", r.Category, c),
		})
	}
	return out
}

// GroupByRow indexes errors by row number.
func GroupByRow(errs []RowError) map[int][]RowError {
	out := make(map[int][]RowError)
	for _, e := range errs {
		out[e.Row] = append(out[e.Row], e)
	}
	return out
}
