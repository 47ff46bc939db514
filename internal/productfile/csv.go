// Package productfile reads and checks the CSV files producers upload, and
// writes the error report returned for rows that could not be registered.
package productfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"eie-registry/internal/model"
)

var (
	ErrInvalidFile  = errors.New("invalid product file")
	ErrEmptyFile    = fmt.Errorf("%w: file has no product rows", ErrInvalidFile)
	ErrHeader       = fmt.Errorf("%w: unexpected header", ErrInvalidFile)
	ErrTooManyRows  = fmt.Errorf("%w: too many rows", ErrInvalidFile)
	ErrFileTooLarge = fmt.Errorf("%w: file too large", ErrInvalidFile)
	ErrNotCSV       = fmt.Errorf("%w: only .csv files are accepted", ErrInvalidFile)
	ErrEncoding     = fmt.Errorf("%w: file must be UTF-8 encoded", ErrInvalidFile)
)

const (
	ColEprel    = "Codice EPREL"
	ColGtin     = "Codice GTIN/EAN"
	ColProduct  = "Codice prodotto"
	ColCategory = "Categoria"
	ColCountry  = "Paese di Produzione"
	ColBrand    = "Marca"
	ColModel    = "Modello"
	ColError    = "Errore"
)

var (
	eprelHeader = []string{ColEprel, ColGtin, ColProduct, ColCategory, ColCountry}
	hobsHeader  = []string{ColGtin, ColProduct, ColCategory, ColCountry, ColBrand, ColModel}
)

// Header returns the expected column order for a category.
func Header(c model.Category) []string {
	if c.HasEPREL() {
		return append([]string(nil), eprelHeader...)
	}
	return append([]string(nil), hobsHeader...)
}

// Row is one product line of an uploaded file. Line is 1-based and counts
// the header, so it matches what a spreadsheet shows.
type Row struct {
	Line        int    `json:"line"`
	EprelCode   string `json:"eprel_code,omitempty"`
	GtinCode    string `json:"gtin_code"`
	ProductCode string `json:"product_code"`
	Category    string `json:"category"`
	Country     string `json:"country"`
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
}

// Record renders the row back in the column order of its category.
func (r Row) Record(c model.Category) []string {
	if c.HasEPREL() {
		return []string{r.EprelCode, r.GtinCode, r.ProductCode, r.Category, r.Country}
	}
	return []string{r.GtinCode, r.ProductCode, r.Category, r.Country, r.Brand, r.Model}
}

// Parse reads a product file for category c. Structural problems (header,
// size, encoding) are returned as an error; field problems are left to
// ValidateRows. A maxRows of zero disables the row limit.
func Parse(data []byte, c model.Category, maxRows int) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(data) {
		return nil, ErrEncoding
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectSeparator(data)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	want := Header(c)
	if !headerMatches(header, want) {
		return nil, fmt.Errorf("%w: expected %q", ErrHeader, strings.Join(want, ","))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
		}
		if blank(record) {
			continue
		}
		if maxRows > 0 && len(rows) == maxRows {
			return nil, fmt.Errorf("%w: at most %d rows are accepted", ErrTooManyRows, maxRows)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, toRow(record, line, c))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func toRow(record []string, line int, c model.Category) Row {
	get := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	if c.HasEPREL() {
		return Row{
			Line:        line,
			EprelCode:   get(0),
			GtinCode:    get(1),
			ProductCode: get(2),
			Category:    strings.ToUpper(get(3)),
			Country:     strings.ToUpper(get(4)),
		}
	}
	return Row{
		Line:        line,
		GtinCode:    get(0),
		ProductCode: get(1),
		Category:    strings.ToUpper(get(2)),
		Country:     strings.ToUpper(get(3)),
		Brand:       get(4),
		Model:       get(5),
	}
}

// detectSeparator accepts the semicolon-separated export Excel produces with
// an Italian locale.
func detectSeparator(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

func headerMatches(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if !strings.EqualFold(strings.TrimSpace(got[i]), want[i]) {
			return false
		}
	}
	return true
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
