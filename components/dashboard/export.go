package dashboard

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/ettle/strcase"
	"github.com/gocarina/gocsv"
	"github.com/go-pdf/fpdf"
)

// ErrNoColumns is returned when an export is requested without columns.
var ErrNoColumns = errors.New("dashboard: export requires at least one column")

// Column maps a record field onto an exported column.
type Column struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Header returns the label, falling back to the capitalized key.
func (c Column) Header() string {
	if c.Label != "" {
		return c.Label
	}
	return strcase.ToPascal(c.Key)
}

// Columns builds columns whose labels are the capitalized keys.
func Columns(keys ...string) []Column {
	out := make([]Column, 0, len(keys))
	for _, key := range keys {
		out = append(out, Column{Key: key, Label: strcase.ToPascal(key)})
	}
	return out
}

// RGB is a header fill color.
type RGB struct {
	R int `yaml:"r" json:"r"`
	G int `yaml:"g" json:"g"`
	B int `yaml:"b" json:"b"`
}

// DocumentOptions controls the PDF layout.
type DocumentOptions struct {
	Title       string
	HeaderColor RGB
	FontSize    float64
}

const (
	defaultDocumentFontSize = 8
	documentTitleX          = 14
	documentTitleY          = 15
	documentTableY          = 20
)

// FormatCell renders a field value the way exports and terminal tables show it.
func FormatCell(value any) string {
	return stringValueOf(value)
}

func rowCells[T Record](row T, columns []Column) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		if value, ok := row.Field(col.Key); ok {
			cells[i] = FormatCell(value)
		}
	}
	return cells
}

func headerCells(columns []Column) []string {
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Header()
	}
	return header
}

// ToDelimitedText writes rows as comma-separated text: one header line, then one line per
// row in the order given. Fields are quoted when they contain commas, quotes, or newlines.
func ToDelimitedText[T Record](rows []T, columns []Column) (string, error) {
	if len(columns) == 0 {
		return "", ErrNoColumns
	}
	var buf bytes.Buffer
	w := gocsv.NewSafeCSVWriter(csv.NewWriter(&buf))
	if err := w.Write(headerCells(columns)); err != nil {
		return "", fmt.Errorf("dashboard: write csv header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(rowCells(row, columns)); err != nil {
			return "", fmt.Errorf("dashboard: write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("dashboard: flush csv: %w", err)
	}
	return buf.String(), nil
}

// ParseDelimitedText reads text produced by ToDelimitedText back into header-keyed maps.
func ParseDelimitedText(text string) ([]map[string]string, error) {
	maps, err := gocsv.CSVToMaps(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse csv: %w", err)
	}
	return maps, nil
}

// ToDocument renders rows as a paginated PDF table: a title line, a colored header band,
// and one body line per row. The header is repeated on every page.
func ToDocument[T Record](rows []T, columns []Column, opts DocumentOptions) ([]byte, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	fontSize := opts.FontSize
	if fontSize <= 0 {
		fontSize = defaultDocumentFontSize
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("go-insights", true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(documentTitleX, documentTitleY, tr(opts.Title))

	pageWidth, pageHeight := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	if bottom <= 0 {
		bottom = 10
	}
	colWidth := (pageWidth - left - right) / float64(len(columns))
	lineHeight := fontSize * 0.6

	header := headerCells(columns)
	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", fontSize)
		pdf.SetFillColor(opts.HeaderColor.R, opts.HeaderColor.G, opts.HeaderColor.B)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(220, 220, 220)
		for _, label := range header {
			pdf.CellFormat(colWidth, lineHeight, tr(label), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetY(documentTableY)
	drawHeader()
	for _, row := range rows {
		if pdf.GetY()+lineHeight > pageHeight-bottom {
			pdf.AddPage()
			drawHeader()
		}
		for _, cell := range rowCells(row, columns) {
			pdf.CellFormat(colWidth, lineHeight, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("dashboard: render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("dashboard: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
