package export

import (
	"fmt"
	"strings"
)

// Format identifies a supported export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat resolves a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Table is tabular export content. Rows are positional and match Headers.
type Table struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
}

// Renderer encodes a table into bytes.
type Renderer interface {
	Render(table Table) ([]byte, error)
}

// Render encodes the table using the renderer registered for the format.
func Render(format Format, table Table) ([]byte, error) {
	var renderer Renderer
	switch format {
	case FormatCSV:
		renderer = NewCSVRenderer()
	case FormatPDF:
		renderer = NewPDFRenderer()
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	return renderer.Render(table)
}
