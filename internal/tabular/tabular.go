package tabular

import (
	"fmt"
	"path/filepath"
	"strings"

	"coverkeep/internal/metadata"
	"coverkeep/internal/services"
	"coverkeep/internal/textutil"
)

// Format is a supported tabular file format.
type Format string

const (
	XLSX    Format = "xlsx"
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

// Column headers. Import matches them case-insensitively.
const (
	ColumnTitle           = "title"
	ColumnAuthor          = "author"
	ColumnPublicationDate = "publication date"
	ColumnPageCount       = "page count"
	ColumnGenres          = "genres"
)

// ExportHeader is the header row written by Export.
var ExportHeader = []string{"Title", "Author", "publication date", "Page Count", "Genres"}

// ExportSheet names the worksheet written to .xlsx exports.
const ExportSheet = "Missing Metadata"

// FormatFromPath detects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return XLSX, nil
	case ".csv":
		return CSV, nil
	case ".parquet":
		return Parquet, nil
	default:
		return "", services.Wrap(services.ErrValidation, "tabular", "detect format",
			fmt.Sprintf("unsupported file format %q (supported: .xlsx, .csv, .parquet)", filepath.Ext(path)), nil)
	}
}

// Import reads every data row of the file at path.
func Import(path string) ([]metadata.ImportRow, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	var table [][]string
	switch format {
	case XLSX:
		table, err = readXLSX(path)
	case CSV:
		table, err = readCSV(path)
	case Parquet:
		table, err = readParquet(path)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "tabular", "read", path, err)
	}
	return rowsFromTable(table)
}

// Export writes one row per record under ExportHeader.
func Export(path string, records []metadata.Record) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	table := make([][]string, 0, len(records)+1)
	table = append(table, ExportHeader)
	for _, rec := range records {
		table = append(table, []string{
			rec.Title,
			rec.Author,
			rec.PublicationDate,
			rec.PageCount,
			strings.Join(rec.Genres, ", "),
		})
	}
	switch format {
	case XLSX:
		err = writeXLSX(path, table)
	case CSV:
		err = writeCSV(path, table)
	case Parquet:
		err = writeParquet(path, table[1:])
	}
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "tabular", "write", path, err)
	}
	return nil
}

// rowsFromTable maps a header row plus data rows onto import rows. Short rows
// read as empty cells.
func rowsFromTable(table [][]string) ([]metadata.ImportRow, error) {
	if len(table) == 0 {
		return nil, services.Wrap(services.ErrValidation, "tabular", "read header", "file has no header row", nil)
	}
	columns := make(map[string]int)
	for i, cell := range table[0] {
		name := strings.ToLower(strings.TrimSpace(cell))
		if _, seen := columns[name]; name != "" && !seen {
			columns[name] = i
		}
	}
	for _, required := range []string{ColumnTitle, ColumnAuthor} {
		if _, ok := columns[required]; !ok {
			return nil, services.Wrap(services.ErrValidation, "tabular", "read header",
				"file must contain 'title' and 'author' columns", nil)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	rows := make([]metadata.ImportRow, 0, len(table)-1)
	for _, row := range table[1:] {
		rows = append(rows, metadata.ImportRow{
			Title:           cell(row, ColumnTitle),
			Author:          cell(row, ColumnAuthor),
			PublicationDate: cell(row, ColumnPublicationDate),
			PageCount:       cell(row, ColumnPageCount),
			Genres:          textutil.SplitList(cell(row, ColumnGenres)),
		})
	}
	return rows, nil
}
