package tabular

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// parquetRow is the column layout of Parquet imports and exports. Genres are
// stored comma-separated, as in the spreadsheet formats.
type parquetRow struct {
	Title           string `parquet:"title"`
	Author          string `parquet:"author"`
	PublicationDate string `parquet:"publication_date,optional"`
	PageCount       string `parquet:"page_count,optional"`
	Genres          string `parquet:"genres,optional"`
}

func readParquet(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	// Column names use underscores; report them in header form so a file
	// without title or author fails the same header check as other formats.
	var header []string
	present := make(map[string]bool)
	for _, field := range pf.Schema().Fields() {
		name := strings.ToLower(strings.ReplaceAll(field.Name(), "_", " "))
		header = append(header, name)
		present[name] = true
	}
	if !present[ColumnTitle] || !present[ColumnAuthor] {
		return [][]string{header}, nil
	}

	reader := parquet.NewGenericReader[parquetRow](pf)
	defer reader.Close()

	table := [][]string{{ColumnTitle, ColumnAuthor, ColumnPublicationDate, ColumnPageCount, ColumnGenres}}
	batch := make([]parquetRow, 128)
	for {
		n, err := reader.Read(batch)
		for _, r := range batch[:n] {
			table = append(table, []string{r.Title, r.Author, r.PublicationDate, r.PageCount, r.Genres})
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return table, nil
}

// writeParquet writes data rows in ExportHeader order.
func writeParquet(path string, rows [][]string) error {
	out := make([]parquetRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, parquetRow{
			Title:           row[0],
			Author:          row[1],
			PublicationDate: row[2],
			PageCount:       row[3],
			Genres:          row[4],
		})
	}
	if err := parquet.WriteFile(path, out); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}
