package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"coverkeep/internal/fileutil"
)

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func writeCSV(path string, table [][]string) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(table); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
