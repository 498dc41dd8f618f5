package source

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/blockmd/internal/memstore"
)

// CSVImporter turns a CSV file into one table; the first record is the
// header row.
type CSVImporter struct{}

func (p *CSVImporter) Import(r io.Reader, filename string) (*Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := newTree(baseTitle(filename))
	if len(records) == 0 {
		return tree, nil
	}

	width := len(records[0])
	table := tree.Add(tree.RootID, memstore.Table(width, true))
	for _, rec := range records {
		// Ragged rows are padded or cut to the header width.
		row := make([]string, width)
		copy(row, rec)
		tree.Add(table, memstore.TableRow(row...))
	}
	return tree, nil
}
