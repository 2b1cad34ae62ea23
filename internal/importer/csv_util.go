package importer

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
)

// readHeader reads the first record and verifies the required template
// columns are all present. A missing or malformed header is a fatal
// condition; the import cannot proceed without the schema.
func readHeader(reader *csv.Reader, required []string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, &FatalError{Phase: PhaseHeader, Message: "CSV header could not be read", Err: err}
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &FatalError{
			Phase:   PhaseHeader,
			Message: fmt.Sprintf("CSV header does not match the template, missing columns: %s", strings.Join(missing, ", ")),
		}
	}
	return col, nil
}

// fieldFunc returns a by-name accessor for one CSV record.
func fieldFunc(col map[string]int, rec []string) func(string) string {
	return func(name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return rec[idx]
	}
}

func rowLocator(i int) string { return fmt.Sprintf("row %d", i) }
