package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"penomoran/internal/infrastructure/numerator"
)

// readEntries reads year,scope,dept,value rows. A first row starting with
// "year" is treated as a header; blank lines are skipped.
func readEntries(r io.Reader) ([]numerator.SeedEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var entries []numerator.SeedEntry
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "year") {
			continue
		}
		entry, err := parseEntry(rec[0], rec[1], rec[2], strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, errors.New("no counters in file")
	}
	return entries, nil
}
