package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV parses a portfolio catalog from CSV with a "Techstack,Links"
// header. Rows with a blank techstack or link are skipped.
func ReadCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(header[0], "Techstack") || !strings.EqualFold(header[1], "Links") {
		return nil, fmt.Errorf("unexpected header %v, want Techstack,Links", header)
	}

	var entries []Entry
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		descriptor := strings.TrimSpace(row[0])
		link := strings.TrimSpace(row[1])
		if descriptor == "" || link == "" {
			continue
		}
		entries = append(entries, Entry{Descriptor: descriptor, Link: link})
	}
	return entries, nil
}

// ReadCSVFile reads a portfolio catalog from a file on disk.
func ReadCSVFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
