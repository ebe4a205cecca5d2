// Package ingest implements the record loader (component F): parsing
// the external CSV format into spatial.Record values ready for
// Index.Add / Index.AddBatch.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/internal/spatial"
	"github.com/vjayram/uask/pkg/utils"
)

// expectedColumns are the CSV header names, in the order the external
// loader produces them (spec §6).
var expectedColumns = []string{"ObjectID", "Latitude", "Longitude", "Keywords", "Weights", "FullText"}

// LoadCSV reads a CSV stream with header columns
// ObjectID, Latitude, Longitude, Keywords, Weights, FullText and returns
// the parsed records. Keywords and Weights are Python-list-literal
// strings (e.g. "['voice', 'back']"); the Weights column must be present
// in the header but its values are not read — scoring counts keyword
// membership only (spec §4.C), never weight.
// Malformed rows are logged via logger.Warnf and skipped, not fatal,
// matching the ingest error policy (spec §7: "ingest errors are logged
// and skipped"). A nil logger falls back to pkg/utils's default.
func LoadCSV(r io.Reader, logger *utils.Logger) ([]spatial.Record, error) {
	if logger == nil {
		logger = utils.Default()
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []spatial.Record
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read row %d: %w", rowNum, err)
		}
		rowNum++

		rec, reason, ok := parseRow(row, cols)
		if !ok {
			metrics.IngestRowsSkipped.WithLabelValues(reason).Inc()
			logger.WithField("row", rowNum).Warnf("skipping malformed CSV row: %s", reason)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, want := range expectedColumns {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("ingest: missing required column %q", want)
		}
	}
	return idx, nil
}

// parseRow converts one CSV row into a Record. A row is skipped (ok =
// false, with a reason for the caller to log and count) if its id or
// coordinates don't parse — the dataset's own columns, not
// caller-controlled input, so a malformed row means a corrupt upstream
// export rather than an attack to validate against.
func parseRow(row []string, cols map[string]int) (spatial.Record, string, bool) {
	id, err := strconv.ParseInt(field(row, cols["ObjectID"]), 10, 64)
	if err != nil {
		return spatial.Record{}, "non-numeric ObjectID", false
	}
	lat, err := strconv.ParseFloat(field(row, cols["Latitude"]), 64)
	if err != nil {
		return spatial.Record{}, "non-numeric Latitude", false
	}
	lon, err := strconv.ParseFloat(field(row, cols["Longitude"]), 64)
	if err != nil {
		return spatial.Record{}, "non-numeric Longitude", false
	}

	keywords := parseListLiteral(field(row, cols["Keywords"]))
	fullText := field(row, cols["FullText"])

	return spatial.Record{
		ID:       id,
		Location: spatial.Point{Lat: lat, Lon: lon},
		Keywords: keywords,
		FullText: fullText,
	}, "", true
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseListLiteral turns a Python-style list-literal string, e.g.
// "['voice', 'back']" or `["voice","back"]`, into a slice of bare
// tokens. An empty literal yields an empty (not nil) slice; text without
// brackets or quotes is split on commas the same way, not rejected.
func parseListLiteral(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `'"`)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
