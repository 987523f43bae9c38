package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// minQuotedFields is the fewest quoted fields a row may carry.
const minQuotedFields = 4

// maxLineSize bounds a single dataset row.
const maxLineSize = 1024 * 1024

// Layout selects which quoted fields hold the range bounds and the country.
// Indices are zero-based over the quoted fields of a row; negative values
// count from the end (-1 is the last field).
type Layout struct {
	Start   int
	End     int
	Country int
}

var (
	// DefaultLayout reads start from field 1, end from field 3 and the
	// country from the second-to-last field.
	DefaultLayout = Layout{Start: 1, End: 3, Country: -2}

	// GeoIPCountryWhoisLayout matches MaxMind's legacy GeoIPCountryWhois.csv:
	// "start","end","start_num","end_num","cc","country".
	GeoIPCountryWhoisLayout = Layout{Start: 0, End: 1, Country: -1}
)

// LayoutFor maps a configured format name to its Layout.
func LayoutFor(format string) (Layout, error) {
	switch format {
	case "", "default":
		return DefaultLayout, nil
	case "geoip-country-whois":
		return GeoIPCountryWhoisLayout, nil
	}
	return Layout{}, fmt.Errorf("unknown dataset format %q", format)
}

// Record is one parsed dataset row.
type Record struct {
	Start   string
	End     string
	Country string
}

// Range returns the "start-end" form used by iptables' iprange match.
func (r Record) Range() string {
	return r.Start + "-" + r.End
}

// ParseLine splits one dataset row into a Record. Trailing whitespace,
// including the line terminator, is ignored.
func ParseLine(line string, layout Layout) (Record, error) {
	trimmed := strings.TrimRight(line, " \t\r\n")

	parts := strings.Split(trimmed, `"`)
	if len(parts)%2 == 0 {
		return Record{}, &ParseError{Line: trimmed, Reason: "unbalanced quotes"}
	}

	fields := make([]string, 0, len(parts)/2)
	for i := 1; i < len(parts); i += 2 {
		fields = append(fields, parts[i])
	}
	if len(fields) < minQuotedFields {
		return Record{}, &ParseError{
			Line:   trimmed,
			Reason: fmt.Sprintf("expected at least %d quoted fields, found %d", minQuotedFields, len(fields)),
		}
	}

	var rec Record
	for _, f := range []struct {
		name string
		idx  int
		dst  *string
	}{
		{"start address", layout.Start, &rec.Start},
		{"end address", layout.End, &rec.End},
		{"country name", layout.Country, &rec.Country},
	} {
		val, ok := field(fields, f.idx)
		if !ok {
			return Record{}, &ParseError{
				Line:   trimmed,
				Reason: fmt.Sprintf("%s field %d out of range (%d fields)", f.name, f.idx, len(fields)),
			}
		}
		if val == "" {
			return Record{}, &ParseError{Line: trimmed, Reason: "empty " + f.name}
		}
		*f.dst = val
	}

	return rec, nil
}

func field(fields []string, idx int) (string, bool) {
	if idx < 0 {
		idx += len(fields)
	}
	if idx < 0 || idx >= len(fields) {
		return "", false
	}
	return fields[idx], true
}

// ReadRecords parses every non-blank row of r. It stops at the first
// malformed row and returns its *ParseError with the line number set.
func ReadRecords(r io.Reader, layout Layout) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseLine(line, layout)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.LineNo = lineNo
			}
			return nil, err
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset after line %d: %w", lineNo, err)
	}
	return records, nil
}

// ReadFile parses the CSV at path on fs. A missing path or a directory
// yields a *MissingInputError.
func ReadFile(fs afero.Fs, path string, layout Layout) ([]Record, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to stat dataset: %w", err)
	}
	if info.IsDir() {
		return nil, &MissingInputError{Path: path, Err: fmt.Errorf("%s is a directory", path)}
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadRecords(f, layout)
}
