package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usaRow = `"x","1.0.0.0","x","1.0.0.255","x","United States","x"`

func TestParseLine_DefaultLayout(t *testing.T) {
	rec, err := ParseLine(usaRow, DefaultLayout)
	require.NoError(t, err)
	assert.Equal(t, Record{Start: "1.0.0.0", End: "1.0.0.255", Country: "United States"}, rec)
	assert.Equal(t, "1.0.0.0-1.0.0.255", rec.Range())
}

func TestParseLine_TrailingWhitespace(t *testing.T) {
	for _, suffix := range []string{"\n", "\r\n", "  \t", " \r\n"} {
		rec, err := ParseLine(usaRow+suffix, DefaultLayout)
		require.NoError(t, err, "suffix %q", suffix)
		assert.Equal(t, "United States", rec.Country)
	}
}

func TestParseLine_CountryWithComma(t *testing.T) {
	line := `"a","2.0.0.0","b","2.0.0.15","c","Korea, Republic of","d"`
	rec, err := ParseLine(line, DefaultLayout)
	require.NoError(t, err)
	assert.Equal(t, "Korea, Republic of", rec.Country)
}

func TestParseLine_GeoIPCountryWhois(t *testing.T) {
	line := `"1.0.0.0","1.0.0.255","16777216","16777471","AU","Australia"`
	rec, err := ParseLine(line, GeoIPCountryWhoisLayout)
	require.NoError(t, err)
	assert.Equal(t, Record{Start: "1.0.0.0", End: "1.0.0.255", Country: "Australia"}, rec)
}

func TestParseLine_Errors(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{"too few fields", `"only","three","fields"`, "expected at least 4"},
		{"unquoted", "1.0.0.0,1.0.0.255,US", "expected at least 4"},
		{"unbalanced", `"x","1.0.0.0","x","1.0.0.255","x","France`, "unbalanced quotes"},
		{"empty start", `"x","","x","1.0.0.255","France","x"`, "empty start address"},
		{"empty country", `"x","1.0.0.0","x","1.0.0.255","","x"`, "empty country name"},
		{"empty line", "", "expected at least 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line, DefaultLayout)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %v", err)
			assert.Contains(t, pe.Reason, tt.reason)
			assert.Zero(t, pe.LineNo)
		})
	}
}

func TestParseLine_LayoutOutOfRange(t *testing.T) {
	_, err := ParseLine(`"a","b","c","d"`, Layout{Start: 0, End: 9, Country: -1})
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "out of range")
}

func TestLayoutFor(t *testing.T) {
	l, err := LayoutFor("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLayout, l)

	l, err = LayoutFor("geoip-country-whois")
	require.NoError(t, err)
	assert.Equal(t, GeoIPCountryWhoisLayout, l)

	_, err = LayoutFor("ipv6")
	assert.Error(t, err)
}

func TestReadRecords(t *testing.T) {
	input := strings.Join([]string{
		usaRow,
		"",
		`"x","2.0.0.0","x","2.0.0.255","x","France","x"`,
		`"x","3.0.0.0","x","3.0.0.255","x","United States","x"`,
	}, "\r\n") + "\r\n"

	records, err := ReadRecords(strings.NewReader(input), DefaultLayout)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "France", records[1].Country)
	assert.Equal(t, "3.0.0.0", records[2].Start)
}

func TestReadRecords_ReportsLineNumber(t *testing.T) {
	input := usaRow + "\n" + "garbage\n" + usaRow + "\n"

	records, err := ReadRecords(strings.NewReader(input), DefaultLayout)
	assert.Nil(t, records)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.LineNo)
	assert.Equal(t, "garbage", pe.Line)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadRecords_Empty(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(""), DefaultLayout)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/geo.csv", []byte(usaRow+"\n"), 0644))

	records, err := ReadFile(fs, "/data/geo.csv", DefaultLayout)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReadFile_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := ReadFile(fs, "/data/nope.csv", DefaultLayout)
	var me *MissingInputError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "/data/nope.csv", me.Path)

	require.NoError(t, fs.MkdirAll("/data/dir.csv", 0755))
	_, err = ReadFile(fs, "/data/dir.csv", DefaultLayout)
	require.ErrorAs(t, err, &me)
}
