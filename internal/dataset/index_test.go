package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rec(start, end, country string) Record {
	return Record{Start: start, End: end, Country: country}
}

func TestBuildIndex_GroupsInRowOrder(t *testing.T) {
	ix := BuildIndex([]Record{
		rec("1.0.0.0", "1.0.0.255", "United States"),
		rec("2.0.0.0", "2.0.0.255", "France"),
		rec("3.0.0.0", "3.0.0.255", "United States"),
	})

	assert.Equal(t, []string{"France", "United States"}, ix.Countries())
	assert.Equal(t, []string{"1.0.0.0-1.0.0.255", "3.0.0.0-3.0.0.255"}, ix.Ranges("United States"))
	assert.Equal(t, []string{"2.0.0.0-2.0.0.255"}, ix.Ranges("France"))
	assert.Equal(t, []string{"United States", "France"}, ix.FirstSeen())
	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, 3, ix.RangeCount())
}

func TestBuildIndex_ExactMatchOnly(t *testing.T) {
	ix := BuildIndex([]Record{
		rec("1.0.0.0", "1.0.0.1", "Guinea"),
		rec("2.0.0.0", "2.0.0.1", "Papua New Guinea"),
		rec("3.0.0.0", "3.0.0.1", "Equatorial Guinea"),
		rec("4.0.0.0", "4.0.0.1", "Guinea"),
	})

	assert.Equal(t, []string{"1.0.0.0-1.0.0.1", "4.0.0.0-4.0.0.1"}, ix.Ranges("Guinea"))
	assert.Len(t, ix.Ranges("Papua New Guinea"), 1)
	assert.Len(t, ix.Ranges("Equatorial Guinea"), 1)
}

func TestBuildIndex_CountConservation(t *testing.T) {
	countries := []string{"A", "B", "C", "A", "B", "A", "D"}
	var records []Record
	for i, c := range countries {
		records = append(records, rec(string(rune('a'+i)), "z", c))
	}

	ix := BuildIndex(records)

	total := 0
	for _, c := range ix.Countries() {
		total += len(ix.Ranges(c))
	}
	assert.Equal(t, len(records), total)
	assert.Equal(t, len(records), ix.RangeCount())
	assert.Equal(t, []string{"a-z", "d-z", "f-z"}, ix.Ranges("A"))
}

func TestBuildIndex_Empty(t *testing.T) {
	ix := BuildIndex(nil)
	assert.Zero(t, ix.Len())
	assert.Empty(t, ix.Countries())
	assert.Nil(t, ix.Ranges("France"))
}

func TestIndex_RangesIsACopy(t *testing.T) {
	ix := BuildIndex([]Record{rec("1.0.0.0", "1.0.0.1", "France")})
	r := ix.Ranges("France")
	r[0] = "mutated"
	assert.Equal(t, "1.0.0.0-1.0.0.1", ix.Ranges("France")[0])
}
