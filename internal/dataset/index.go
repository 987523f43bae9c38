package dataset

import (
	"maps"
	"slices"
)

// Index groups dataset ranges by exact country name. Each country's bucket
// keeps ranges in the order their rows appeared.
type Index struct {
	buckets   map[string][]string
	firstSeen []string
	total     int
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{buckets: make(map[string][]string)}
}

// BuildIndex groups records in one pass.
func BuildIndex(records []Record) *Index {
	ix := NewIndex()
	for _, rec := range records {
		ix.Add(rec)
	}
	return ix
}

// Add appends rec's range to its country's bucket, creating it on first sight.
func (ix *Index) Add(rec Record) {
	bucket, ok := ix.buckets[rec.Country]
	if !ok {
		ix.firstSeen = append(ix.firstSeen, rec.Country)
	}
	ix.buckets[rec.Country] = append(bucket, rec.Range())
	ix.total++
}

// Countries returns the distinct country names, sorted.
func (ix *Index) Countries() []string {
	return slices.Sorted(maps.Keys(ix.buckets))
}

// FirstSeen returns the distinct country names in order of first appearance.
func (ix *Index) FirstSeen() []string {
	return slices.Clone(ix.firstSeen)
}

// Ranges returns a copy of country's ranges, or nil if it is unknown.
func (ix *Index) Ranges(country string) []string {
	return slices.Clone(ix.buckets[country])
}

// Len returns the number of distinct countries.
func (ix *Index) Len() int {
	return len(ix.buckets)
}

// RangeCount returns the number of ranges across all countries.
func (ix *Index) RangeCount() int {
	return ix.total
}
