// Package dataset reads per-country IPv4 range datasets.
//
// # Overview
//
// A dataset row is a line of double-quoted fields. The start address, the
// end address and the country name are picked out by position:
//
//	"<ignored>","<start_ip>","<ignored>","<end_ip>","<ignored>",...,"<country_name>","<ignored>"
//
// Rows are grouped into an [Index] keyed by the exact country name, with each
// country's ranges kept in the order they appeared in the file.
//
// # Acquisition
//
// [Fetcher] downloads the compressed dataset into a cache directory and
// [Extractor] unpacks the CSV member from it. Both are optional: a local CSV
// can be handed straight to [ReadFile].
package dataset
