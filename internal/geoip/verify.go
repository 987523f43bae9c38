package geoip

import (
	"net"
	"strings"

	"grimm.is/georules/internal/dataset"
	"grimm.is/georules/internal/logging"
)

// Mismatch is a country whose first range the database places elsewhere.
type Mismatch struct {
	Country string
	Address string
	Found   Country
}

// Summary is the outcome of verifying an index.
type Summary struct {
	Checked    int
	Mismatches []Mismatch
	Errors     int
}

// Verifier looks up the first range start of every country. Disagreements
// are logged and counted; they never fail a run.
type Verifier struct {
	db     Lookuper
	logger *logging.Logger
}

// NewVerifier creates a Verifier over db.
func NewVerifier(db Lookuper, logger *logging.Logger) *Verifier {
	return &Verifier{
		db:     db,
		logger: logging.OrDefault(logger).WithComponent("geoip"),
	}
}

// Verify checks each country of ix in sorted order.
func (v *Verifier) Verify(ix *dataset.Index) Summary {
	var s Summary
	for _, country := range ix.Countries() {
		ranges := ix.Ranges(country)
		if len(ranges) == 0 {
			continue
		}
		start, _, _ := strings.Cut(ranges[0], "-")

		ip := net.ParseIP(start)
		if ip == nil {
			v.logger.Debug("Skipping unparsable address", "country", country, "address", start)
			s.Errors++
			continue
		}

		found, err := v.db.LookupCountry(ip)
		if err != nil {
			v.logger.Warn("GeoIP lookup failed", "country", country, "address", start, "error", err)
			s.Errors++
			continue
		}
		s.Checked++

		if !Matches(country, found) {
			v.logger.Warn("Dataset disagrees with GeoIP database",
				"country", country, "address", start, "geoip_iso", found.ISOCode, "geoip_name", found.Name)
			s.Mismatches = append(s.Mismatches, Mismatch{Country: country, Address: start, Found: found})
		}
	}
	return s
}

// Matches reports whether a dataset country name agrees with a lookup. A
// lookup with no country (unassigned space) never disagrees.
func Matches(country string, found Country) bool {
	if found.ISOCode == "" && found.Name == "" {
		return true
	}
	return strings.EqualFold(country, found.Name) || strings.EqualFold(country, found.ISOCode)
}
