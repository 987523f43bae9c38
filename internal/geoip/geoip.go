// Package geoip cross-checks dataset countries against a MaxMind database.
package geoip

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// ErrNotLoaded is returned by lookups on a closed database.
var ErrNotLoaded = errors.New("GeoIP database not loaded")

// Country is the answer to a lookup.
type Country struct {
	ISOCode string
	Name    string
}

// Lookuper resolves an address to its country.
type Lookuper interface {
	LookupCountry(ip net.IP) (Country, error)
}

// DB is a MaxMind country database.
type DB struct {
	mu     sync.RWMutex
	reader *geoip2.Reader
	path   string
}

// Open loads the database at path.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("GeoIP database not found at %s", path)
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}

	return &DB{reader: reader, path: path}, nil
}

// LookupCountry returns the country the database places ip in.
func (d *DB) LookupCountry(ip net.IP) (Country, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.reader == nil {
		return Country{}, ErrNotLoaded
	}

	record, err := d.reader.Country(ip)
	if err != nil {
		return Country{}, fmt.Errorf("lookup failed for %s: %w", ip, err)
	}

	return Country{
		ISOCode: record.Country.IsoCode,
		Name:    record.Country.Names["en"],
	}, nil
}

// Close releases the database.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.reader == nil {
		return nil
	}
	err := d.reader.Close()
	d.reader = nil
	return err
}

// Path returns the database location.
func (d *DB) Path() string {
	return d.path
}
