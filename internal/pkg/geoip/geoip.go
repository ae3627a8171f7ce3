// Package geoip wraps an optional GeoLite2 City database.
package geoip

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// ErrNotFound is returned when the database has no usable entry for an address.
var ErrNotFound = errors.New("geoip: address not found")

// Location is the subset of a City record the scanner uses.
type Location struct {
	City        string
	Region      string
	Country     string
	CountryCode string
}

// DB is a reloadable GeoLite2 reader. It is safe for concurrent use.
type DB struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
	reader *geoip2.Reader
}

// Open opens the database at path. It returns nil, without error, when the
// path is empty or the file does not exist, since GeoIP lookups are optional.
func Open(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if path == "" {
		logger.Debug("GeoIP database path not configured - GeoIP lookups disabled")
		return nil, nil
	}

	reader, err := openReader(path, logger)
	if err != nil || reader == nil {
		return nil, err
	}
	return &DB{path: path, logger: logger, reader: reader}, nil
}

func openReader(path string, logger *slog.Logger) (*geoip2.Reader, error) {
	if absPath, err := filepath.Abs(path); err == nil {
		logger.Debug("GeoIP database absolute path", slog.String("abs_path", absPath))
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		logger.Info("GeoLite2 database not found - GeoIP lookups disabled",
			slog.String("path", path),
			slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat geoip database: %w", err)
	}

	logger.Debug("GeoIP database file details",
		slog.String("path", path),
		slog.Int64("size_bytes", fileInfo.Size()),
		slog.Time("mod_time", fileInfo.ModTime()))

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}

	logger.Info("GeoLite2 database initialized",
		slog.String("path", path),
		slog.String("db_type", reader.Metadata().DatabaseType))
	return reader, nil
}

// Lookup returns the location of ip. Entries without a country are
// reported as ErrNotFound.
func (db *DB) Lookup(ip net.IP) (Location, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.reader == nil {
		return Location{}, ErrNotFound
	}
	record, err := db.reader.City(ip)
	if err != nil {
		return Location{}, fmt.Errorf("geoip lookup %s: %w", ip, err)
	}
	if record.Country.IsoCode == "" {
		return Location{}, ErrNotFound
	}

	loc := Location{
		City:        record.City.Names["en"],
		Country:     record.Country.Names["en"],
		CountryCode: record.Country.IsoCode,
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	return loc, nil
}

// Reload reopens the database from disk, for use after a new file has been
// downloaded. The previous reader stays in place if the reopen fails.
func (db *DB) Reload() error {
	reader, err := openReader(db.path, db.logger)
	if err != nil {
		return err
	}
	if reader == nil {
		return fmt.Errorf("geoip database %s disappeared", db.path)
	}

	db.mu.Lock()
	old := db.reader
	db.reader = reader
	db.mu.Unlock()

	if old != nil {
		old.Close()
	}
	db.logger.Info("GeoLite2 database reloaded")
	return nil
}

// Close releases the underlying reader.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.reader == nil {
		return nil
	}
	err := db.reader.Close()
	db.reader = nil
	return err
}
