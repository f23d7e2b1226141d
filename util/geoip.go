package util

import (
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

// Location is a resolved IP geolocation attached to audit events.
type Location struct {
	City    string
	Country string
}

var (
	geoMu     sync.RWMutex
	geoReader *geoip2.Reader
	geoCache  *cache.Cache

	geoCacheHits   uint64
	geoCacheMisses uint64
)

// InitGeoIP opens a MaxMind City database and enables location enrichment of
// security events. An empty path falls back to GEOIP_DB_PATH; with neither set
// the call is a no-op and every lookup resolves empty.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}

	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open GeoIP database %s: %w", dbPath, err)
	}

	geoMu.Lock()
	defer geoMu.Unlock()
	if geoReader != nil {
		geoReader.Close()
	}
	geoReader = reader
	geoCache = cache.New(24*time.Hour, time.Hour)
	return nil
}

// CloseGeoIP releases the database handle. Safe to call when never initialized.
func CloseGeoIP() {
	geoMu.Lock()
	defer geoMu.Unlock()
	if geoReader != nil {
		geoReader.Close()
		geoReader = nil
	}
	geoCache = nil
}

// GetIPLocation resolves an IP address to a city/country pair. Loopback,
// private, unspecified, and unparseable addresses resolve empty, as does
// everything when no database is loaded. Lookups are cached for 24 hours.
func GetIPLocation(ip string) Location {
	geoMu.RLock()
	reader, lookupCache := geoReader, geoCache
	geoMu.RUnlock()
	if reader == nil || ip == "" {
		return Location{}
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return Location{}
	}

	if lookupCache != nil {
		if v, ok := lookupCache.Get(ip); ok {
			atomic.AddUint64(&geoCacheHits, 1)
			if loc, ok := v.(Location); ok {
				return loc
			}
		}
	}
	atomic.AddUint64(&geoCacheMisses, 1)

	record, err := reader.City(parsed)
	if err != nil {
		return Location{}
	}

	loc := Location{
		City:    record.City.Names["en"],
		Country: record.Country.Names["en"],
	}
	if lookupCache != nil {
		lookupCache.Set(ip, loc, cache.DefaultExpiration)
	}
	return loc
}

// GetGeoIPCacheMetrics reports lookup cache hits, misses, and current size.
func GetGeoIPCacheMetrics() (hits, misses uint64, size int) {
	geoMu.RLock()
	lookupCache := geoCache
	geoMu.RUnlock()
	if lookupCache != nil {
		size = lookupCache.ItemCount()
	}
	return atomic.LoadUint64(&geoCacheHits), atomic.LoadUint64(&geoCacheMisses), size
}
