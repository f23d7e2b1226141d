package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitGeoIP_EmptyPathIsNoOp(t *testing.T) {
	t.Setenv("GEOIP_DB_PATH", "")

	err := InitGeoIP("")

	assert.NoError(t, err)
	assert.Equal(t, Location{}, GetIPLocation("8.8.8.8"))
}

func TestInitGeoIP_NonExistentFile(t *testing.T) {
	err := InitGeoIP("/nonexistent/path/to/GeoLite2-City.mmdb")
	assert.Error(t, err)
}

func TestGetIPLocation_NoDatabaseLoaded(t *testing.T) {
	CloseGeoIP()
	assert.Equal(t, Location{}, GetIPLocation("8.8.8.8"))
}

func TestGetIPLocation_SkipsNonRoutableAddresses(t *testing.T) {
	// Even with a database loaded these must never hit the reader, so the
	// check is observable without one: they resolve empty either way.
	for _, ip := range []string{
		"",
		"not-an-ip",
		"127.0.0.1",
		"::1",
		"10.0.0.1",
		"172.16.0.1",
		"192.168.1.1",
		"::",
		"0.0.0.0",
	} {
		assert.Equal(t, Location{}, GetIPLocation(ip), "ip %q", ip)
	}
}

func TestCloseGeoIP_SafeWhenNeverInitialized(t *testing.T) {
	CloseGeoIP()
	CloseGeoIP()

	_, _, size := GetGeoIPCacheMetrics()
	assert.Equal(t, 0, size)
}
