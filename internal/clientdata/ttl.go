package clientdata

import "time"

// TTL constants for the warm cache. Deliberately longer than the in-memory
// TTLs in front of the providers: a warm entry only matters once the
// in-memory entry has expired AND the provider is failing.
const (
	// TTLWarmCountry - directory facts are near-static
	TTLWarmCountry = 7 * 24 * time.Hour
	// TTLWarmSeries - indicator values get revised
	TTLWarmSeries = 48 * time.Hour
)
