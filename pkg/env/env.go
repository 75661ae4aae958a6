package env

import "os"

// Prefix mirrors the envconfig namespace so pre-config reads (the logger
// bootstraps before envconfig runs) honor the same variables.
const Prefix = "KERBSIDE_"

// Get returns the prefixed variable when set, then the bare name, then fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
