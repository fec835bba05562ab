package utils

import "os"

func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvDefault returns the value of key, or fallback when unset or empty.
func GetEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
