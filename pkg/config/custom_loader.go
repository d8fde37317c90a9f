package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from the given .env files. Files are
// applied in order and later files override earlier ones, which also means
// they override variables already present in the process environment.
// With no arguments it loads the default .env file.
//
// Call it before Load when configuration should come from a non-default
// location:
//
//	if err := config.LoadEnv("configs/.env.local"); err != nil {
//		// Handle error
//	}
//	var cfg DatabaseConfig
//	err := config.Load(&cfg)
func LoadEnv(paths ...string) error {
	// Mark the default .env as handled so Load does not apply it on top
	// of an explicitly requested file set.
	defaultEnvLoaded.Do(func() {})

	if err := godotenv.Overload(paths...); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(err)
	}
}

// ResetCache drops all cached configuration values so the next Load parses
// the environment again. Intended for tests that mutate the environment
// between loads.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.values = make(map[string]any)
	globalCache.onces = make(map[string]*sync.Once)
}

// ForceReloadConfig parses the environment into v ignoring any cached value
// for its type, then refreshes the cache with the result.
func ForceReloadConfig[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	typeName := getTypeName[T]()

	globalCache.mu.Lock()
	globalCache.values[typeName] = *v
	globalCache.onces[typeName] = new(sync.Once)
	globalCache.mu.Unlock()

	return nil
}
