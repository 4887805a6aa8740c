package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"Taper/internal/i18n"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

type Config struct {
	Addr    string
	TLSCert string
	TLSKey  string
	// TokenKey signs session cookies. Empty disables accounts and history.
	TokenKey       []byte
	DatabaseURL    string
	RateLimit      rate.Limit
	RateBurst      int
	DefaultLocale  i18n.Locale
	MeshResolution int
}

// TLS reports whether both certificate and key are configured.
func (c Config) TLS() bool { return c.TLSCert != "" && c.TLSKey != "" }

// Load reads .env when present, then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	c := Config{
		Addr:          getenv("ADDR", ":8080"),
		TLSCert:       os.Getenv("TLS_CERT"),
		TLSKey:        os.Getenv("TLS_KEY"),
		TokenKey:      []byte(os.Getenv("TOKEN_KEY")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DefaultLocale: i18n.Locale(getenv("DEFAULT_LOCALE", string(i18n.Persian))),
	}
	limit, err := strconv.ParseFloat(getenv("RATE_LIMIT", "1"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	c.RateLimit = rate.Limit(limit)
	if c.RateBurst, err = strconv.Atoi(getenv("RATE_BURST", "3")); err != nil {
		return Config{}, fmt.Errorf("RATE_BURST: %w", err)
	}
	if c.MeshResolution, err = strconv.Atoi(getenv("MESH_RESOLUTION", "50")); err != nil {
		return Config{}, fmt.Errorf("MESH_RESOLUTION: %w", err)
	}
	if c.MeshResolution < 3 {
		return Config{}, fmt.Errorf("MESH_RESOLUTION: %d is below 3", c.MeshResolution)
	}
	if _, ok := i18n.DefaultCatalog()[c.DefaultLocale]; !ok {
		return Config{}, fmt.Errorf("DEFAULT_LOCALE: unknown locale %q", c.DefaultLocale)
	}
	return c, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
