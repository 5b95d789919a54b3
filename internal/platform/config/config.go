// Package config reads settings from the environment under optional prefixes
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"vera/internal/platform/logger"
)

// Conf scopes lookups under a prefix, e.g. New().Prefix("CORE_API_")
type Conf struct{ prefix string }

func New() Conf { return Conf{} }

func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// lookup returns the trimmed value; blank counts as unset
func (c Conf) lookup(key string) (name, val string, ok bool) {
	name = c.prefix + key
	val = strings.TrimSpace(os.Getenv(name))
	return name, val, val != ""
}

// MustString panics through the logger when key is unset
func (c Conf) MustString(key string) string {
	name, v, ok := c.lookup(key)
	if !ok {
		logger.Get().Panic().Str("key", name).Msg("missing required env")
	}
	return v
}

func (c Conf) MayString(key, def string) string {
	if _, v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// parsed falls back to def when key is unset or does not parse; the latter is logged
func parsed[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	name, s, ok := c.lookup(key)
	if !ok {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", name).Str("value", s).Interface("default", def).Msg("invalid env value, using default")
		return def
	}
	return v
}

func (c Conf) MayInt(key string, def int) int { return parsed(c, key, def, strconv.Atoi) }

func (c Conf) MayBool(key string, def bool) bool { return parsed(c, key, def, strconv.ParseBool) }

func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return parsed(c, key, def, time.ParseDuration)
}

// MayCSV splits on commas and drops blanks; def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	_, s, _ := c.lookup(key)
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
