package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Catalog.PageLimit > c.Catalog.MaxPageLimit {
		return fmt.Errorf("catalog.page_limit must be <= catalog.max_page_limit (got %d > %d)",
			c.Catalog.PageLimit, c.Catalog.MaxPageLimit)
	}
	if c.Catalog.RunTimeout <= 0 {
		return fmt.Errorf("catalog.run_timeout must be > 0 (got %s)", c.Catalog.RunTimeout)
	}
	if c.Fetch.RequestTimeout <= 0 {
		return fmt.Errorf("fetch.request_timeout must be > 0 (got %s)", c.Fetch.RequestTimeout)
	}

	levels, err := ParseRulesetLevels(c.Catalog.RulesetLevels)
	if err != nil {
		return fmt.Errorf("catalog.ruleset_levels: %w", err)
	}
	c.Catalog.Levels = levels

	switch c.Cache.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres cache driver")
		}
	case "badger", "sqlite":
		if strings.TrimSpace(c.Cache.Path) == "" {
			return fmt.Errorf("cache.path is required for the %s cache driver", c.Cache.Driver)
		}
	}

	return nil
}

// ParseRulesetLevels parses a comma-separated list of category=level pairs
// (e.g. "items=minimal,encounters=full"). An empty string returns a nil map.
// Category and level names are checked by the transform layer.
func ParseRulesetLevels(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	levels := make(map[string]string)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		category, level, ok := strings.Cut(p, "=")
		category = strings.TrimSpace(category)
		level = strings.TrimSpace(level)
		if !ok || category == "" || level == "" {
			return nil, fmt.Errorf("invalid pair %q, want category=level", p)
		}
		if _, dup := levels[category]; dup {
			return nil, fmt.Errorf("category %q listed twice", category)
		}
		levels[category] = level
	}

	return levels, nil
}
