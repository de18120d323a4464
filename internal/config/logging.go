package config

import "ideaforge/internal/logging"

// Options converts the YAML section into logger options.
func (c LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		Categories: c.Categories,
	}
}

// IsCategoryEnabled reports whether a category is enabled. Missing entries
// are enabled.
func (c LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, ok := c.Categories[category]
	return !ok || enabled
}
