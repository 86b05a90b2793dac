package match

import "fmt"

// Config defines matcher tuning parameters loaded from configuration.
type Config struct {
	// Workers bounds the number of candidates scored and persisted
	// concurrently in one run.
	Workers int `json:"workers"`
	// NotifySuppliers pushes a match-found event to each matched supplier
	// after its row persists.
	NotifySuppliers bool `json:"notify_suppliers"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}
