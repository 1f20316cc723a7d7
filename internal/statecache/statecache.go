package statecache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TargetState records the last alert emitted for one target.
type TargetState struct {
	LastAlertJD *decimal.Decimal `json:"last_alert_jd"`
	LastAlertAt *time.Time       `json:"last_alert_time_utc"`
}

// Record maps target identifiers to their alert state. It survives process
// restarts and is the only persisted state in the system.
type Record struct {
	Targets map[string]TargetState `json:"targets"`
}

// Target returns the state for a target, zero-valued if absent.
func (r Record) Target(id string) TargetState {
	if r.Targets == nil {
		return TargetState{}
	}
	return r.Targets[id]
}

// SetTarget replaces the state for a target.
func (r *Record) SetTarget(id string, state TargetState) {
	if r.Targets == nil {
		r.Targets = make(map[string]TargetState)
	}
	r.Targets[id] = state
}

// Cache persists the alert dedup record as a small JSON file.
type Cache struct {
	path   string
	logger zerolog.Logger
}

// New binds a cache to a file path.
func New(path string, logger zerolog.Logger) *Cache {
	return &Cache{path: path, logger: logger.With().Str("component", "statecache").Logger()}
}

// Load reads the persisted record. A missing or corrupt file yields an empty
// record; corruption is logged but never fatal.
func (c *Cache) Load() Record {
	empty := Record{Targets: make(map[string]TargetState)}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("path", c.path).Msg("state file unreadable; starting from empty record")
		}
		return empty
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("state file corrupt; starting from empty record")
		return empty
	}
	if rec.Targets == nil {
		rec.Targets = make(map[string]TargetState)
	}
	return rec
}

// Save rewrites the record atomically: write a temp file in the same
// directory, then rename over the target path.
func (c *Cache) Save(rec Record) error {
	dir := filepath.Dir(c.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state temp file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
