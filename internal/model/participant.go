// Package model defines the core types shared across the matching pipeline.
package model

import "strings"

// Participant is one campaign contact record as ingested from a campaign
// export. Identity fields are raw, optional, and read-only to the matching
// core; a Participant is never mutated during a run.
type Participant struct {
	Name     string `json:"name"`
	Campaign string `json:"campaign"`
	Email    string `json:"email"`
	Cell     string `json:"cell"`
	Address  string `json:"address"`
	City     string `json:"city"`
	ZIP      string `json:"zip"`
	Opened   bool   `json:"opened"`
	Clicked  bool   `json:"clicked"`
	Applied  bool   `json:"applied"`
}

// ParseFlag interprets a campaign engagement flag. Exports encode these
// inconsistently as yes/no, true/false, or 1/0 in any casing.
func ParseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}
