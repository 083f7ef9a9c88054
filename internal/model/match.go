package model

import "time"

// MatchQuality is the identity-signal tier used to resolve a participant.
// Tiers are ordered by reliability: email carries the lowest false-positive
// rate, address the highest.
type MatchQuality string

// Match quality tiers.
const (
	QualityEmail   MatchQuality = "EMAIL"
	QualityPhone   MatchQuality = "PHONE"
	QualityAddress MatchQuality = "ADDRESS"
	QualityNoMatch MatchQuality = "NO_MATCH"
)

// Rank returns the priority order of the tier; lower is better.
func (q MatchQuality) Rank() int {
	switch q {
	case QualityEmail:
		return 0
	case QualityPhone:
		return 1
	case QualityAddress:
		return 2
	default:
		return 3
	}
}

// MatchResult is the single, immutable outcome of resolving one participant.
// County may be populated even for NO_MATCH results, via ZIP attribution, to
// support geographic analysis of unmatched participants.
type MatchResult struct {
	Participant Participant        `json:"participant"`
	Quality     MatchQuality       `json:"match_quality"`
	Method      string             `json:"match_method"`
	County      string             `json:"county_name"`
	Demographic *DemographicRecord `json:"demographic_record,omitempty"`
	Residential *ResidentialRecord `json:"residential_record,omitempty"`
}

// RunStats summarizes one matching run for auditing.
type RunStats struct {
	Participants int                  `json:"participants"`
	ByQuality    map[MatchQuality]int `json:"by_quality"`
	ByMethod     map[string]int       `json:"by_method"`
	ByCounty     map[string]int       `json:"by_county"`
	NoZipcode    int                  `json:"no_zipcode"`
	Collisions   int                  `json:"index_collisions"`
}

// MatchRun is the persisted audit record of one batch matching run.
type MatchRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Stats      RunStats  `json:"stats"`
}
