// Package report aggregates match outcomes for auditing and renders the
// matched/unmatched exports. It is the only package that touches output
// formatting.
package report

import (
	"sort"

	"github.com/sells-group/outreach-cli/internal/model"
)

// NoZipcodeMarker is written in place of a county for unmatched
// participants whose ZIP could not be attributed to any county.
const NoZipcodeMarker = "NO_ZIPCODE"

// maxUnmatchedSamples caps the failure sample kept in memory for logs.
const maxUnmatchedSamples = 25

// Summary holds run statistics plus a bounded sample of unmatched
// participants for spot-checking.
type Summary struct {
	Stats            model.RunStats
	UnmatchedSamples []model.Participant
}

// Aggregate computes counts by quality, method, and county over one run's
// results. Index collisions are attached by the caller, which owns the
// index.
func Aggregate(results []model.MatchResult, collisions int) Summary {
	stats := model.RunStats{
		Participants: len(results),
		ByQuality:    make(map[model.MatchQuality]int),
		ByMethod:     make(map[string]int),
		ByCounty:     make(map[string]int),
		Collisions:   collisions,
	}

	var samples []model.Participant
	for _, r := range results {
		stats.ByQuality[r.Quality]++
		stats.ByMethod[r.Method]++
		if r.County != "" {
			stats.ByCounty[r.County]++
		}

		if r.Quality == model.QualityNoMatch {
			if r.County == "" {
				stats.NoZipcode++
			}
			if len(samples) < maxUnmatchedSamples {
				samples = append(samples, r.Participant)
			}
		}
	}

	return Summary{Stats: stats, UnmatchedSamples: samples}
}

// Counties returns the county names seen in the stats, sorted, for stable
// report ordering.
func (s Summary) Counties() []string {
	counties := make([]string, 0, len(s.Stats.ByCounty))
	for c := range s.Stats.ByCounty {
		counties = append(counties, c)
	}
	sort.Strings(counties)
	return counties
}

// Matched reports how many participants resolved to a demographic record.
func (s Summary) Matched() int {
	return s.Stats.Participants - s.Stats.ByQuality[model.QualityNoMatch]
}
