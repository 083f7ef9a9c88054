// Package refstore provides access to the county reference collections
// (demographic and residential property records) and the match-run audit
// log. Source data is organized as one collection per county per data type,
// named {County}Demographic and {County}Residential; the relational
// backends map those collections to county-partitioned tables.
package refstore

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Store defines the persistence interface consumed by the matching core.
// Reads are batch-oriented: the index builder drains every collection once
// per run. Connectivity failures are fatal to the run; a partial index
// would silently degrade match quality.
type Store interface {
	// Reference collections
	Counties(ctx context.Context) ([]string, error)
	Demographics(ctx context.Context, county string) ([]model.DemographicRecord, error)
	Residentials(ctx context.Context, county string) ([]model.ResidentialRecord, error)

	// Bulk load (reference data refresh)
	LoadDemographics(ctx context.Context, recs []model.DemographicRecord) (int64, error)
	LoadResidentials(ctx context.Context, recs []model.ResidentialRecord) (int64, error)

	// Match-run audit log
	SaveRun(ctx context.Context, run *model.MatchRun) error
	LastRun(ctx context.Context) (*model.MatchRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// DemographicCollection returns the source naming convention for a county's
// demographic collection.
func DemographicCollection(county string) string { return county + "Demographic" }

// ResidentialCollection returns the source naming convention for a county's
// residential collection.
func ResidentialCollection(county string) string { return county + "Residential" }

// normalizeDemographic applies the sentinel policy at the store boundary:
// source collections encode absent numerics as -1.
func normalizeDemographic(rec *model.DemographicRecord) {
	if rec.EstimatedIncome != nil && *rec.EstimatedIncome < 0 {
		rec.EstimatedIncome = nil
	}
	if rec.TotalEnergyBurden != nil && *rec.TotalEnergyBurden < 0 {
		rec.TotalEnergyBurden = nil
	}
}

// normalizeResidential applies the sentinel policy for residential rows;
// a year built of -1 or 0 is a placeholder.
func normalizeResidential(rec *model.ResidentialRecord) {
	if rec.YearBuilt != nil && *rec.YearBuilt <= 0 {
		rec.YearBuilt = nil
	}
}
