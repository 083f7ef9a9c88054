// Package refindex loads every demographic and residential reference
// collection once per run and builds the in-memory lookup maps consumed by
// the match resolver. The index is read-only after Build returns and is
// safe to share across goroutines during the query phase.
package refindex

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/normalize"
	"github.com/sells-group/outreach-cli/internal/refstore"
)

// parcelKey scopes a parcel ID to its county namespace; the same parcel_id
// value can legitimately recur across counties.
type parcelKey struct {
	county   string
	parcelID string
}

// Index holds the lookup maps for one matching run.
type Index struct {
	byEmail     map[string]*model.DemographicRecord
	byPhone     map[string]*model.DemographicRecord
	byAddress   map[string]*model.DemographicRecord
	residential map[parcelKey]*model.ResidentialRecord

	records    int
	collisions int
}

// Build streams all reference collections exactly once and populates the
// maps. Counties are processed in sorted order so cross-county key
// collisions resolve deterministically: the first county processed wins,
// and every collision is counted rather than silently overwritten.
func Build(ctx context.Context, store refstore.Store) (*Index, error) {
	log := zap.L().With(zap.String("component", "refindex"))

	counties, err := store.Counties(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "refindex: list counties")
	}
	sort.Strings(counties)

	idx := &Index{
		byEmail:     make(map[string]*model.DemographicRecord),
		byPhone:     make(map[string]*model.DemographicRecord),
		byAddress:   make(map[string]*model.DemographicRecord),
		residential: make(map[parcelKey]*model.ResidentialRecord),
	}

	for _, county := range counties {
		demos, err := store.Demographics(ctx, county)
		if err != nil {
			return nil, eris.Wrapf(err, "refindex: read %s", refstore.DemographicCollection(county))
		}
		for i := range demos {
			idx.insertDemographic(&demos[i], log)
		}

		res, err := store.Residentials(ctx, county)
		if err != nil {
			return nil, eris.Wrapf(err, "refindex: read %s", refstore.ResidentialCollection(county))
		}
		for i := range res {
			r := &res[i]
			idx.residential[parcelKey{county: r.County, parcelID: r.ParcelID}] = r
		}
	}

	log.Info("reference index built",
		zap.Int("counties", len(counties)),
		zap.Int("demographic_records", idx.records),
		zap.Int("residential_records", len(idx.residential)),
		zap.Int("key_collisions", idx.collisions),
	)

	return idx, nil
}

func (idx *Index) insertDemographic(rec *model.DemographicRecord, log *zap.Logger) {
	idx.records++

	if key, ok := normalize.Email(rec.Email); ok {
		idx.insert(idx.byEmail, "email", key, rec, log)
	}
	if key, ok := normalize.Phone(rec.Phone); ok {
		idx.insert(idx.byPhone, "phone", key, rec, log)
	}
	if key, ok := normalize.Address(rec.Address, rec.ParcelZip); ok {
		idx.insert(idx.byAddress, "address", key, rec, log)
	}
}

func (idx *Index) insert(m map[string]*model.DemographicRecord, kind, key string, rec *model.DemographicRecord, log *zap.Logger) {
	if existing, ok := m[key]; ok {
		idx.collisions++
		log.Debug("reference key collision",
			zap.String("kind", kind),
			zap.String("kept_county", existing.County),
			zap.String("dropped_county", rec.County),
		)
		return
	}
	m[key] = rec
}

// ByEmail looks up a demographic record by normalized email key.
func (idx *Index) ByEmail(key string) (*model.DemographicRecord, bool) {
	rec, ok := idx.byEmail[key]
	return rec, ok
}

// ByPhone looks up a demographic record by normalized 10-digit phone key.
func (idx *Index) ByPhone(key string) (*model.DemographicRecord, bool) {
	rec, ok := idx.byPhone[key]
	return rec, ok
}

// ByAddress looks up a demographic record by "STREET|ZIP5" key.
func (idx *Index) ByAddress(key string) (*model.DemographicRecord, bool) {
	rec, ok := idx.byAddress[key]
	return rec, ok
}

// Residential returns the residential record linked to a demographic match
// through the shared parcel ID, scoped to the county namespace.
func (idx *Index) Residential(county, parcelID string) (*model.ResidentialRecord, bool) {
	rec, ok := idx.residential[parcelKey{county: county, parcelID: parcelID}]
	return rec, ok
}

// Records reports how many demographic records were streamed.
func (idx *Index) Records() int { return idx.records }

// Collisions reports how many cross-collection key collisions were dropped
// in favor of the first-processed county.
func (idx *Index) Collisions() int { return idx.collisions }
