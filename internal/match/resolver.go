// Package match resolves campaign participants against the reference index
// through a priority-ordered chain of lookup strategies.
package match

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/normalize"
	"github.com/sells-group/outreach-cli/internal/refindex"
	"github.com/sells-group/outreach-cli/internal/zipcounty"
)

// Match method descriptors carried on results for auditing.
const (
	MethodEmailExact  = "email_exact"
	MethodPhoneExact  = "phone_exact"
	MethodAddressZip5 = "address_zip5"
	MethodZipCounty   = "zip_county"
	MethodNone        = "none"
)

// strategy is one rung of the priority chain: a quality tier, its method
// descriptor, and the lookup it performs.
type strategy struct {
	quality model.MatchQuality
	method  string
	lookup  func(p model.Participant) (*model.DemographicRecord, bool)
}

// Resolver applies the strategy chain against a fully-built reference index
// and ZIP→county map. Both are read-only, so one Resolver may be shared
// across goroutines.
type Resolver struct {
	index      *refindex.Index
	zips       *zipcounty.Resolver
	strategies []strategy
}

// New creates a Resolver. The strategy order encodes the tie-break policy:
// email is the most reliable identity signal, phone second, address third.
// Once a strategy hits, lower-priority signals are never consulted, even if
// they would disagree.
func New(index *refindex.Index, zips *zipcounty.Resolver) *Resolver {
	r := &Resolver{index: index, zips: zips}
	r.strategies = []strategy{
		{
			quality: model.QualityEmail,
			method:  MethodEmailExact,
			lookup: func(p model.Participant) (*model.DemographicRecord, bool) {
				key, ok := normalize.Email(p.Email)
				if !ok {
					return nil, false
				}
				return index.ByEmail(key)
			},
		},
		{
			quality: model.QualityPhone,
			method:  MethodPhoneExact,
			lookup: func(p model.Participant) (*model.DemographicRecord, bool) {
				key, ok := normalize.Phone(p.Cell)
				if !ok {
					return nil, false
				}
				return index.ByPhone(key)
			},
		},
		{
			quality: model.QualityAddress,
			method:  MethodAddressZip5,
			lookup: func(p model.Participant) (*model.DemographicRecord, bool) {
				key, ok := normalize.Address(p.Address, p.ZIP)
				if !ok {
					return nil, false
				}
				return index.ByAddress(key)
			},
		},
	}
	return r
}

// Resolve produces exactly one terminal MatchResult for a participant. A
// participant with no usable identity field and no resolvable ZIP yields a
// fully-empty NO_MATCH result; that is a normal outcome, not an error.
func (r *Resolver) Resolve(p model.Participant) model.MatchResult {
	for _, s := range r.strategies {
		rec, ok := s.lookup(p)
		if !ok {
			continue
		}

		result := model.MatchResult{
			Participant: p,
			Quality:     s.quality,
			Method:      s.method,
			County:      rec.County,
			Demographic: rec,
		}
		// Secondary join: attach house data via the shared parcel ID.
		// Absence is not a failure; the demographic match stands.
		if res, ok := r.index.Residential(rec.County, rec.ParcelID); ok {
			result.Residential = res
		}
		return result
	}

	// No identity match. County attribution may still succeed from the ZIP
	// alone, supporting geographic analysis of unmatched participants.
	result := model.MatchResult{
		Participant: p,
		Quality:     model.QualityNoMatch,
		Method:      MethodNone,
	}
	if county, ok := r.zips.Resolve(p.ZIP); ok {
		result.County = county
		result.Method = MethodZipCounty
	}
	return result
}

// ResolveAll resolves participants with bounded concurrency, preserving
// input order. No participant's outcome depends on any other's, and the
// index is read-only during the query phase, so the fan-out needs no
// synchronization beyond the indexed result slots.
func (r *Resolver) ResolveAll(ctx context.Context, participants []model.Participant, concurrency int) ([]model.MatchResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]model.MatchResult, len(participants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range participants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.Resolve(p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
