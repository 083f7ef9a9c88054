package zipcounty

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/refstore"
)

// BuildConfig controls which ZIP codes are accepted at build time and which
// county sources are distrusted during conflict resolution.
type BuildConfig struct {
	// ZipLow/ZipHigh bound the plausible regional ZIP range. Claims outside
	// the range are treated as source contamination and dropped.
	ZipLow  int `yaml:"zip_low" mapstructure:"zip_low"`
	ZipHigh int `yaml:"zip_high" mapstructure:"zip_high"`
	// Denylist names county sources known to carry contaminated ZIP data;
	// their claims lose conflicts unless no other claimant remains.
	Denylist []string `yaml:"denylist" mapstructure:"denylist"`
}

// Resolver answers ZIP→county queries from a single-valued map built once
// per run. The multi-claimant evidence is retained in parallel for audit.
type Resolver struct {
	zipMap map[string]string
	multi  map[string][]string
}

// Build scans every county reference collection, accumulates per-ZIP
// claimant sets, and resolves each conflict once. Resolution priority:
//  1. sole claimant wins unconditionally
//  2. authoritative range table, if it names one of the claimants
//  3. alphabetically first claimant not on the denylist
//  4. alphabetically first claimant (all denylisted)
func Build(ctx context.Context, store refstore.Store, ranges Ranges, cfg BuildConfig) (*Resolver, error) {
	log := zap.L().With(zap.String("component", "zipcounty"))

	counties, err := store.Counties(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "zipcounty: list counties")
	}
	sort.Strings(counties)

	claims := make(map[string]map[string]struct{})
	claim := func(county, rawZip string) {
		zip5, ok := acceptZip(rawZip, cfg)
		if !ok {
			return
		}
		if claims[zip5] == nil {
			claims[zip5] = make(map[string]struct{})
		}
		claims[zip5][county] = struct{}{}
	}

	for _, county := range counties {
		demos, err := store.Demographics(ctx, county)
		if err != nil {
			return nil, eris.Wrapf(err, "zipcounty: read %s", refstore.DemographicCollection(county))
		}
		for _, d := range demos {
			claim(county, d.ParcelZip)
		}

		res, err := store.Residentials(ctx, county)
		if err != nil {
			return nil, eris.Wrapf(err, "zipcounty: read %s", refstore.ResidentialCollection(county))
		}
		for _, r := range res {
			claim(county, r.ParcelZip)
		}
	}

	deny := make(map[string]struct{}, len(cfg.Denylist))
	for _, c := range cfg.Denylist {
		deny[c] = struct{}{}
	}

	r := &Resolver{
		zipMap: make(map[string]string, len(claims)),
		multi:  make(map[string][]string),
	}

	var conflicts int
	for zip5, set := range claims {
		claimants := make([]string, 0, len(set))
		for c := range set {
			claimants = append(claimants, c)
		}
		sort.Strings(claimants)

		if len(claimants) > 1 {
			conflicts++
			r.multi[zip5] = claimants
		}

		r.zipMap[zip5] = assign(zip5, claimants, ranges, deny)
	}

	log.Info("zip map built",
		zap.Int("zips", len(r.zipMap)),
		zap.Int("conflicts", conflicts),
	)

	return r, nil
}

// assign resolves one ZIP's claimant set to a single county. Claimants must
// be sorted; alphabetical tie-breaks rely on it.
func assign(zip5 string, claimants []string, ranges Ranges, deny map[string]struct{}) string {
	if len(claimants) == 1 {
		return claimants[0]
	}

	if authoritative, ok := ranges.Lookup(zip5); ok {
		for _, c := range claimants {
			if c == authoritative {
				return c
			}
		}
	}

	for _, c := range claimants {
		if _, denied := deny[c]; !denied {
			return c
		}
	}

	return claimants[0]
}

// acceptZip validates a raw ZIP from source data. Non-numeric values,
// sentinel placeholders, and ZIPs outside the regional range are excluded
// at build time rather than propagated as conflicts.
func acceptZip(raw string, cfg BuildConfig) (string, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '-'); i > 0 {
		raw = raw[:i] // ZIP+4
	}
	if raw == "" || len(raw) > 5 {
		return "", false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return "", false
	}
	if cfg.ZipLow > 0 && (n < cfg.ZipLow || n > cfg.ZipHigh) {
		return "", false
	}
	zip5 := raw
	for len(zip5) < 5 {
		zip5 = "0" + zip5
	}
	return zip5, true
}

// Resolve returns the assigned county for a raw ZIP value, tolerating ZIP+4
// suffixes. Returns false for unmapped or unusable input.
func (r *Resolver) Resolve(zip string) (string, bool) {
	zip5, ok := zipKey(zip)
	if !ok {
		return "", false
	}
	county, ok := r.zipMap[zip5]
	return county, ok
}

// Claimants returns every county that claimed the ZIP in source data, or
// nil when the ZIP was uncontested.
func (r *Resolver) Claimants(zip string) []string {
	zip5, ok := zipKey(zip)
	if !ok {
		return nil
	}
	return r.multi[zip5]
}

// Len reports how many ZIPs are mapped.
func (r *Resolver) Len() int { return len(r.zipMap) }

// Conflicts reports how many ZIPs had multi-county claims.
func (r *Resolver) Conflicts() int { return len(r.multi) }

// zipKey canonicalizes a query ZIP to the 5-digit zero-padded map key.
func zipKey(zip string) (string, bool) {
	zip = strings.TrimSpace(zip)
	if i := strings.IndexByte(zip, '-'); i > 0 {
		zip = zip[:i]
	}
	if zip == "" || len(zip) > 5 {
		return "", false
	}
	if n, err := strconv.Atoi(zip); err != nil || n <= 0 {
		return "", false
	}
	for len(zip) < 5 {
		zip = "0" + zip
	}
	return zip, true
}
