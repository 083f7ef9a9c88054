package zipcounty

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// cacheDoc is the persisted JSON form of a Resolver: the final single-valued
// map plus the full multi-claimant evidence for audit.
type cacheDoc struct {
	ZipcodeMap  map[string]string   `json:"zipcode_map"`
	MultiCounty map[string][]string `json:"multi_county"`
}

// SaveCache writes the resolver to a JSON cache file so subsequent runs can
// skip the rebuild.
func (r *Resolver) SaveCache(path string) error {
	doc := cacheDoc{
		ZipcodeMap:  r.zipMap,
		MultiCounty: r.multi,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "zipcounty: marshal cache")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "zipcounty: write cache %s", path)
	}
	return nil
}

// LoadCache reads a previously persisted resolver. A missing or malformed
// file returns an error; callers treat that as a signal to rebuild from
// source, never as fatal.
func LoadCache(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zipcounty: read cache %s", path)
	}

	var doc cacheDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "zipcounty: parse cache %s", path)
	}
	if len(doc.ZipcodeMap) == 0 {
		return nil, eris.Errorf("zipcounty: cache %s has empty zipcode_map", path)
	}

	multi := doc.MultiCounty
	if multi == nil {
		multi = make(map[string][]string)
	}
	return &Resolver{zipMap: doc.ZipcodeMap, multi: multi}, nil
}
