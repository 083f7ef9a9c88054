// Package zipcounty builds and queries the ZIP-code to county assignment,
// reconciling conflicting claims across county reference collections into a
// single-valued map with a parallel audit trail.
package zipcounty

import (
	_ "embed"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed ranges.yaml
var defaultRangesYAML []byte

// Range is one authoritative ZIP-range-to-county assignment, hand-curated
// from postal data. Used to override conflicting claims at build time.
type Range struct {
	Low    int    `yaml:"low"`
	High   int    `yaml:"high"`
	County string `yaml:"county"`
}

// Ranges is the authoritative ZIP-range table.
type Ranges []Range

type rangesDoc struct {
	Ranges []Range `yaml:"ranges"`
}

// DefaultRanges parses the embedded authoritative table.
func DefaultRanges() (Ranges, error) {
	return ParseRanges(defaultRangesYAML)
}

// LoadRanges reads an authoritative table from a YAML file. An empty path
// falls back to the embedded default.
func LoadRanges(path string) (Ranges, error) {
	if path == "" {
		return DefaultRanges()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zipcounty: read ranges %s", path)
	}
	return ParseRanges(data)
}

// ParseRanges parses and validates YAML range entries.
func ParseRanges(data []byte) (Ranges, error) {
	var doc rangesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "zipcounty: parse ranges yaml")
	}
	for i, r := range doc.Ranges {
		if r.County == "" {
			return nil, eris.Errorf("zipcounty: ranges entry %d: missing county", i)
		}
		if r.Low > r.High {
			return nil, eris.Errorf("zipcounty: ranges entry %d (%s): low %d > high %d", i, r.County, r.Low, r.High)
		}
	}
	return doc.Ranges, nil
}

// Lookup returns the authoritative county for a 5-digit ZIP by range
// containment, or false when no range covers it.
func (rs Ranges) Lookup(zip5 string) (string, bool) {
	n, err := strconv.Atoi(zip5)
	if err != nil {
		return "", false
	}
	for _, r := range rs {
		if n >= r.Low && n <= r.High {
			return r.County, true
		}
	}
	return "", false
}
