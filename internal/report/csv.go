package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// matchedRow is the export layout consumed by downstream analysis.
type matchedRow struct {
	Name      string `csv:"Name"`
	Campaign  string `csv:"Campaign"`
	County    string `csv:"County"`
	Opened    string `csv:"Opened"`
	Clicked   string `csv:"Clicked"`
	Applied   string `csv:"Applied"`
	Age       string `csv:"Age"`
	Income    string `csv:"Income"`
	YearBuilt string `csv:"YearBuilt"`
}

// WriteMatchedCSV exports every matched participant (quality above
// NO_MATCH) with its attached demographic and residential fields.
func WriteMatchedCSV(results []model.MatchResult, path string) error {
	rows := make([]matchedRow, 0, len(results))
	currentYear := time.Now().Year()

	for _, r := range results {
		if r.Quality == model.QualityNoMatch {
			continue
		}
		row := matchedRow{
			Name:     displayName(r),
			Campaign: r.Participant.Campaign,
			County:   r.County,
			Opened:   flag(r.Participant.Opened),
			Clicked:  flag(r.Participant.Clicked),
			Applied:  flag(r.Participant.Applied),
		}
		if r.Demographic != nil && r.Demographic.EstimatedIncome != nil {
			row.Income = strconv.FormatFloat(*r.Demographic.EstimatedIncome, 'f', 0, 64)
		}
		if r.Residential != nil && r.Residential.YearBuilt != nil {
			yb := *r.Residential.YearBuilt
			row.YearBuilt = strconv.Itoa(yb)
			if yb <= currentYear {
				row.Age = strconv.Itoa(currentYear - yb)
			}
		}
		rows = append(rows, row)
	}

	return writeCSV(path, rows)
}

// unmatchedRow is the debug export for NO_MATCH participants, carrying the
// raw input fields alongside the resolution outcome.
type unmatchedRow struct {
	Name         string `csv:"Name"`
	Campaign     string `csv:"Campaign"`
	Email        string `csv:"Email"`
	Cell         string `csv:"Cell"`
	Address      string `csv:"Address"`
	City         string `csv:"City"`
	ZIP          string `csv:"ZIP"`
	County       string `csv:"County"`
	MatchQuality string `csv:"Match_Quality"`
	MatchMethod  string `csv:"Match_Method"`
}

// WriteUnmatchedCSV exports NO_MATCH participants for debugging. A county
// may still be present via ZIP attribution; when even that failed the
// county column carries the NO_ZIPCODE marker.
func WriteUnmatchedCSV(results []model.MatchResult, path string) error {
	var rows []unmatchedRow
	for _, r := range results {
		if r.Quality != model.QualityNoMatch {
			continue
		}
		county := r.County
		if county == "" {
			county = NoZipcodeMarker
		}
		rows = append(rows, unmatchedRow{
			Name:         r.Participant.Name,
			Campaign:     r.Participant.Campaign,
			Email:        r.Participant.Email,
			Cell:         r.Participant.Cell,
			Address:      r.Participant.Address,
			City:         r.Participant.City,
			ZIP:          r.Participant.ZIP,
			County:       county,
			MatchQuality: string(r.Quality),
			MatchMethod:  r.Method,
		})
	}

	return writeCSV(path, rows)
}

// writeCSV marshals rows to a CSV file, writing a header even when there
// are no rows.
func writeCSV[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)

	if len(rows) == 0 {
		var empty T
		if err := enc.EncodeHeader(empty); err != nil {
			return eris.Wrapf(err, "report: write header %s", path)
		}
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return eris.Wrapf(err, "report: write row %s", path)
		}
	}

	w.Flush()
	return eris.Wrapf(w.Error(), "report: flush %s", path)
}

// displayName prefers the participant's own name, falling back to the
// reference customer name the record was harvested with.
func displayName(r model.MatchResult) string {
	if r.Participant.Name != "" {
		return r.Participant.Name
	}
	if r.Demographic != nil {
		return r.Demographic.CustomerName
	}
	return ""
}

// flag renders an engagement flag in the yes/no form downstream consumers
// expect.
func flag(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
