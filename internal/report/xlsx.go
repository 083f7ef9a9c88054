package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/outreach-cli/internal/model"
)

// WriteSummaryXLSX renders the run summary as a workbook with a totals
// sheet and a per-county breakdown sheet.
func WriteSummaryXLSX(summary Summary, path string) error {
	file := xlsx.NewFile()

	totals, err := file.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	addRow(totals, "Participants", summary.Stats.Participants)
	addRow(totals, "Matched", summary.Matched())
	for _, q := range []model.MatchQuality{
		model.QualityEmail, model.QualityPhone, model.QualityAddress, model.QualityNoMatch,
	} {
		addRow(totals, string(q), summary.Stats.ByQuality[q])
	}
	addRow(totals, NoZipcodeMarker, summary.Stats.NoZipcode)
	addRow(totals, "Index collisions", summary.Stats.Collisions)

	counties, err := file.AddSheet("Counties")
	if err != nil {
		return eris.Wrap(err, "report: add counties sheet")
	}
	header := counties.AddRow()
	header.AddCell().Value = "County"
	header.AddCell().Value = "Participants"
	for _, county := range summary.Counties() {
		addRow(counties, county, summary.Stats.ByCounty[county])
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, label string, n int) {
	row := sheet.AddRow()
	row.AddCell().Value = label
	row.AddCell().SetInt(n)
}
