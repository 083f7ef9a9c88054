package refstore

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// demographicRow mirrors the county demographic export layout. Numeric
// columns use -1 for absent values; the sentinel is resolved during
// conversion.
type demographicRow struct {
	ParcelID          string  `csv:"parcel_id"`
	CustomerName      string  `csv:"customer_name"`
	Email             string  `csv:"email"`
	Phone             string  `csv:"phone"`
	Address           string  `csv:"address"`
	ParcelZip         string  `csv:"parcel_zip"`
	EstimatedIncome   float64 `csv:"estimated_income"`
	TotalEnergyBurden float64 `csv:"total_energy_burden"`
}

// residentialRow mirrors the county residential export layout. The source
// "age" column carries a year built.
type residentialRow struct {
	ParcelID  string `csv:"parcel_id"`
	Address   string `csv:"address"`
	ParcelZip string `csv:"parcel_zip"`
	Age       int    `csv:"age"`
}

// ReadDemographicsCSV decodes one county's demographic export. All rows are
// attributed to the given county.
func ReadDemographicsCSV(path, county string) ([]model.DemographicRecord, error) {
	var recs []model.DemographicRecord
	err := readCSV(path, func(dec *csvutil.Decoder) error {
		var r demographicRow
		if err := dec.Decode(&r); err != nil {
			return err
		}
		recs = append(recs, model.DemographicRecord{
			ParcelID:          r.ParcelID,
			County:            county,
			CustomerName:      r.CustomerName,
			Email:             r.Email,
			Phone:             r.Phone,
			Address:           r.Address,
			ParcelZip:         r.ParcelZip,
			EstimatedIncome:   model.OptFloat(r.EstimatedIncome),
			TotalEnergyBurden: model.OptFloat(r.TotalEnergyBurden),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// ReadResidentialsCSV decodes one county's residential export.
func ReadResidentialsCSV(path, county string) ([]model.ResidentialRecord, error) {
	var recs []model.ResidentialRecord
	err := readCSV(path, func(dec *csvutil.Decoder) error {
		var r residentialRow
		if err := dec.Decode(&r); err != nil {
			return err
		}
		recs = append(recs, model.ResidentialRecord{
			ParcelID:  r.ParcelID,
			County:    county,
			Address:   r.Address,
			ParcelZip: r.ParcelZip,
			YearBuilt: model.OptInt(r.Age),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func readCSV(path string, decodeOne func(*csvutil.Decoder) error) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "refstore: open %s", path)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return eris.Wrapf(err, "refstore: read header %s", path)
	}

	for {
		if err := decodeOne(dec); err == io.EOF {
			return nil
		} else if err != nil {
			return eris.Wrapf(err, "refstore: decode row %s", path)
		}
	}
}
