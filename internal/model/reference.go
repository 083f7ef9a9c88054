package model

// DemographicRecord is one reference row holding income, energy burden, and
// customer name data for a property, keyed by parcel ID within its source
// county's namespace.
type DemographicRecord struct {
	ParcelID          string   `json:"parcel_id"`
	County            string   `json:"county"`
	CustomerName      string   `json:"customer_name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	Address           string   `json:"address"`
	ParcelZip         string   `json:"parcel_zip"`
	EstimatedIncome   *float64 `json:"estimated_income,omitempty"`
	TotalEnergyBurden *float64 `json:"total_energy_burden,omitempty"`
}

// ResidentialRecord is one reference row holding structural data for a
// property. YearBuilt carries the source "age" field, which is a year built,
// not an age in years.
type ResidentialRecord struct {
	ParcelID  string `json:"parcel_id"`
	County    string `json:"county"`
	Address   string `json:"address"`
	ParcelZip string `json:"parcel_zip"`
	YearBuilt *int   `json:"year_built,omitempty"`
}

// OptFloat converts a source numeric field to an optional value. Source
// collections use -1 as an absent-value sentinel.
func OptFloat(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}

// OptInt converts a source numeric field to an optional value, treating the
// -1 sentinel and zero as absent (a year built of 0 is a placeholder).
func OptInt(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}
