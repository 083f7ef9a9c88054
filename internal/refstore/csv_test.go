package refstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadDemographicsCSV(t *testing.T) {
	path := writeTemp(t, "demo.csv",
		"parcel_id,customer_name,email,phone,address,parcel_zip,estimated_income,total_energy_burden\n"+
			"P100,DOE JANE,jane@x.com,6145550100,123 Main St,44903,42500,0.12\n"+
			"P200,ROE JOHN,,,,45701,-1,-1\n")

	recs, err := ReadDemographicsCSV(path, "RichlandCounty")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "RichlandCounty", recs[0].County)
	assert.Equal(t, "P100", recs[0].ParcelID)
	require.NotNil(t, recs[0].EstimatedIncome)
	assert.Equal(t, 42500.0, *recs[0].EstimatedIncome)

	// -1 sentinels become absent values.
	assert.Nil(t, recs[1].EstimatedIncome)
	assert.Nil(t, recs[1].TotalEnergyBurden)
}

func TestReadResidentialsCSV(t *testing.T) {
	path := writeTemp(t, "res.csv",
		"parcel_id,address,parcel_zip,age\n"+
			"P1,9 Oak Dr,45701,1962\n"+
			"P2,10 Oak Dr,45701,-1\n"+
			"P3,11 Oak Dr,45701,0\n")

	recs, err := ReadResidentialsCSV(path, "AthensCounty")
	require.NoError(t, err)
	require.Len(t, recs, 3)

	require.NotNil(t, recs[0].YearBuilt)
	assert.Equal(t, 1962, *recs[0].YearBuilt)
	assert.Nil(t, recs[1].YearBuilt)
	assert.Nil(t, recs[2].YearBuilt)
}

func TestReadDemographicsCSVMissingFile(t *testing.T) {
	_, err := ReadDemographicsCSV(filepath.Join(t.TempDir(), "nope.csv"), "AthensCounty")
	assert.Error(t, err)
}
