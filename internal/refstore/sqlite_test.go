package refstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteLoadAndReadDemographics(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	income := 42500.0
	burden := 0.12
	recs := []model.DemographicRecord{
		{
			ParcelID:          "P100",
			County:            "RichlandCounty",
			CustomerName:      "DOE JANE",
			Email:             "jane@x.com",
			Phone:             "6145550100",
			Address:           "123 Main St",
			ParcelZip:         "44903",
			EstimatedIncome:   &income,
			TotalEnergyBurden: &burden,
		},
		{
			ParcelID: "P200",
			County:   "RichlandCounty",
		},
	}

	n, err := st.LoadDemographics(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := st.Demographics(ctx, "RichlandCounty")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byParcel := map[string]model.DemographicRecord{}
	for _, r := range got {
		byParcel[r.ParcelID] = r
	}

	full := byParcel["P100"]
	assert.Equal(t, "DOE JANE", full.CustomerName)
	assert.Equal(t, "jane@x.com", full.Email)
	require.NotNil(t, full.EstimatedIncome)
	assert.Equal(t, income, *full.EstimatedIncome)
	require.NotNil(t, full.TotalEnergyBurden)
	assert.Equal(t, burden, *full.TotalEnergyBurden)

	sparse := byParcel["P200"]
	assert.Nil(t, sparse.EstimatedIncome)
	assert.Nil(t, sparse.TotalEnergyBurden)
}

func TestSQLiteLoadUpsertsOnConflict(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	rec := model.DemographicRecord{ParcelID: "P100", County: "AthensCounty", Email: "old@x.com"}
	_, err := st.LoadDemographics(ctx, []model.DemographicRecord{rec})
	require.NoError(t, err)

	rec.Email = "new@x.com"
	_, err = st.LoadDemographics(ctx, []model.DemographicRecord{rec})
	require.NoError(t, err)

	got, err := st.Demographics(ctx, "AthensCounty")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new@x.com", got[0].Email)
}

// Sentinel numerics stored as -1 by older snapshots must read back as nil.
func TestSQLiteSentinelNormalizedOnRead(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	_, err := st.db.ExecContext(ctx, `
		INSERT INTO demographics (county, parcel_id, estimated_income, total_energy_burden)
		VALUES ('AthensCounty', 'P1', -1, -1)`)
	require.NoError(t, err)
	_, err = st.db.ExecContext(ctx, `
		INSERT INTO residentials (county, parcel_id, year_built)
		VALUES ('AthensCounty', 'P1', -1)`)
	require.NoError(t, err)

	demos, err := st.Demographics(ctx, "AthensCounty")
	require.NoError(t, err)
	require.Len(t, demos, 1)
	assert.Nil(t, demos[0].EstimatedIncome)
	assert.Nil(t, demos[0].TotalEnergyBurden)

	res, err := st.Residentials(ctx, "AthensCounty")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Nil(t, res[0].YearBuilt)
}

func TestSQLiteCounties(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	_, err := st.LoadDemographics(ctx, []model.DemographicRecord{
		{ParcelID: "P1", County: "RichlandCounty"},
	})
	require.NoError(t, err)
	_, err = st.LoadResidentials(ctx, []model.ResidentialRecord{
		{ParcelID: "P1", County: "AthensCounty"},
		{ParcelID: "P2", County: "RichlandCounty"},
	})
	require.NoError(t, err)

	counties, err := st.Counties(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AthensCounty", "RichlandCounty"}, counties)
}

func TestSQLiteResidentials(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	year := 1962
	_, err := st.LoadResidentials(ctx, []model.ResidentialRecord{
		{ParcelID: "P1", County: "AthensCounty", Address: "9 Oak Dr", ParcelZip: "45701", YearBuilt: &year},
		{ParcelID: "P2", County: "AthensCounty"},
	})
	require.NoError(t, err)

	got, err := st.Residentials(ctx, "AthensCounty")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byParcel := map[string]model.ResidentialRecord{}
	for _, r := range got {
		byParcel[r.ParcelID] = r
	}
	require.NotNil(t, byParcel["P1"].YearBuilt)
	assert.Equal(t, 1962, *byParcel["P1"].YearBuilt)
	assert.Nil(t, byParcel["P2"].YearBuilt)
}

func TestSQLiteRunLog(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	last, err := st.LastRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	started := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	run := &model.MatchRun{
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Stats: model.RunStats{
			Participants: 10,
			ByQuality:    map[model.MatchQuality]int{model.QualityEmail: 4},
			ByMethod:     map[string]int{"email_exact": 4},
			ByCounty:     map[string]int{"RichlandCounty": 4},
		},
	}
	require.NoError(t, st.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID)

	later := &model.MatchRun{
		StartedAt:  started.Add(time.Minute),
		FinishedAt: started.Add(2 * time.Minute),
		Stats:      model.RunStats{Participants: 20},
	}
	require.NoError(t, st.SaveRun(ctx, later))

	last, err = st.LastRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, later.ID, last.ID)
	assert.Equal(t, 20, last.Stats.Participants)
}
