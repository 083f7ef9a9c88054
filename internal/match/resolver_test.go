package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/refindex"
	"github.com/sells-group/outreach-cli/internal/zipcounty"
)

type fakeStore struct {
	counties []string
	demos    map[string][]model.DemographicRecord
	res      map[string][]model.ResidentialRecord
}

func (f *fakeStore) Counties(context.Context) ([]string, error) { return f.counties, nil }

func (f *fakeStore) Demographics(_ context.Context, county string) ([]model.DemographicRecord, error) {
	return f.demos[county], nil
}

func (f *fakeStore) Residentials(_ context.Context, county string) ([]model.ResidentialRecord, error) {
	return f.res[county], nil
}

func (f *fakeStore) LoadDemographics(context.Context, []model.DemographicRecord) (int64, error) {
	return 0, nil
}

func (f *fakeStore) LoadResidentials(context.Context, []model.ResidentialRecord) (int64, error) {
	return 0, nil
}

func (f *fakeStore) SaveRun(context.Context, *model.MatchRun) error   { return nil }
func (f *fakeStore) LastRun(context.Context) (*model.MatchRun, error) { return nil, nil }
func (f *fakeStore) Migrate(context.Context) error                    { return nil }
func (f *fakeStore) Close() error                                     { return nil }

// testResolver builds a resolver over one Richland record reachable by all
// three identity signals, with a residential record on the same parcel.
func testResolver(t *testing.T) *Resolver {
	t.Helper()

	year := 1962
	st := &fakeStore{
		counties: []string{"RichlandCounty"},
		demos: map[string][]model.DemographicRecord{
			"RichlandCounty": {{
				ParcelID:     "P100",
				County:       "RichlandCounty",
				CustomerName: "DOE JANE",
				Email:        "jane@x.com",
				Phone:        "6145550100",
				Address:      "123 Main St",
				ParcelZip:    "44903",
			}},
		},
		res: map[string][]model.ResidentialRecord{
			"RichlandCounty": {{
				ParcelID:  "P100",
				County:    "RichlandCounty",
				YearBuilt: &year,
			}},
		},
	}

	idx, err := refindex.Build(context.Background(), st)
	require.NoError(t, err)

	ranges := zipcounty.Ranges{{Low: 43000, High: 43099, County: "FranklinCounty"}}
	zips, err := zipcounty.Build(context.Background(), st, ranges, zipcounty.BuildConfig{ZipLow: 43000, ZipHigh: 45999})
	require.NoError(t, err)

	return New(idx, zips)
}

func TestResolveStrategyChain(t *testing.T) {
	r := testResolver(t)

	tests := []struct {
		name        string
		p           model.Participant
		wantQuality model.MatchQuality
		wantMethod  string
		wantCounty  string
	}{
		{
			name:        "email hit",
			p:           model.Participant{Email: " Jane@X.COM "},
			wantQuality: model.QualityEmail,
			wantMethod:  MethodEmailExact,
			wantCounty:  "RichlandCounty",
		},
		{
			name:        "phone hit with formatting",
			p:           model.Participant{Cell: "(614) 555-0100"},
			wantQuality: model.QualityPhone,
			wantMethod:  MethodPhoneExact,
			wantCounty:  "RichlandCounty",
		},
		{
			name:        "phone hit with country code",
			p:           model.Participant{Cell: "16145550100"},
			wantQuality: model.QualityPhone,
			wantMethod:  MethodPhoneExact,
			wantCounty:  "RichlandCounty",
		},
		{
			name:        "address hit",
			p:           model.Participant{Address: "123 Main Street", ZIP: "44903-1234"},
			wantQuality: model.QualityAddress,
			wantMethod:  MethodAddressZip5,
			wantCounty:  "RichlandCounty",
		},
		{
			name:        "email outranks phone when both would hit",
			p:           model.Participant{Email: "jane@x.com", Cell: "6145550100"},
			wantQuality: model.QualityEmail,
			wantMethod:  MethodEmailExact,
			wantCounty:  "RichlandCounty",
		},
		{
			name:        "no identity, zip attributes county",
			p:           model.Participant{Name: "Stranger", ZIP: "44903"},
			wantQuality: model.QualityNoMatch,
			wantMethod:  MethodZipCounty,
			wantCounty:  "RichlandCounty",
		},
		{
			name:        "no identity, no usable zip",
			p:           model.Participant{Name: "Stranger"},
			wantQuality: model.QualityNoMatch,
			wantMethod:  MethodNone,
			wantCounty:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.p)
			assert.Equal(t, tt.wantQuality, got.Quality)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.wantCounty, got.County)
		})
	}
}

// A first-rung hit is terminal even when a lower rung points somewhere else:
// an email that matches one record wins over a phone that matches another.
func TestResolveFirstHitTerminal(t *testing.T) {
	st := &fakeStore{
		counties: []string{"AthensCounty", "RichlandCounty"},
		demos: map[string][]model.DemographicRecord{
			"AthensCounty":   {{ParcelID: "A1", County: "AthensCounty", Email: "jane@x.com"}},
			"RichlandCounty": {{ParcelID: "R1", County: "RichlandCounty", Phone: "6145550100"}},
		},
	}
	idx, err := refindex.Build(context.Background(), st)
	require.NoError(t, err)
	zips, err := zipcounty.Build(context.Background(), st, nil, zipcounty.BuildConfig{})
	require.NoError(t, err)

	got := New(idx, zips).Resolve(model.Participant{
		Email: "jane@x.com",
		Cell:  "6145550100",
	})
	assert.Equal(t, model.QualityEmail, got.Quality)
	assert.Equal(t, "AthensCounty", got.County)
	require.NotNil(t, got.Demographic)
	assert.Equal(t, "A1", got.Demographic.ParcelID)
}

func TestResolveAttachesResidential(t *testing.T) {
	r := testResolver(t)

	got := r.Resolve(model.Participant{Email: "jane@x.com"})
	require.NotNil(t, got.Demographic)
	require.NotNil(t, got.Residential)
	assert.Equal(t, got.Demographic.ParcelID, got.Residential.ParcelID)
	require.NotNil(t, got.Residential.YearBuilt)
	assert.Equal(t, 1962, *got.Residential.YearBuilt)
}

func TestResolveZipAttributionUnmatched(t *testing.T) {
	st := &fakeStore{
		counties: []string{"FranklinCounty"},
		demos: map[string][]model.DemographicRecord{
			"FranklinCounty": {{ParcelID: "F1", County: "FranklinCounty", ParcelZip: "43065"}},
		},
	}
	idx, err := refindex.Build(context.Background(), st)
	require.NoError(t, err)
	zips, err := zipcounty.Build(context.Background(), st, nil, zipcounty.BuildConfig{ZipLow: 43000, ZipHigh: 45999})
	require.NoError(t, err)

	got := New(idx, zips).Resolve(model.Participant{Name: "No Identity", ZIP: "43065"})
	assert.Equal(t, model.QualityNoMatch, got.Quality)
	assert.Equal(t, MethodZipCounty, got.Method)
	assert.Equal(t, "FranklinCounty", got.County)
	assert.Nil(t, got.Demographic)
}

func TestResolveAllPreservesOrder(t *testing.T) {
	r := testResolver(t)

	participants := []model.Participant{
		{Name: "A", Email: "jane@x.com"},
		{Name: "B"},
		{Name: "C", Cell: "6145550100"},
		{Name: "D", ZIP: "44903"},
	}

	results, err := r.ResolveAll(context.Background(), participants, 3)
	require.NoError(t, err)
	require.Len(t, results, len(participants))

	for i, res := range results {
		assert.Equal(t, participants[i].Name, res.Participant.Name)
	}
	assert.Equal(t, model.QualityEmail, results[0].Quality)
	assert.Equal(t, model.QualityNoMatch, results[1].Quality)
	assert.Equal(t, model.QualityPhone, results[2].Quality)
	assert.Equal(t, model.QualityNoMatch, results[3].Quality)
	assert.Equal(t, "RichlandCounty", results[3].County)
}

func TestResolveAllCancelled(t *testing.T) {
	r := testResolver(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveAll(ctx, make([]model.Participant, 100), 4)
	assert.Error(t, err)
}
