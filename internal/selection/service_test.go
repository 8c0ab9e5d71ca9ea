package selection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenapi/internal/catalog"
	"screenapi/internal/config"
	"screenapi/internal/rules"
)

type staticSource struct {
	records []catalog.Record
}

func (s *staticSource) Fetch(ctx context.Context) ([]catalog.Record, error) {
	return s.records, nil
}

func price(p float64) *float64 {
	return &p
}

func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	source := &staticSource{records: []catalog.Record{
		{ID: "state_criminal", Name: "State Criminal Search", BasePrice: price(15), Category: "criminal"},
		{ID: "county_criminal", Name: "County Criminal Search", BasePrice: price(25), Category: "criminal", Dependencies: []string{"state_criminal"}},
		{ID: "federal_criminal", Name: "Federal Criminal Search", BasePrice: price(35), Category: "criminal", Dependencies: []string{"state_criminal"}},
		{ID: "national_criminal", Name: "National Criminal Database Search", BasePrice: price(55), Category: "criminal", Dependencies: []string{"state_criminal"}},
		{ID: "employment_verification", Name: "Employment Verification", BasePrice: price(35), Category: "verification"},
		{ID: "education_verification", Name: "Education Verification", BasePrice: price(20), Category: "verification"},
		{ID: "professional_license", Name: "Professional License Verification", BasePrice: price(25), Category: "verification"},
		{ID: "mvr", Name: "Motor Vehicle Record", BasePrice: price(20), Category: "driving"},
	}}
	store, err := catalog.NewStore(context.Background(), source, nil)
	require.NoError(t, err)
	return store
}

func testService(t *testing.T) *Service {
	t.Helper()
	return NewFromConfig(testStore(t), config.DefaultDiscounts(), nil, nil)
}

func TestService_Validate(t *testing.T) {
	svc := testService(t)

	result, err := svc.Validate(context.Background(), []string{"county_criminal"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, rules.KindMissingDependency, result.Errors[0].Kind)
}

func TestService_Validate_RejectsMalformedInput(t *testing.T) {
	svc := testService(t)

	_, err := svc.Validate(context.Background(), []string{"mvr", ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, rules.ErrInvalidInput)
}

func TestService_Price_FullPackageDiscounts(t *testing.T) {
	svc := testService(t)
	selection := []string{
		"state_criminal", "county_criminal", "federal_criminal", "national_criminal",
		"employment_verification", "education_verification", "professional_license",
		"mvr",
	}

	breakdown, err := svc.Price(context.Background(), selection)
	require.NoError(t, err)

	assert.Len(t, breakdown.Items, 8)
	assert.Equal(t, int64(23000), breakdown.Result.SubtotalCents)
	assert.Equal(t, int64(6950), breakdown.Result.TotalDiscountCents)
	assert.Equal(t, int64(16050), breakdown.Result.TotalCents)
	require.Len(t, breakdown.Result.Discounts, 3)
}

func TestService_Price_RejectsMalformedInput(t *testing.T) {
	svc := testService(t)

	_, err := svc.Price(context.Background(), []string{"  "})
	assert.ErrorIs(t, err, rules.ErrInvalidInput)
}

func TestService_CanAdd(t *testing.T) {
	svc := testService(t)

	d, err := svc.CanAdd(context.Background(), []string{"mvr"}, "county_criminal")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{"state_criminal"}, d.MissingDependencies)

	d, err = svc.CanAdd(context.Background(), []string{"state_criminal"}, "county_criminal")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestService_CanAdd_RejectsMalformedCandidate(t *testing.T) {
	svc := testService(t)

	_, err := svc.CanAdd(context.Background(), []string{"mvr"}, "")
	assert.ErrorIs(t, err, rules.ErrInvalidInput)
}

func TestService_CanRemove(t *testing.T) {
	svc := testService(t)

	impact, err := svc.CanRemove(context.Background(),
		[]string{"state_criminal", "county_criminal", "mvr"}, "state_criminal")
	require.NoError(t, err)
	assert.True(t, impact.Allowed)
	assert.Equal(t, []string{"county_criminal"}, impact.CascadeRemove)
	assert.Contains(t, impact.Warning, "County Criminal Search")
}

func TestService_RecommendationsFromStockBundles(t *testing.T) {
	svc := testService(t)

	result, err := svc.Validate(context.Background(), []string{"state_criminal", "county_criminal"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "Add 2 more criminal search(s) to get the Criminal Bundle discount ($20.00 off)", result.Warnings[0])
}

func TestEngineConfig_ConvertsDollarsToCents(t *testing.T) {
	cfg := engineConfig(config.DiscountsConfig{
		VolumeTiers: []config.VolumeTierConfig{{MinServices: 5, Percent: 10}},
		Bundles: []config.BundleConfig{
			{ID: "b", Name: "B", ServiceIDs: []string{"x"}, Amount: 19.99},
		},
	})

	require.Len(t, cfg.VolumeTiers, 1)
	require.Len(t, cfg.Bundles, 1)
	assert.Equal(t, int64(1999), cfg.Bundles[0].AmountCents)
}

func TestRecommendations_ThresholdIsHalfTheBundle(t *testing.T) {
	recs := recommendations(config.DiscountsConfig{
		Bundles: []config.BundleConfig{
			{ID: "four", Name: "Four", ServiceIDs: []string{"a", "b", "c", "d"}, Amount: 20},
			{ID: "three", Name: "Three", ServiceIDs: []string{"x", "y", "z"}, Amount: 15},
			{ID: "one", Name: "One", ServiceIDs: []string{"solo"}, Amount: 5},
		},
	})

	require.Len(t, recs, 3)
	assert.Equal(t, 2, recs[0].MinSelected)
	assert.Equal(t, 1, recs[1].MinSelected)
	assert.Equal(t, 1, recs[2].MinSelected)
}
