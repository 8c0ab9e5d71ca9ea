package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenapi/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.Build(1, []catalog.Service{
		{ID: "state_criminal", Name: "State Criminal Search", BasePriceCents: 1500, Category: catalog.CategoryCriminal},
		{ID: "county_criminal", Name: "County Criminal Search", BasePriceCents: 2500, Category: catalog.CategoryCriminal, Dependencies: []string{"state_criminal"}},
		{ID: "federal_criminal", Name: "Federal Criminal Search", BasePriceCents: 3500, Category: catalog.CategoryCriminal, Dependencies: []string{"state_criminal"}},
		{ID: "national_criminal", Name: "National Criminal Database Search", BasePriceCents: 5500, Category: catalog.CategoryCriminal, Dependencies: []string{"state_criminal"}},
		{ID: "employment_verification", Name: "Employment Verification", BasePriceCents: 3500, Category: catalog.CategoryVerification},
		{ID: "education_verification", Name: "Education Verification", BasePriceCents: 2000, Category: catalog.CategoryVerification},
		{ID: "professional_license", Name: "Professional License Verification", BasePriceCents: 2500, Category: catalog.CategoryVerification},
		{ID: "mvr", Name: "Motor Vehicle Record", BasePriceCents: 2000, Category: catalog.CategoryDriving},
		{ID: "drug_5_panel", Name: "5-Panel Drug Screen", BasePriceCents: 3000, Category: catalog.CategoryDrugScreening, Conflicts: []string{"drug_10_panel"}},
		{ID: "drug_10_panel", Name: "10-Panel Drug Screen", BasePriceCents: 4500, Category: catalog.CategoryDrugScreening, Conflicts: []string{"drug_5_panel"}},
	})
}

func testRecommendations() []Recommendation {
	return []Recommendation{
		{
			Label:       "Criminal Bundle",
			Unit:        "criminal search",
			ServiceIDs:  []string{"state_criminal", "county_criminal", "federal_criminal", "national_criminal"},
			AmountCents: 2000,
			MinSelected: 2,
		},
		{
			Label:       "Verification Bundle",
			Unit:        "verification service",
			ServiceIDs:  []string{"employment_verification", "education_verification", "professional_license"},
			AmountCents: 1500,
			MinSelected: 1,
		},
	}
}

func TestCheckSelection(t *testing.T) {
	tests := []struct {
		name      string
		selection []string
		wantErr   bool
	}{
		{name: "empty selection", selection: nil, wantErr: false},
		{name: "valid ids", selection: []string{"mvr", "state_criminal"}, wantErr: false},
		{name: "unknown id is fine", selection: []string{"ghost"}, wantErr: false},
		{name: "blank id", selection: []string{"mvr", "  "}, wantErr: true},
		{name: "empty string id", selection: []string{""}, wantErr: true},
		{name: "oversized id", selection: []string{strings.Repeat("x", 129)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSelection(tt.selection)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_MissingDependencies(t *testing.T) {
	v := NewValidator(nil)
	cat := testCatalog(t)

	result := v.Validate(cat, []string{"county_criminal", "federal_criminal"})
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)

	for _, e := range result.Errors {
		assert.Equal(t, KindMissingDependency, e.Kind)
		assert.Equal(t, "state_criminal", e.RelatedServiceID)
		assert.Contains(t, e.Message, "requires State Criminal Search")
	}
	assert.Equal(t, "county_criminal", result.Errors[0].ServiceID)
	assert.Equal(t, "federal_criminal", result.Errors[1].ServiceID)
}

func TestValidate_SatisfiedDependencies(t *testing.T) {
	v := NewValidator(nil)
	result := v.Validate(testCatalog(t), []string{"state_criminal", "county_criminal"})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_ConflictReportedOncePerPair(t *testing.T) {
	v := NewValidator(nil)

	// Both sides declare the conflict; exactly one pair error comes back.
	result := v.Validate(testCatalog(t), []string{"drug_5_panel", "drug_10_panel"})
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindConflict, result.Errors[0].Kind)
	assert.Equal(t, "drug_5_panel", result.Errors[0].ServiceID)
	assert.Equal(t, "drug_10_panel", result.Errors[0].RelatedServiceID)
	assert.Equal(t, "5-Panel Drug Screen conflicts with 10-Panel Drug Screen", result.Errors[0].Message)
}

func TestValidate_UnknownIDsAreWarnings(t *testing.T) {
	v := NewValidator(nil)
	result := v.Validate(testCatalog(t), []string{"mvr", "ghost"})
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "unknown service id: ghost", result.Warnings[0])
}

func TestValidate_DuplicatesDoNotDoubleReport(t *testing.T) {
	v := NewValidator(nil)
	result := v.Validate(testCatalog(t), []string{"county_criminal", "county_criminal"})
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 1)
}

func TestValidate_BundleRecommendations(t *testing.T) {
	v := NewValidator(testRecommendations())
	cat := testCatalog(t)

	tests := []struct {
		name         string
		selection    []string
		wantWarnings []string
	}{
		{
			name:      "two criminal searches trigger the criminal nudge",
			selection: []string{"state_criminal", "county_criminal"},
			wantWarnings: []string{
				"Add 2 more criminal search(s) to get the Criminal Bundle discount ($20.00 off)",
			},
		},
		{
			name:      "one verification triggers the verification nudge",
			selection: []string{"employment_verification"},
			wantWarnings: []string{
				"Add 2 more verification service(s) to get the Verification Bundle discount ($15.00 off)",
			},
		},
		{
			name:         "single criminal search stays quiet",
			selection:    []string{"state_criminal"},
			wantWarnings: []string{},
		},
		{
			name:         "complete bundle stays quiet",
			selection:    []string{"state_criminal", "county_criminal", "federal_criminal", "national_criminal"},
			wantWarnings: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(cat, tt.selection)
			assert.True(t, result.Valid)
			assert.Equal(t, tt.wantWarnings, result.Warnings)
		})
	}
}

func TestCanAdd(t *testing.T) {
	v := NewValidator(nil)
	cat := testCatalog(t)

	tests := []struct {
		name        string
		selection   []string
		candidate   string
		wantAllowed bool
		wantReason  string
		wantMissing []string
		wantConfl   []string
	}{
		{
			name:        "unknown service",
			selection:   []string{"mvr"},
			candidate:   "ghost",
			wantAllowed: false,
			wantReason:  "Service not found: ghost",
		},
		{
			name:        "already selected",
			selection:   []string{"mvr"},
			candidate:   "mvr",
			wantAllowed: false,
			wantReason:  "Motor Vehicle Record is already in the package",
		},
		{
			name:        "unmet dependency",
			selection:   []string{"mvr"},
			candidate:   "county_criminal",
			wantAllowed: false,
			wantReason:  "County Criminal Search requires State Criminal Search to be added first",
			wantMissing: []string{"state_criminal"},
		},
		{
			name:        "dependency satisfied",
			selection:   []string{"state_criminal"},
			candidate:   "county_criminal",
			wantAllowed: true,
		},
		{
			name:        "conflict declared by candidate",
			selection:   []string{"drug_10_panel"},
			candidate:   "drug_5_panel",
			wantAllowed: false,
			wantReason:  "5-Panel Drug Screen conflicts with 10-Panel Drug Screen",
			wantConfl:   []string{"drug_10_panel"},
		},
		{
			name:        "no rules involved",
			selection:   []string{"state_criminal"},
			candidate:   "mvr",
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := v.CanAdd(cat, tt.selection, tt.candidate)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.wantMissing, d.MissingDependencies)
			assert.Equal(t, tt.wantConfl, d.ConflictingServices)
		})
	}
}

func TestCanAdd_ConflictDeclaredBySelectedService(t *testing.T) {
	// Conflict declared only on the selected side; the candidate itself
	// declares nothing.
	cat := catalog.Build(1, []catalog.Service{
		{ID: "a", Name: "A", Category: catalog.CategoryCriminal, Conflicts: []string{"b"}},
		{ID: "b", Name: "B", Category: catalog.CategoryCriminal},
	})

	d := NewValidator(nil).CanAdd(cat, []string{"a"}, "b")
	assert.False(t, d.Allowed)
	assert.Equal(t, []string{"a"}, d.ConflictingServices)
	assert.Equal(t, "B conflicts with A", d.Reason)
}

func TestCanRemove_NoDependents(t *testing.T) {
	v := NewValidator(nil)
	impact := v.CanRemove(testCatalog(t), []string{"mvr", "state_criminal"}, "mvr")

	assert.True(t, impact.Allowed)
	assert.Equal(t, []string{}, impact.CascadeRemove)
	assert.Empty(t, impact.Warning)
}

func TestCanRemove_DirectDependents(t *testing.T) {
	v := NewValidator(nil)
	selection := []string{"state_criminal", "county_criminal", "federal_criminal", "mvr"}

	impact := v.CanRemove(testCatalog(t), selection, "state_criminal")
	assert.True(t, impact.Allowed)
	assert.ElementsMatch(t, []string{"county_criminal", "federal_criminal"}, impact.CascadeRemove)
	assert.Contains(t, impact.Warning, "Removing this service will also remove: ")
	assert.Contains(t, impact.Warning, "County Criminal Search")
	assert.Contains(t, impact.Warning, "Federal Criminal Search")
}

func TestCanRemove_TransitiveChain(t *testing.T) {
	cat := catalog.Build(1, []catalog.Service{
		{ID: "a", Name: "A", Category: catalog.CategoryCriminal},
		{ID: "b", Name: "B", Category: catalog.CategoryCriminal, Dependencies: []string{"a"}},
		{ID: "c", Name: "C", Category: catalog.CategoryCriminal, Dependencies: []string{"b"}},
		{ID: "d", Name: "D", Category: catalog.CategoryCriminal, Dependencies: []string{"a", "c"}},
	})

	impact := NewValidator(nil).CanRemove(cat, []string{"a", "b", "c", "d"}, "a")
	assert.Equal(t, []string{"b", "d", "c"}, impact.CascadeRemove)
}

func TestCanRemove_CyclicDependencyDataTerminates(t *testing.T) {
	cat := catalog.Build(1, []catalog.Service{
		{ID: "a", Name: "A", Category: catalog.CategoryCriminal, Dependencies: []string{"b"}},
		{ID: "b", Name: "B", Category: catalog.CategoryCriminal, Dependencies: []string{"a"}},
	})

	impact := NewValidator(nil).CanRemove(cat, []string{"a", "b"}, "a")
	assert.True(t, impact.Allowed)
	assert.Equal(t, []string{"b"}, impact.CascadeRemove)
}

func TestCanRemove_TargetNotInSelection(t *testing.T) {
	impact := NewValidator(nil).CanRemove(testCatalog(t), []string{"mvr"}, "state_criminal")
	assert.True(t, impact.Allowed)
	assert.Equal(t, []string{}, impact.CascadeRemove)
}
