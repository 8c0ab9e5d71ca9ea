package rules

import (
	"errors"
	"fmt"
	"strings"

	"screenapi/internal/catalog"
)

// ErrInvalidInput marks a malformed selection rejected before rule
// evaluation. Use errors.Is to detect it.
var ErrInvalidInput = errors.New("invalid selection input")

// maxServiceIDLength bounds a single service id; anything longer is a
// malformed request, not a catalog miss.
const maxServiceIDLength = 128

// ErrorKind distinguishes the two business-rule violations
type ErrorKind string

// Validation error kinds
const (
	KindMissingDependency ErrorKind = "missing_dependency"
	KindConflict          ErrorKind = "conflict"
)

// Error is a single business-rule violation. These are response data, not
// Go errors; the names mirror the JSON boundary.
type Error struct {
	Kind             ErrorKind `json:"type"`
	ServiceID        string    `json:"service_id"`
	Message          string    `json:"message"`
	RelatedServiceID string    `json:"required_service_id"`
}

// Result is the outcome of validating a complete selection
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []Error  `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Decision is the outcome of a can-add check
type Decision struct {
	Allowed             bool     `json:"allowed"`
	Reason              string   `json:"reason,omitempty"`
	MissingDependencies []string `json:"missing_dependencies,omitempty"`
	ConflictingServices []string `json:"conflicting_services,omitempty"`
}

// RemovalImpact is the outcome of a can-remove check. Removal is always
// allowed; CascadeRemove lists the currently selected services that become
// rule-invalid once the target goes away.
type RemovalImpact struct {
	Allowed       bool     `json:"allowed"`
	CascadeRemove []string `json:"cascade_remove"`
	Warning       string   `json:"warning,omitempty"`
}

// Recommendation describes a bundle whose near-completion is worth an
// advisory warning. MinSelected is the partial count at which the nudge
// starts.
type Recommendation struct {
	Label       string
	Unit        string
	ServiceIDs  []string
	AmountCents int64
	MinSelected int
}

// Validator evaluates selections against a catalog snapshot. The zero
// value is usable; recommendations are optional advisory configuration.
type Validator struct {
	recommendations []Recommendation
}

// NewValidator creates a validator with the given bundle recommendations
func NewValidator(recommendations []Recommendation) *Validator {
	return &Validator{recommendations: recommendations}
}

// CheckSelection rejects malformed selection input before any rule
// evaluation. Unknown ids are fine here; shape problems are not.
func CheckSelection(selection []string) error {
	for i, id := range selection {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: blank service id at position %d", ErrInvalidInput, i)
		}
		if len(id) > maxServiceIDLength {
			return fmt.Errorf("%w: service id at position %d exceeds %d characters", ErrInvalidInput, i, maxServiceIDLength)
		}
	}
	return nil
}

// Validate checks a complete selection for missing dependencies and
// conflicts, and attaches advisory warnings. Unknown ids never fail
// validation; they surface as warnings so typos stay observable.
func (v *Validator) Validate(cat *catalog.Catalog, selection []string) Result {
	ids := dedupe(selection)
	selected := toSet(ids)

	errs := make([]Error, 0)
	warnings := make([]string, 0)

	for _, id := range ids {
		if _, ok := cat.Get(id); !ok {
			warnings = append(warnings, fmt.Sprintf("unknown service id: %s", id))
		}
	}

	errs = append(errs, v.checkDependencies(cat, ids, selected)...)
	errs = append(errs, v.checkConflicts(cat, ids, selected)...)
	warnings = append(warnings, v.checkRecommendations(selected)...)

	return Result{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

// checkDependencies emits one error per unmet declared dependency
func (v *Validator) checkDependencies(cat *catalog.Catalog, ids []string, selected map[string]struct{}) []Error {
	var errs []Error
	for _, id := range ids {
		svc, ok := cat.Get(id)
		if !ok {
			continue
		}
		for _, required := range svc.Dependencies {
			if _, present := selected[required]; present {
				continue
			}
			errs = append(errs, Error{
				Kind:             KindMissingDependency,
				ServiceID:        id,
				Message:          fmt.Sprintf("%s requires %s", svc.Name, cat.DisplayName(required)),
				RelatedServiceID: required,
			})
		}
	}
	return errs
}

// checkConflicts emits exactly one error per unordered conflicting pair.
// Pairs are canonicalized so a conflict declared on both sides, or reported
// from either end of the selection, appears once.
func (v *Validator) checkConflicts(cat *catalog.Catalog, ids []string, selected map[string]struct{}) []Error {
	var errs []Error
	seen := make(map[[2]string]struct{})

	for _, id := range ids {
		svc, ok := cat.Get(id)
		if !ok {
			continue
		}
		for _, other := range svc.Conflicts {
			if _, present := selected[other]; !present {
				continue
			}
			pair := canonicalPair(id, other)
			if _, dup := seen[pair]; dup {
				continue
			}
			seen[pair] = struct{}{}

			errs = append(errs, Error{
				Kind:             KindConflict,
				ServiceID:        id,
				Message:          fmt.Sprintf("%s conflicts with %s", svc.Name, cat.DisplayName(other)),
				RelatedServiceID: other,
			})
		}
	}
	return errs
}

// checkRecommendations warns when a selection is partway to a bundle
// discount. Advisory only; never affects validity.
func (v *Validator) checkRecommendations(selected map[string]struct{}) []string {
	var warnings []string
	for _, rec := range v.recommendations {
		have := 0
		for _, id := range rec.ServiceIDs {
			if _, ok := selected[id]; ok {
				have++
			}
		}
		if have >= rec.MinSelected && have < len(rec.ServiceIDs) {
			missing := len(rec.ServiceIDs) - have
			warnings = append(warnings, fmt.Sprintf(
				"Add %d more %s(s) to get the %s discount ($%s off)",
				missing, rec.Unit, rec.Label, formatDollars(rec.AmountCents)))
		}
	}
	return warnings
}

// CanAdd checks whether candidateID may join the selection, with a reason
// usable directly by UI affordances when it may not.
func (v *Validator) CanAdd(cat *catalog.Catalog, selection []string, candidateID string) Decision {
	svc, ok := cat.Get(candidateID)
	if !ok {
		return Decision{Allowed: false, Reason: fmt.Sprintf("Service not found: %s", candidateID)}
	}

	selected := toSet(selection)
	if _, present := selected[candidateID]; present {
		return Decision{Allowed: false, Reason: fmt.Sprintf("%s is already in the package", svc.Name)}
	}

	var missing []string
	for _, dep := range svc.Dependencies {
		if _, present := selected[dep]; !present {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return Decision{
			Allowed:             false,
			Reason:              fmt.Sprintf("%s requires %s to be added first", svc.Name, joinNames(cat, missing)),
			MissingDependencies: missing,
		}
	}

	// Conflicts are checked in both directions: the candidate may declare
	// the conflict, or an already-selected service may declare it.
	var conflicting []string
	conflictSeen := make(map[string]struct{})
	for _, other := range svc.Conflicts {
		if _, present := selected[other]; present {
			if _, dup := conflictSeen[other]; !dup {
				conflictSeen[other] = struct{}{}
				conflicting = append(conflicting, other)
			}
		}
	}
	for _, id := range dedupe(selection) {
		other, ok := cat.Get(id)
		if !ok {
			continue
		}
		if other.ConflictsWith(candidateID) {
			if _, dup := conflictSeen[id]; !dup {
				conflictSeen[id] = struct{}{}
				conflicting = append(conflicting, id)
			}
		}
	}
	if len(conflicting) > 0 {
		return Decision{
			Allowed:             false,
			Reason:              fmt.Sprintf("%s conflicts with %s", svc.Name, joinNames(cat, conflicting)),
			ConflictingServices: conflicting,
		}
	}

	return Decision{Allowed: true}
}

// CanRemove reports the cascade of currently selected services that
// transitively depend on targetID. The traversal uses an explicit worklist
// with a visited set, so it terminates even on cyclic dependency data.
func (v *Validator) CanRemove(cat *catalog.Catalog, selection []string, targetID string) RemovalImpact {
	ids := dedupe(selection)

	removed := map[string]struct{}{targetID: {}}
	frontier := []string{targetID}
	var cascade []string

	for len(frontier) > 0 {
		gone := frontier[0]
		frontier = frontier[1:]

		for _, id := range ids {
			if _, done := removed[id]; done {
				continue
			}
			svc, ok := cat.Get(id)
			if !ok {
				continue
			}
			if svc.HasDependency(gone) {
				removed[id] = struct{}{}
				cascade = append(cascade, id)
				frontier = append(frontier, id)
			}
		}
	}

	impact := RemovalImpact{Allowed: true, CascadeRemove: cascade}
	if impact.CascadeRemove == nil {
		impact.CascadeRemove = []string{}
	}
	if len(cascade) > 0 {
		impact.Warning = fmt.Sprintf("Removing this service will also remove: %s", joinNames(cat, cascade))
	}
	return impact
}

// dedupe returns the selection with duplicates dropped, first occurrence
// order preserved.
func dedupe(selection []string) []string {
	seen := make(map[string]struct{}, len(selection))
	out := make([]string, 0, len(selection))
	for _, id := range selection {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toSet(selection []string) map[string]struct{} {
	set := make(map[string]struct{}, len(selection))
	for _, id := range selection {
		set[id] = struct{}{}
	}
	return set
}

func canonicalPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func joinNames(cat *catalog.Catalog, ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = cat.DisplayName(id)
	}
	return strings.Join(names, ", ")
}

func formatDollars(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
