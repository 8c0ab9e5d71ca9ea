package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Source supplies raw service records for a catalog load
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
}

// Record is the wire shape of a single service definition. Prices arrive
// as decimal dollars and are converted to integer cents during parsing.
type Record struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	BasePrice    *float64 `json:"base_price"`
	Category     string   `json:"category"`
	Dependencies []string `json:"dependencies"`
	Conflicts    []string `json:"conflicts"`
}

// FileSource reads service records from a JSON file of the form
// {"services": [...]}.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads and decodes the source file
func (s *FileSource) Fetch(ctx context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog source %s: %w", s.path, err)
	}

	var doc struct {
		Services []Record `json:"services"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog source %s: %w", s.path, err)
	}
	if doc.Services == nil {
		return nil, fmt.Errorf("catalog source %s has no services key", s.path)
	}

	return doc.Services, nil
}

// Parse validates raw records and converts them into Service values.
// A malformed record fails the whole load with a *LoadError naming the
// record; unresolved dependency/conflict references are data-quality
// warnings, not errors.
func Parse(records []Record) ([]Service, []string, error) {
	services := make([]Service, 0, len(records))
	ids := make(map[string]struct{}, len(records))

	for i, rec := range records {
		if rec.ID == "" {
			return nil, nil, &LoadError{Index: i, Reason: "missing id"}
		}
		if rec.Name == "" {
			return nil, nil, &LoadError{Index: i, ID: rec.ID, Reason: "missing name"}
		}
		if rec.BasePrice == nil {
			return nil, nil, &LoadError{Index: i, ID: rec.ID, Reason: "missing base_price"}
		}
		if *rec.BasePrice < 0 {
			return nil, nil, &LoadError{Index: i, ID: rec.ID, Reason: fmt.Sprintf("negative base_price %v", *rec.BasePrice)}
		}
		category, err := ParseCategory(rec.Category)
		if err != nil {
			return nil, nil, &LoadError{Index: i, ID: rec.ID, Reason: err.Error()}
		}
		if _, dup := ids[rec.ID]; dup {
			return nil, nil, &LoadError{Index: i, ID: rec.ID, Reason: "duplicate id"}
		}
		ids[rec.ID] = struct{}{}

		services = append(services, Service{
			ID:             rec.ID,
			Name:           rec.Name,
			BasePriceCents: int64(math.Round(*rec.BasePrice * 100)),
			Category:       category,
			Dependencies:   append([]string(nil), rec.Dependencies...),
			Conflicts:      append([]string(nil), rec.Conflicts...),
		})
	}

	var warnings []string
	for _, svc := range services {
		for _, dep := range svc.Dependencies {
			if _, ok := ids[dep]; !ok {
				warnings = append(warnings, fmt.Sprintf("service %s depends on unknown service %s", svc.ID, dep))
			}
		}
		for _, conflict := range svc.Conflicts {
			if _, ok := ids[conflict]; !ok {
				warnings = append(warnings, fmt.Sprintf("service %s conflicts with unknown service %s", svc.ID, conflict))
			}
		}
	}

	return services, warnings, nil
}
