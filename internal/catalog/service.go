package catalog

import "fmt"

// Category classifies a screening service
type Category string

// Known service categories
const (
	CategoryCriminal      Category = "criminal"
	CategoryVerification  Category = "verification"
	CategoryDriving       Category = "driving"
	CategoryDrugScreening Category = "drug_screening"
)

// ParseCategory validates a raw category string
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryCriminal, CategoryVerification, CategoryDriving, CategoryDrugScreening:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// Service is a single screening service definition. Instances are immutable
// once a catalog generation is built; prices are held in integer cents so
// rule evaluation never accumulates binary floating error.
type Service struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	BasePriceCents int64    `json:"base_price_cents"`
	Category       Category `json:"category"`
	Dependencies   []string `json:"dependencies"`
	Conflicts      []string `json:"conflicts"`
}

// HasDependency reports whether the service declares a dependency on id
func (s Service) HasDependency(id string) bool {
	for _, dep := range s.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// ConflictsWith reports whether the service declares a conflict with id
func (s Service) ConflictsWith(id string) bool {
	for _, c := range s.Conflicts {
		if c == id {
			return true
		}
	}
	return false
}
