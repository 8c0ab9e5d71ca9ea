package packages

import (
	"time"

	"github.com/google/uuid"
)

// Package is a saved bundle of screening services. Timestamps are RFC 3339
// UTC; ServiceIDs keep the caller's order for display.
type Package struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ServiceIDs []string  `json:"service_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewPackage creates a package with a fresh id and timestamps
func NewPackage(name string, serviceIDs []string) Package {
	now := time.Now().UTC()
	return Package{
		ID:         uuid.New().String(),
		Name:       name,
		ServiceIDs: append([]string(nil), serviceIDs...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Rename updates the display name and touches UpdatedAt
func (p *Package) Rename(name string) {
	p.Name = name
	p.touch()
}

// SetServices replaces the selection and touches UpdatedAt
func (p *Package) SetServices(serviceIDs []string) {
	p.ServiceIDs = append([]string(nil), serviceIDs...)
	p.touch()
}

func (p *Package) touch() {
	p.UpdatedAt = time.Now().UTC()
}
