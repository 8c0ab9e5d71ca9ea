package packages

import "errors"

// ErrNotFound is returned when no package exists for an id
var ErrNotFound = errors.New("package not found")

// Repository persists saved packages. Implementations must be safe for
// concurrent use.
type Repository interface {
	All() ([]Package, error)
	Find(id string) (Package, error)
	FindMostRecent() (Package, error)
	Create(pkg Package) error
	Update(pkg Package) error
	Delete(id string) error
	Exists(id string) (bool, error)
}
