package catalog

import "sort"

// Catalog is an immutable snapshot of the service definitions for one
// generation. All lookups are safe for concurrent use; a snapshot is never
// mutated after Build returns it.
type Catalog struct {
	generation uint64
	byID       map[string]Service
	byCategory map[Category][]Service
	ordered    []string
}

// Build constructs a catalog snapshot from validated service records.
// The category grouping is computed once here, not per call.
func Build(generation uint64, services []Service) *Catalog {
	byID := make(map[string]Service, len(services))
	byCategory := make(map[Category][]Service)
	ordered := make([]string, 0, len(services))

	for _, svc := range services {
		if _, dup := byID[svc.ID]; dup {
			continue
		}
		byID[svc.ID] = svc
		byCategory[svc.Category] = append(byCategory[svc.Category], svc)
		ordered = append(ordered, svc.ID)
	}

	for cat := range byCategory {
		group := byCategory[cat]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}

	return &Catalog{
		generation: generation,
		byID:       byID,
		byCategory: byCategory,
		ordered:    ordered,
	}
}

// Generation returns the monotonic generation number of this snapshot
func (c *Catalog) Generation() uint64 {
	return c.generation
}

// Len returns the number of services in the snapshot
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Get returns the service for id, if present
func (c *Catalog) Get(id string) (Service, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

// GetMany resolves ids against the catalog, silently dropping unknown ids.
// Callers needing strictness compare the result length with len(ids).
func (c *Catalog) GetMany(ids []string) []Service {
	services := make([]Service, 0, len(ids))
	for _, id := range ids {
		if svc, ok := c.byID[id]; ok {
			services = append(services, svc)
		}
	}
	return services
}

// All returns the services in source order
func (c *Catalog) All() []Service {
	services := make([]Service, 0, len(c.ordered))
	for _, id := range c.ordered {
		services = append(services, c.byID[id])
	}
	return services
}

// ByCategory returns the category grouping built at load time. The returned
// map and slices are shared; callers must not mutate them.
func (c *Catalog) ByCategory() map[Category][]Service {
	return c.byCategory
}

// DisplayName resolves an id to its display name, falling back to the raw
// id when the reference does not resolve.
func (c *Catalog) DisplayName(id string) string {
	if svc, ok := c.byID[id]; ok {
		return svc.Name
	}
	return id
}
