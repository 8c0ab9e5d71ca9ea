package packages

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository stores packages in a single JSON file of the form
// {"packages": [...]}. Writes go through a temp file and rename so a crash
// mid-write never corrupts the store. A missing file reads as empty; a
// corrupt one is logged and treated as empty rather than blocking reads.
type FileRepository struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

type fileDoc struct {
	Packages []Package `json:"packages"`
}

// NewFileRepository creates the repository, ensuring the data file exists
func NewFileRepository(path string, logger *slog.Logger) (*FileRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo := &FileRepository{
		path:   path,
		logger: logger.With(slog.String("component", "package_repository")),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := repo.write(fileDoc{Packages: []Package{}}); err != nil {
			return nil, fmt.Errorf("failed to initialize package store: %w", err)
		}
	}

	return repo, nil
}

// All returns every saved package
func (r *FileRepository) All() ([]Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	return doc.Packages, nil
}

// Find returns the package for id or ErrNotFound
func (r *FileRepository) Find(id string) (Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return Package{}, err
	}
	for _, pkg := range doc.Packages {
		if pkg.ID == id {
			return pkg, nil
		}
	}
	return Package{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// FindMostRecent returns the most recently updated package
func (r *FileRepository) FindMostRecent() (Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return Package{}, err
	}
	if len(doc.Packages) == 0 {
		return Package{}, ErrNotFound
	}

	recent := doc.Packages[0]
	for _, pkg := range doc.Packages[1:] {
		if pkg.UpdatedAt.After(recent.UpdatedAt) {
			recent = pkg
		}
	}
	return recent, nil
}

// Create appends a new package
func (r *FileRepository) Create(pkg Package) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	for _, existing := range doc.Packages {
		if existing.ID == pkg.ID {
			return fmt.Errorf("package %s already exists", pkg.ID)
		}
	}
	doc.Packages = append(doc.Packages, pkg)
	return r.write(doc)
}

// Update replaces a stored package in place
func (r *FileRepository) Update(pkg Package) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	for i, existing := range doc.Packages {
		if existing.ID == pkg.ID {
			doc.Packages[i] = pkg
			return r.write(doc)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, pkg.ID)
}

// Delete removes a stored package
func (r *FileRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	kept := doc.Packages[:0]
	found := false
	for _, pkg := range doc.Packages {
		if pkg.ID == id {
			found = true
			continue
		}
		kept = append(kept, pkg)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc.Packages = kept
	return r.write(doc)
}

// Exists reports whether a package id is stored
func (r *FileRepository) Exists(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return false, err
	}
	for _, pkg := range doc.Packages {
		if pkg.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *FileRepository) read() (fileDoc, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return fileDoc{Packages: []Package{}}, nil
	}
	if err != nil {
		return fileDoc{}, fmt.Errorf("failed to read package store: %w", err)
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Warn("package store is corrupt, treating as empty",
			slog.String("path", r.path),
			slog.String("error", err.Error()))
		return fileDoc{Packages: []Package{}}, nil
	}
	if doc.Packages == nil {
		doc.Packages = []Package{}
	}
	return doc, nil
}

func (r *FileRepository) write(doc fileDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode package store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".packages-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write package store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close package store: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace package store: %w", err)
	}
	return nil
}
