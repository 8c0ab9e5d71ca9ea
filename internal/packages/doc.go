// Package packages persists saved screening packages. Storage is a simple
// keyed record store behind the Repository interface; the shipped
// implementation is a JSON file with atomic replace-on-write.
package packages
