// Package catalog provides the in-memory index of screening service
// definitions. A Catalog is an immutable per-generation snapshot; the Store
// owns the current snapshot and replaces it with a single atomic pointer
// swap on reload, so concurrent readers always observe a fully-built
// generation, never a partial one.
//
// Prices are stored as integer cents from the moment a record is parsed.
// Every downstream computation (rules, pricing) stays in integer cents;
// decimal dollars exist only at the JSON boundary.
package catalog
