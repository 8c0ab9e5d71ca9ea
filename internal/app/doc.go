// Package app wires the application together and manages its lifecycle.
//
// NewApplication loads configuration, initializes logging and
// observability, loads the service catalog, and builds the selection
// service, package repository, and HTTP router. Run starts the server and
// blocks until an interrupt or a fatal server error, then shuts everything
// down gracefully.
//
// Initialization order:
//
//	1. Load configuration from environment and optional YAML file
//	2. Initialize the structured logger
//	3. Initialize OpenTelemetry trace and metric providers
//	4. Load the service catalog into an atomically swappable store
//	5. Build the rules validator and pricing engine from config
//	6. Open the saved-package repository
//	7. Assemble middleware, handlers, and the HTTP server
package app
