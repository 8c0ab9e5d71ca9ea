// Package config provides centralized configuration management for the
// screening package API. It loads configuration from environment variables
// and an optional YAML file, validates it, and exposes a type-safe Config
// struct to the rest of the application.
//
// # Configuration Sources
//
// Configuration is resolved in order of precedence:
//
//	1. YAML config file (config.yaml or SCREENAPI_CONFIG_FILE)
//	2. Environment variables with the SCREENAPI_ prefix
//	3. Struct-tag defaults
//
// # Environment Variables
//
//	SCREENAPI_SERVER_PORT=4567
//	SCREENAPI_CATALOG_PATH=data/services.json
//	SCREENAPI_STORAGE_PACKAGES_FILE=data/packages.json
//	SCREENAPI_LOGGING_LEVEL=info
//
// # Discount Tables
//
// Volume tiers and bundle definitions are configuration data rather than
// constants so pricing rules can be varied per deployment and tested in
// isolation. DefaultDiscounts supplies the stock tables when none are
// configured.
package config
