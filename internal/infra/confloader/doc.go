// Package confloader provides configuration loading mechanism.
//
// This package implements a flexible configuration loader that supports
// multiple sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, maps
//   - Watch Support: reload callbacks on config file changes
//   - Type Safety: unmarshaling into koanf-tagged structs
//
// Priority (highest to lowest):
//
//  1. Command-line overrides (loaded as maps)
//  2. Environment variables (SAFEWORD_ prefix)
//  3. Configuration files
//  4. Default values
package confloader
