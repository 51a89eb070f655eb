// Package config loads the runtime configuration of the snc-bounds command
// and the scenario files it evaluates.
//
// Runtime settings resolve through viper in the order flags, SNC_* environment
// variables, an optional config file, then defaults. Scenario files are YAML
// documents of pkg/config.ScenarioSpec; a file may hold several documents.
package config
