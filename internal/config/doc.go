// Package config defines the inputs of a packaging run.
//
// Values come from command-line flags, optionally layered over a YAML file
// so that build rules can share common settings. Validate fills defaults and
// reports every missing required input at once.
package config
