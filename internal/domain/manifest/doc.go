// Package manifest contains the core domain types of package assembly.
//
// RootSet turns file paths into package paths, Manifest holds the final
// package path to source path mapping with a single sorted serialization,
// and ClaimSet tracks package paths that the generic expanded-file pass must
// skip, failing loudly when a claim never matches a real file.
package manifest
