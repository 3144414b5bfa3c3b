// Package packager assembles the package manifest from build outputs.
//
// It expands the runtime deps list, merges component descriptors and the
// package identity record into one package path to source path mapping,
// copies component manifests beside the manifest, writes the build-ID index
// and emits a depfile listing every input of the run.
package packager
