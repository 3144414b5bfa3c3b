// Package buildid writes the build-ID index of a package.
//
// Binaries are detected by their ELF magic, their stripped counterparts are
// inspected by a single batched readelf call, and every binary is mapped to
// the unstripped file holding its debug symbols. A binary readelf stays
// silent about is an error, never a silent omission.
package buildid
