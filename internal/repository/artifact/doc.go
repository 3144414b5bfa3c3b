// Package artifact writes pipeline outputs to disk.
//
// Outputs are only rewritten when their content changes. Untouched files
// keep their modification time, which lets restat-aware build systems skip
// everything downstream of an unchanged output.
package artifact
