// Package component defines the typed descriptors of one logical component:
// manifest descriptors copied into the package metadata directory and
// resource descriptors placed at an explicit package path.
package component
