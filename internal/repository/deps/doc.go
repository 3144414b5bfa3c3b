// Package deps expands a runtime-deps list into the set of files it names.
package deps
