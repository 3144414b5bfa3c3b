// Package descriptor loads component descriptor files.
//
// A descriptor file is a JSON or YAML sequence of records, each carrying a
// "type" discriminator. Either the whole sequence describes one component or
// each item is itself a sequence describing one component.
package descriptor
