// Package naming turns raw logo filenames and catalog names into comparable
// lookup keys and filesystem-safe base names.
//
// Every function here is pure: no filesystem access, no errors. Degenerate
// input yields "" rather than failing.
package naming
