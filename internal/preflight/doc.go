// Package preflight provides readiness checks for the catalog service, the
// matching service, and the filesystem paths logonorm writes to.
//
// The CLI "logonorm check" command runs RunAll and prints each Result.
// The individual checks are also usable on their own.
package preflight
