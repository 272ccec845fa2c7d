// Package catalog models the SportsGameOdds team and league catalog and
// builds the canonical name index the matchers resolve against.
//
// Entities are fetched per sport with cursor pagination (Client), merged
// into an Index by an explicit kind precedence, projected into capped
// descriptor lists for the AI matcher (Describe), and searched by substring
// for the lookup command (Search). Nothing here is persisted; every run
// rebuilds the index from fresh catalog data.
package catalog
