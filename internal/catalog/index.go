package catalog

import "logonorm/internal/naming"

// Precedence orders entity kinds from highest to lowest. When two kinds
// register the same normalized key, the earlier kind's canonical name wins.
// Within a kind, later entities overwrite earlier ones.
var Precedence = []Kind{KindLeague, KindTeam}

// Match is an index hit.
type Match struct {
	Canonical string
	Kind      Kind
	EntityID  string
}

// Index maps normalized keys to canonical display names.
type Index struct {
	entries map[string]Match
}

type layer map[string]Match

// BuildIndex builds the canonical index from catalog entities using the
// package Precedence.
func BuildIndex(teams []Team, leagues []League) *Index {
	return BuildIndexWithPrecedence(Entities(teams, leagues), Precedence)
}

// BuildIndexWithPrecedence builds an index from entities, merging the
// per-kind layers in the supplied order (highest first). Kinds absent from
// precedence are ignored.
//
// Each variant is registered under its normalized key. When sanitizing a
// variant for use as a file name changes its key, the sanitized key is
// registered as an alias; aliases never displace a direct key.
func BuildIndexWithPrecedence(entities []Entity, precedence []Kind) *Index {
	direct := make(map[Kind]layer, len(precedence))
	alias := make(map[Kind]layer, len(precedence))
	for _, k := range precedence {
		direct[k] = layer{}
		alias[k] = layer{}
	}

	for _, e := range entities {
		d, ok := direct[e.Kind()]
		if !ok {
			continue
		}
		canonical := e.Canonical()
		if canonical == "" {
			continue
		}
		m := Match{Canonical: canonical, Kind: e.Kind(), EntityID: e.ID()}
		for _, v := range e.Variants() {
			key := naming.Normalize(v)
			if key == "" {
				continue
			}
			d[key] = m
			if sk := naming.Normalize(naming.Sanitize(v)); sk != "" && sk != key {
				alias[e.Kind()][sk] = m
			}
		}
	}

	idx := &Index{entries: map[string]Match{}}
	merge := func(layers map[Kind]layer) {
		for i := len(precedence) - 1; i >= 0; i-- {
			for key, m := range layers[precedence[i]] {
				idx.entries[key] = m
			}
		}
	}
	merge(alias)
	merge(direct)
	return idx
}

// Lookup returns the canonical name for a normalized key.
func (x *Index) Lookup(key string) (string, bool) {
	m, ok := x.entries[key]
	return m.Canonical, ok
}

// Match returns the full index hit for a normalized key.
func (x *Index) Match(key string) (Match, bool) {
	m, ok := x.entries[key]
	return m, ok
}

// Len reports the number of keys.
func (x *Index) Len() int {
	return len(x.entries)
}
