package source

import "fmt"

// Stems assigns chunk-identity stems that are unique within one load.
//
// Providers accept several extensions, so "intro.md" and "intro.txt" (or
// "faq.jsonl" and "faq.jsonl.gz") share a stem. The first source seen keeps
// the plain stem; a later source with the same kind and stem uses its full
// file name, then a numeric suffix if that is taken too. Providers yield in
// sorted order, so the assignment is deterministic.
//
// A Stems is not safe for concurrent use; create one per load.
type Stems struct {
	bySource map[string]string
	taken    map[string]struct{}
}

// NewStems returns an empty stem table.
func NewStems() *Stems {
	return &Stems{
		bySource: make(map[string]string),
		taken:    make(map[string]struct{}),
	}
}

// Assign returns it with a stem no other source of the same kind holds.
// Items from the same source always get the same stem.
func (s *Stems) Assign(it Item) Item {
	id := it.SourceID
	if id == "" {
		id = it.Stem
	}
	src := fmt.Sprintf("%d:%s", it.Kind, id)
	if stem, ok := s.bySource[src]; ok {
		it.Stem = stem
		return it
	}

	stem := it.Stem
	if s.isTaken(it.Kind, stem) && it.SourceID != "" {
		stem = it.SourceID
	}
	for n := 2; s.isTaken(it.Kind, stem); n++ {
		stem = fmt.Sprintf("%s~%d", it.Stem, n)
	}

	s.taken[fmt.Sprintf("%d:%s", it.Kind, stem)] = struct{}{}
	s.bySource[src] = stem
	it.Stem = stem
	return it
}

func (s *Stems) isTaken(k Kind, stem string) bool {
	_, ok := s.taken[fmt.Sprintf("%d:%s", k, stem)]
	return ok
}
