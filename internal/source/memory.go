package source

import "iter"

// Memory is a fixed, in-memory list of items.
type Memory []Item

// Items implements Provider.
func (m Memory) Items() iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for _, it := range m {
			if !yield(it, nil) {
				return
			}
		}
	}
}

type chain []Provider

// Chain concatenates providers. Items from earlier providers come first.
func Chain(providers ...Provider) Provider {
	out := make(chain, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Items implements Provider.
func (c chain) Items() iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for _, p := range c {
			for it, err := range p.Items() {
				if !yield(it, err) {
					return
				}
			}
		}
	}
}

var (
	_ Provider = Memory(nil)
	_ Provider = chain(nil)
)
