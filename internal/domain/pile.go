package domain

import "strings"

// Rand is the randomness a pile needs. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Pile is an ordered multiset of scraps: the bowl, the discard pile, or one
// player's hand. Insertion order is kept so hands display and edit stably.
type Pile struct {
	scraps []Scrap
}

func NewPile(scraps ...Scrap) *Pile {
	p := &Pile{}
	p.Append(scraps...)
	return p
}

func (p *Pile) Len() int {
	return len(p.scraps)
}

// Scraps returns a copy of the pile contents in order.
func (p *Pile) Scraps() []Scrap {
	out := make([]Scrap, len(p.scraps))
	copy(out, p.scraps)
	return out
}

func (p *Pile) Clone() *Pile {
	return &Pile{scraps: p.Scraps()}
}

func (p *Pile) Append(scraps ...Scrap) {
	p.scraps = append(p.scraps, scraps...)
}

// Add validates each candidate and appends those that pass. Rejected
// candidates are returned and never touch the pile.
func (p *Pile) Add(candidates []Scrap, maxLen int) (added []Scrap, rejected []RejectedScrap) {
	for _, c := range candidates {
		if err := ValidateScrapText(c.Text, maxLen); err != nil {
			rejected = append(rejected, RejectedScrap{Text: c.Text, Err: err})
			continue
		}
		added = append(added, c)
	}
	p.Append(added...)
	return added, rejected
}

// DrawRandom removes n distinct members chosen uniformly at random.
// n <= 0 draws nothing; n larger than the pile fails without mutating it.
func (p *Pile) DrawRandom(rng Rand, n int) ([]Scrap, error) {
	picked, err := p.pick(rng, n)
	if err != nil || len(picked) == 0 {
		return nil, err
	}
	drawn := make([]Scrap, 0, len(picked))
	for _, i := range picked {
		drawn = append(drawn, p.scraps[i])
	}
	p.removeIndexes(picked)
	return drawn, nil
}

// Sample is DrawRandom without removal.
func (p *Pile) Sample(rng Rand, n int) ([]Scrap, error) {
	picked, err := p.pick(rng, n)
	if err != nil || len(picked) == 0 {
		return nil, err
	}
	out := make([]Scrap, 0, len(picked))
	for _, i := range picked {
		out = append(out, p.scraps[i])
	}
	return out, nil
}

// pick chooses n distinct indexes with a partial Fisher-Yates shuffle.
func (p *Pile) pick(rng Rand, n int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > len(p.scraps) {
		return nil, ErrInsufficientSupply
	}
	idx := make([]int, len(p.scraps))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:n], nil
}

// DrawByValue removes one member per query. Exact matches win over
// case-insensitive ones; among equals the earliest member wins. Queries with
// no match are returned in notFound and leave the pile untouched.
func (p *Pile) DrawByValue(queries []string) (found []Scrap, notFound []string) {
	for _, q := range queries {
		i := p.indexOf(q)
		if i < 0 {
			notFound = append(notFound, q)
			continue
		}
		found = append(found, p.scraps[i])
		p.removeAt(i)
	}
	return found, notFound
}

// RemoveExact removes the first member whose text equals value exactly.
func (p *Pile) RemoveExact(value string) (Scrap, bool) {
	i := p.indexExact(value)
	if i < 0 {
		return Scrap{}, false
	}
	s := p.scraps[i]
	p.removeAt(i)
	return s, true
}

// RemoveByID removes the scrap instance with the given ID.
func (p *Pile) RemoveByID(id ScrapID) (Scrap, bool) {
	i := p.indexByID(id)
	if i < 0 {
		return Scrap{}, false
	}
	s := p.scraps[i]
	p.removeAt(i)
	return s, true
}

func (p *Pile) Contains(id ScrapID) bool {
	return p.indexByID(id) >= 0
}

// ReplaceExact rewrites the text of the first exact match in place.
func (p *Pile) ReplaceExact(oldValue, newValue string) (Scrap, bool) {
	i := p.indexExact(oldValue)
	if i < 0 {
		return Scrap{}, false
	}
	p.scraps[i].Text = newValue
	return p.scraps[i], true
}

// ReassignAll moves every member into target and empties p.
func (p *Pile) ReassignAll(target *Pile) []Scrap {
	moved := p.scraps
	p.scraps = nil
	target.Append(moved...)
	return moved
}

// Reset empties the pile and reports how many scraps it held.
func (p *Pile) Reset() int {
	n := len(p.scraps)
	p.scraps = nil
	return n
}

func (p *Pile) indexOf(query string) int {
	if i := p.indexExact(query); i >= 0 {
		return i
	}
	for i, s := range p.scraps {
		if strings.EqualFold(s.Text, query) {
			return i
		}
	}
	return -1
}

func (p *Pile) indexExact(value string) int {
	for i, s := range p.scraps {
		if s.Text == value {
			return i
		}
	}
	return -1
}

func (p *Pile) indexByID(id ScrapID) int {
	for i, s := range p.scraps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (p *Pile) removeAt(i int) {
	p.scraps = append(p.scraps[:i], p.scraps[i+1:]...)
}

func (p *Pile) removeIndexes(indexes []int) {
	drop := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		drop[i] = struct{}{}
	}
	kept := p.scraps[:0]
	for i, s := range p.scraps {
		if _, ok := drop[i]; ok {
			continue
		}
		kept = append(kept, s)
	}
	p.scraps = kept
}
