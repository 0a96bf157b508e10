package builder

import (
	"strings"

	"github.com/mdgraph/backend/internal/kg/terms"
)

type Entity struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Category    terms.Category `json:"category"`
	Occurrences int            `json:"occurrences"`
	Sources     []string       `json:"sources"`
}

type Relationship struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Type     string `json:"type"`
	Strength int    `json:"strength"`
}

// NormalizeID lower-cases a term and joins its whitespace-separated words
// with "-". Punctuation is kept, so "Next.js" and "next js" stay distinct.
func NormalizeID(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), "-"))
}

// Accumulator folds per-document matches into corpus-wide entities and
// co-occurrence relationships. It is not safe for concurrent use; callers
// fan in on one goroutine.
type Accumulator struct {
	table RelationTable

	entities    map[string]*Entity
	entityOrder []string

	relations     map[string]*Relationship
	relationOrder []string
}

func NewAccumulator(table RelationTable) *Accumulator {
	if table == nil {
		table = DefaultRelationTable()
	}
	return &Accumulator{
		table:     table,
		entities:  make(map[string]*Entity),
		relations: make(map[string]*Relationship),
	}
}

// Add merges one document's matches. Every distinct pair of entities in the
// document gains one unit of strength, however often they occur.
func (a *Accumulator) Add(source string, matches []terms.Match) {
	var ids []string
	inDoc := make(map[string]struct{}, len(matches))

	for _, m := range matches {
		id := NormalizeID(m.Term)
		if id == "" || m.Count < 1 {
			continue
		}

		a.observe(id, m, source)

		if _, ok := inDoc[id]; !ok {
			inDoc[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a.relate(ids[i], ids[j])
		}
	}
}

func (a *Accumulator) observe(id string, m terms.Match, source string) {
	e, ok := a.entities[id]
	if !ok {
		e = &Entity{ID: id, Label: m.Term, Category: m.Category}
		a.entities[id] = e
		a.entityOrder = append(a.entityOrder, id)
	}

	e.Occurrences += m.Count
	for _, s := range e.Sources {
		if s == source {
			return
		}
	}
	e.Sources = append(e.Sources, source)
}

func (a *Accumulator) relate(from, to string) {
	key := pairKey(from, to)
	if r, ok := a.relations[key]; ok {
		r.Strength++
		return
	}

	a.relations[key] = &Relationship{
		Source:   from,
		Target:   to,
		Type:     a.table.Lookup(a.entities[from].Category, a.entities[to].Category),
		Strength: 1,
	}
	a.relationOrder = append(a.relationOrder, key)
}

// pairKey is independent of argument order.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Entities returns copies in first-observation order.
func (a *Accumulator) Entities() []Entity {
	out := make([]Entity, 0, len(a.entityOrder))
	for _, id := range a.entityOrder {
		e := *a.entities[id]
		e.Sources = append([]string(nil), e.Sources...)
		out = append(out, e)
	}
	return out
}

// Relationships returns copies in first-observation order.
func (a *Accumulator) Relationships() []Relationship {
	out := make([]Relationship, 0, len(a.relationOrder))
	for _, key := range a.relationOrder {
		out = append(out, *a.relations[key])
	}
	return out
}

func (a *Accumulator) Entity(id string) (Entity, bool) {
	e, ok := a.entities[id]
	if !ok {
		return Entity{}, false
	}
	cp := *e
	cp.Sources = append([]string(nil), e.Sources...)
	return cp, true
}
