// Package network builds the entity co-occurrence tables: paragraph rows are
// exploded into entity-context assignments, collected into a bipartite graph,
// and projected onto a weighted entity-entity edge list.
package network

// Assignment links one entity to one context (a paragraph or a topic).
type Assignment struct {
	Entity  string `json:"entity"`
	Context string `json:"context"`
}

// Edge is one row of the projected entity-entity table.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Bipartite is a simple unweighted bipartite graph over entities and
// contexts. Duplicate edges collapse; node order is first-seen per partition.
type Bipartite struct {
	entities []string
	contexts []string

	entityContexts map[string]map[string]struct{}
}

// BuildBipartite collects assignments into a bipartite graph.
func BuildBipartite(assignments []Assignment) *Bipartite {
	b := &Bipartite{
		entityContexts: make(map[string]map[string]struct{}),
	}
	seenContexts := make(map[string]struct{})

	for _, a := range assignments {
		contexts, ok := b.entityContexts[a.Entity]
		if !ok {
			contexts = make(map[string]struct{})
			b.entityContexts[a.Entity] = contexts
			b.entities = append(b.entities, a.Entity)
		}
		contexts[a.Context] = struct{}{}

		if _, ok := seenContexts[a.Context]; !ok {
			seenContexts[a.Context] = struct{}{}
			b.contexts = append(b.contexts, a.Context)
		}
	}

	return b
}

// Entities returns the entity partition in first-seen order.
func (b *Bipartite) Entities() []string {
	return b.entities
}

// Contexts returns the context partition in first-seen order.
func (b *Bipartite) Contexts() []string {
	return b.contexts
}

// Project connects two entities iff they share at least one context. Each
// pair appears once, with the earlier-seen entity as source; enumeration
// follows entity first-seen order. Weights are left at zero.
func (b *Bipartite) Project() []Edge {
	var edges []Edge
	for i, source := range b.entities {
		for _, target := range b.entities[i+1:] {
			if shareContext(b.entityContexts[source], b.entityContexts[target]) {
				edges = append(edges, Edge{Source: source, Target: target})
			}
		}
	}
	return edges
}

// Weight attaches to every edge the number of projected edges sharing its
// source. Entities without any co-occurring neighbor have no edges and are
// absent from the result.
func Weight(edges []Edge) []Edge {
	perSource := make(map[string]int, len(edges))
	for _, edge := range edges {
		perSource[edge.Source]++
	}

	weighted := make([]Edge, len(edges))
	for i, edge := range edges {
		edge.Weight = perSource[edge.Source]
		weighted[i] = edge
	}
	return weighted
}

func shareContext(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for context := range a {
		if _, ok := b[context]; ok {
			return true
		}
	}
	return false
}
