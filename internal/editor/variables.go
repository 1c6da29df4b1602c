package editor

import "github.com/acopio/formflow/pkg/domain"

// ReachableVariables collects the names available to an "insert variable"
// picker at the given node: the gather-field names and declared variables
// of every node reachable from it along the edge projection, de-duplicated
// by name. The walk is a bounded depth-first traversal that refuses to
// revisit a node already present in its visited set, so condition-graph
// cycles terminate.
func (g *Graph) ReachableVariables(fromID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Edges point from the referenced instruction into the owner's
	// condition slot, so following Source -> Target walks the questions
	// answered before this one.
	adjacent := make(map[string][]string, len(g.edges))
	for _, e := range g.edges {
		adjacent[e.Source] = append(adjacent[e.Source], e.Target)
	}

	visited := make(map[string]bool)
	seen := make(map[string]bool)
	var names []string

	var walk func(id string)
	walk = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true

		in := domain.FindInstruction(g.doc.Instructions, id)
		if in == nil {
			return
		}
		if name := in.GatherName(); name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		for _, v := range in.Variables {
			if v.Name != "" && !seen[v.Name] {
				seen[v.Name] = true
				names = append(names, v.Name)
			}
		}

		for _, next := range adjacent[id] {
			walk(next)
		}
	}
	walk(fromID)
	return names
}
