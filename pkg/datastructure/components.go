package datastructure

// computeComponents labels the connected components of the undirected graph with an
// iterative depth first search. Two vertices can reach each other iff their labels match.
func (g *Graph) computeComponents() {
	n := g.NumberOfVertices()
	g.components = make([]Index, n)
	for u := range g.components {
		g.components[u] = INVALID_VERTEX_ID
	}

	stack := make([]Index, 0, 64)
	label := Index(0)
	for s := 0; s < n; s++ {
		if g.components[s] != INVALID_VERTEX_ID {
			continue
		}
		g.components[s] = label
		stack = append(stack[:0], Index(s))
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			g.ForOutEdgesOf(u, func(arc OutArc, _ *Edge) {
				if g.components[arc.head] == INVALID_VERTEX_ID {
					g.components[arc.head] = label
					stack = append(stack, arc.head)
				}
			})
		}
		label++
	}
	g.numComponents = int(label)
}

func (g *Graph) GetComponent(u Index) Index {
	return g.components[u]
}

func (g *Graph) NumberOfComponents() int {
	return g.numComponents
}

func (g *Graph) SameComponent(u, v Index) bool {
	return g.components[u] == g.components[v]
}
