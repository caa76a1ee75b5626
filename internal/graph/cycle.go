package graph

// detectCycle returns the name of one step participating in a dependency
// cycle, or "" if the graph is acyclic. A DFS with a recursion stack is used
// instead of plain Kahn's-algorithm indegree counting (which only reports
// that a cycle exists, not which node to blame) so the caller can name a
// participant in its error message.
func detectCycle(g *Graph) string {
	const (
		white = iota
		gray
		black
	)

	state := make([]int, len(g.Nodes))
	var stack []int

	var dfs func(int) string
	dfs = func(u int) string {
		state[u] = gray
		stack = append(stack, u)

		for _, v := range g.Nodes[u].Dependents {
			switch state[v] {
			case gray:
				return g.Nodes[v].Step.Name
			case white:
				if name := dfs(v); name != "" {
					return name
				}
			}
		}

		state[u] = black
		stack = stack[:len(stack)-1]
		return ""
	}

	for i := range g.Nodes {
		if state[i] == white {
			if name := dfs(i); name != "" {
				return name
			}
		}
	}

	return ""
}
