package chunk

// Seed returns the sample topology shown when no graph is supplied: two
// generators feeding one output node.
//
// The seed also carries an edge from the output node to itself. It is kept
// as shipped; [Validate] flags it only under [Strict].
func Seed() Elements {
	return Elements{
		Nodes: []Node{
			{ID: "1", Roles: []NodeRole{Output}, Inputs: []string{"2", "3"}, Outputs: []string{}},
			{ID: "2", Roles: []NodeRole{Generator}, Inputs: []string{}, Outputs: []string{"1"}},
			{ID: "3", Roles: []NodeRole{Generator}, Inputs: []string{}, Outputs: []string{"1"}},
		},
		Edges: []Edge{
			NewEdge("1", "1"),
		},
	}
}
