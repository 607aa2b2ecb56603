// Package layout computes node positions for a directed graph.
//
// Callers describe the graph through a [Graph] builder (SetNode with a
// footprint, SetEdge for each connection, a rank [Direction]) and hand it to
// a [Solver]. After Layout returns, Graph.Node reports each node's center in
// layout units with the origin top-left.
//
// # Solvers
//
//   - [Graphviz] runs the Graphviz dot engine (hierarchical, rank-based)
//   - [Cached] memoizes any solver in a [cache.Cache]
//   - [SolverFunc] adapts a function, mostly for tests
//
// A Graph is not reused across requests. Build a new one per layout.
package layout
