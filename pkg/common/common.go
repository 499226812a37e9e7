package common

// GraphView is a bounded, filtered slice of the persisted risk graph, shaped
// for direct consumption by a graph-visualization client.
//
// A view contains:
//   - Nodes: the vertices that passed the severity/recency filters
//   - Edges: only relations whose both endpoints are present in Nodes
type GraphView struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is one vertex in a GraphView. X and Y are a neutral layout seed;
// actual positioning is the client's concern.
type GraphNode struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Type     string  `json:"type"`
	Severity float64 `json:"severity"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// GraphEdge is a directed, labeled, weighted relation between two nodes of a
// GraphView, referenced by their persisted ids.
type GraphEdge struct {
	ID       int64   `json:"id"`
	Source   int64   `json:"source"`
	Target   int64   `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}
