package builder

// MaxNodeSize caps node size so frequent terms do not swamp the layout.
const MaxNodeSize = 20

type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group int    `json:"group"`
	Size  int    `json:"size"`
}

type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
	Type   string `json:"type,omitempty"`
}

// Graph is the renderer-facing shape. Nodes and Links are never nil so an
// empty graph encodes as {"nodes":[],"links":[]}.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

func EmptyGraph() *Graph {
	return &Graph{Nodes: []Node{}, Links: []Link{}}
}

func (g *Graph) Empty() bool {
	return len(g.Nodes) == 0 && len(g.Links) == 0
}

func NodeSize(occurrences int) int {
	if size := occurrences * 2; size < MaxNodeSize {
		return size
	}
	return MaxNodeSize
}

// Build converts the accumulated state into a Graph.
func Build(acc *Accumulator) *Graph {
	g := EmptyGraph()

	for _, e := range acc.Entities() {
		g.Nodes = append(g.Nodes, Node{
			ID:    e.ID,
			Label: e.Label,
			Group: e.Category.Group(),
			Size:  NodeSize(e.Occurrences),
		})
	}

	for _, r := range acc.Relationships() {
		g.Links = append(g.Links, Link{
			Source: r.Source,
			Target: r.Target,
			Value:  r.Strength,
			Type:   r.Type,
		})
	}

	return g
}
