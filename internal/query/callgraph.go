package query

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/repolens/internal/cache"
	"github.com/mvp-joe/repolens/internal/minimap"
)

// CallRelation is one direction of a call-graph answer.
type CallRelation struct {
	Symbol string
	Paths  []string // files contributing the edge, sorted
}

// CallGraph is a repository-wide view of the best-effort call edges from
// every successfully extracted minimap. Callee names are syntactic; edges
// to symbols declared in other files stay unresolved.
type CallGraph struct {
	g        graph.Graph[string, string]
	edgeFile map[[2]string]map[string]struct{}
}

// BuildCallGraph folds every minimap's call edges into one directed graph.
func BuildCallGraph(entries []*cache.Entry) *CallGraph {
	cg := &CallGraph{
		g:        graph.New(graph.StringHash, graph.Directed()),
		edgeFile: make(map[[2]string]map[string]struct{}),
	}

	for _, entry := range entries {
		if entry.Minimap == nil || entry.Minimap.Status != minimap.StatusOK {
			continue
		}
		for _, edge := range entry.Minimap.Calls {
			// AddVertex/AddEdge reject duplicates; repeats are expected.
			_ = cg.g.AddVertex(edge.Caller)
			_ = cg.g.AddVertex(edge.Callee)
			_ = cg.g.AddEdge(edge.Caller, edge.Callee)

			key := [2]string{edge.Caller, edge.Callee}
			if cg.edgeFile[key] == nil {
				cg.edgeFile[key] = make(map[string]struct{})
			}
			cg.edgeFile[key][entry.Path] = struct{}{}
		}
	}
	return cg
}

// Callees returns the symbols that name calls directly, sorted by name.
func (cg *CallGraph) Callees(name string) ([]CallRelation, error) {
	adjacency, err := cg.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	return cg.relations(name, adjacency, false), nil
}

// Callers returns the symbols that directly call name, sorted by name.
func (cg *CallGraph) Callers(name string) ([]CallRelation, error) {
	predecessors, err := cg.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	return cg.relations(name, predecessors, true), nil
}

func (cg *CallGraph) relations(name string, m map[string]map[string]graph.Edge[string], incoming bool) []CallRelation {
	neighbors, ok := m[name]
	if !ok {
		return nil
	}

	relations := make([]CallRelation, 0, len(neighbors))
	for other := range neighbors {
		key := [2]string{name, other}
		if incoming {
			key = [2]string{other, name}
		}

		var paths []string
		for path := range cg.edgeFile[key] {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		relations = append(relations, CallRelation{Symbol: other, Paths: paths})
	}

	sort.Slice(relations, func(i, j int) bool {
		return relations[i].Symbol < relations[j].Symbol
	})
	return relations
}
