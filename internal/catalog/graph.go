// Knowledge-graph BFS: a bidirectional, node-capped in-process breadth-
// first walk over wiki-link edges, expanding both forward and backward
// edges and stopping at whichever of (depth limit, node cap) comes first.
package catalog

import (
	"context"
	"fmt"
)

// GraphNode is one note reached by the BFS, with its tags and link
// degree (count of distinct edges touching it) attached.
type GraphNode struct {
	NoteID string
	Depth  int
	Degree int
	Tags   []string
}

// GraphEdge is a deduplicated (source, target, kind) edge surfaced by the
// traversal.
type GraphEdge struct {
	Source string
	Target string
	Kind   string
}

// Graph is the result of a knowledge-graph BFS.
type Graph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

type edgeRow struct {
	source, target, kind string
}

// KnowledgeGraphBFS starts from center if non-empty, else from the union
// of all endpoints of the edge table. It expands forward and backward
// edges breadth-first, stopping at depth (inclusive) or nodeCap
// (whichever is reached first), deduplicating edges by (source, target,
// kind) and attaching link degree and tag list to every node it keeps.
func (c *Catalog) KnowledgeGraphBFS(ctx context.Context, center string, depth, nodeCap int) (*Graph, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT source_id, target_id, kind FROM wiki_links`)
	if err != nil {
		return nil, fmt.Errorf("loading wiki-link edges: %w", err)
	}
	var all []edgeRow
	for rows.Next() {
		var e edgeRow
		if err := rows.Scan(&e.source, &e.target, &e.kind); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning wiki-link edge: %w", err)
		}
		all = append(all, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	adjacency := make(map[string][]edgeRow)
	degree := make(map[string]int)
	for _, e := range all {
		adjacency[e.source] = append(adjacency[e.source], e)
		adjacency[e.target] = append(adjacency[e.target], edgeRow{source: e.target, target: e.source, kind: e.kind})
		degree[e.source]++
		degree[e.target]++
	}

	var roots []string
	if center != "" {
		roots = []string{center}
	} else {
		seen := make(map[string]struct{})
		for _, e := range all {
			if _, ok := seen[e.source]; !ok {
				seen[e.source] = struct{}{}
				roots = append(roots, e.source)
			}
			if _, ok := seen[e.target]; !ok {
				seen[e.target] = struct{}{}
				roots = append(roots, e.target)
			}
		}
	}

	visited := make(map[string]int)
	order := make([]string, 0, nodeCap)
	type frontierEntry struct {
		id    string
		depth int
	}
	queue := make([]frontierEntry, 0, len(roots))
	for _, r := range roots {
		if _, ok := visited[r]; ok {
			continue
		}
		if nodeCap > 0 && len(order) >= nodeCap {
			break
		}
		visited[r] = 0
		order = append(order, r)
		queue = append(queue, frontierEntry{id: r, depth: 0})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= depth {
			continue
		}
		for _, e := range adjacency[cur.id] {
			if _, ok := visited[e.target]; ok {
				continue
			}
			if nodeCap > 0 && len(order) >= nodeCap {
				continue
			}
			visited[e.target] = cur.depth + 1
			order = append(order, e.target)
			queue = append(queue, frontierEntry{id: e.target, depth: cur.depth + 1})
		}
	}

	// Report edges from the raw (source, target, kind) rows, never from
	// the adjacency map used for traversal: adjacency stores a synthetic
	// reversed entry for every edge so BFS can walk it backward, and
	// reusing those entries for reporting silently flips the direction
	// of any edge visited from its target rather than its source.
	seenEdge := make(map[GraphEdge]struct{})
	var edges []GraphEdge
	for _, e := range all {
		if _, ok := visited[e.source]; !ok {
			continue
		}
		if _, ok := visited[e.target]; !ok {
			continue
		}
		ge := GraphEdge{Source: e.source, Target: e.target, Kind: e.kind}
		if _, dup := seenEdge[ge]; dup {
			continue
		}
		seenEdge[ge] = struct{}{}
		edges = append(edges, ge)
	}

	nodes := make([]GraphNode, 0, len(order))
	for _, id := range order {
		tags, err := c.tagsForNote(ctx, id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, GraphNode{NoteID: id, Depth: visited[id], Degree: degree[id], Tags: tags})
	}

	return &Graph{Nodes: nodes, Edges: edges}, nil
}
