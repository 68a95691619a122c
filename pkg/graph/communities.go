package graph

import "sort"

// communityMaxIterations caps label propagation in case a sweep keeps
// finding moves.
const communityMaxIterations = 100

// Communities clusters nodes using label propagation over the
// undirected view of the graph. Parallel edges count as extra weight
// between their endpoints; self loops carry no grouping signal and are
// ignored. Clusters of one are dropped. Members are sorted by id and
// clusters are ordered by their smallest member, so output is
// deterministic.
func (g *DirectedMultigraph) Communities() [][]int64 {
	if len(g.nodes) == 0 {
		return nil
	}

	// Weighted undirected projection: node id to neighbor id to the
	// number of edges between them, in either direction.
	projection := make(map[int64]map[int64]int, len(g.nodes))
	for id := range g.nodes {
		projection[id] = make(map[int64]int)
	}
	for _, e := range g.edges {
		if e.Start == e.End {
			continue
		}
		projection[e.Start][e.End]++
		projection[e.End][e.Start]++
	}

	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Every node starts in its own community.
	community := make(map[int64]int, len(ids))
	for i, id := range ids {
		community[id] = i
	}

	// Sweep nodes in id order, updating in place so later nodes see the
	// moves already made this round. Updating a snapshot instead lets
	// two nodes swap labels forever on symmetric structures.
	for iter := 0; iter < communityMaxIterations; iter++ {
		changed := false

		for _, id := range ids {
			current := community[id]

			// Weighted vote over the neighbors' current communities.
			votes := make(map[int]int)
			for nbr, weight := range projection[id] {
				votes[community[nbr]] += weight
			}

			best, bestCount := current, 0
			for cand, count := range votes {
				if count > bestCount || (count == bestCount && cand > best) {
					best, bestCount = cand, count
				}
			}

			// A single shared edge is not enough to pull a node away;
			// without stronger support, ties go to the larger community
			// id so both sides settle on the same one.
			newCommunity := current
			if bestCount > 1 {
				newCommunity = best
			} else if bestCount > 0 && best > current {
				newCommunity = best
			}

			if newCommunity != current {
				community[id] = newCommunity
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	// Group members, dropping singletons. Iterating ids in order keeps
	// each cluster sorted.
	clusters := make(map[int][]int64)
	for _, id := range ids {
		clusters[community[id]] = append(clusters[community[id]], id)
	}

	var out [][]int64
	for _, members := range clusters {
		if len(members) > 1 {
			out = append(out, members)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
