package plan

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
)

// key identifies a step uniquely for edge-resolution purposes.
type key struct {
	kind     Kind
	bookmark string
}

func stepKey(s Step) key { return key{s.Kind(), s.Bookmark()} }

func refKey[R interface{ Bookmark() string }](kind Kind, r R) key {
	return key{kind, r.Bookmark()}
}

// schedule performs a deterministic topological sort of nodes given
// constraints, using Kahn's algorithm with a priority-queue tie-break
// so that among simultaneously ready steps, the result is always the
// same regardless of map/slice iteration order upstream.
func schedule(nodes []node, constraints []Constraint) ([]Step, error) {
	byKey := make(map[key]Step, len(nodes))
	for _, n := range nodes {
		byKey[stepKey(n.step)] = n.step
	}

	// indegree and adjacency, keyed by the same identity.
	indegree := make(map[key]int, len(nodes))
	edges := make(map[key][]key)
	for k := range byKey {
		indegree[k] = 0
	}

	addEdge := func(from, to key) error {
		if _, ok := byKey[from]; !ok {
			return nil // referenced step isn't part of this plan; ignore
		}
		if _, ok := byKey[to]; !ok {
			return nil
		}
		edges[from] = append(edges[from], to)
		indegree[to]++
		return nil
	}

	for _, c := range constraints {
		var from, to key
		switch c := c.(type) {
		case PushOrder:
			from, to = refKey(KindPush, c.Before), refKey(KindPush, c.After)
		case PushBeforeRetarget:
			from, to = refKey(KindPush, c.Push), refKey(KindUpdateBase, c.Update)
		case RetargetBeforePush:
			from, to = refKey(KindUpdateBase, c.Update), refKey(KindPush, c.Push)
		case PushBeforeCreate:
			from, to = refKey(KindPush, c.Push), refKey(KindCreatePr, c.Create)
		case CreateOrder:
			from, to = refKey(KindCreatePr, c.Before), refKey(KindCreatePr, c.After)
		case CreateBeforePublish:
			from, to = refKey(KindCreatePr, c.Create), refKey(KindPublishPr, c.Publish)
		case UpdateBeforePublish:
			from, to = refKey(KindUpdateBase, c.Update), refKey(KindPublishPr, c.Publish)
		default:
			return nil, fmt.Errorf("plan: unhandled constraint type %T", c)
		}
		if err := addEdge(from, to); err != nil {
			return nil, err
		}
	}

	pq := make(readyQueue, 0, len(nodes))
	for k, deg := range indegree {
		if deg == 0 {
			heap.Push(&pq, byKey[k])
		}
	}

	out := make([]Step, 0, len(nodes))
	remaining := make(map[key]int, len(indegree))
	for k, v := range indegree {
		remaining[k] = v
	}

	for pq.Len() > 0 {
		s := heap.Pop(&pq).(Step)
		out = append(out, s)
		for _, to := range edges[stepKey(s)] {
			remaining[to]--
			if remaining[to] == 0 {
				heap.Push(&pq, byKey[to])
			}
		}
	}

	if len(out) != len(nodes) {
		return nil, cycleError(byKey, remaining)
	}
	return out, nil
}

// readyQueue orders ready steps by (Kind, StackPosition, Bookmark),
// matching the scheduler's deterministic tie-break.
type readyQueue []Step

func (q readyQueue) Len() int { return len(q) }
func (q readyQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	if a.StackPosition() != b.StackPosition() {
		return a.StackPosition() < b.StackPosition()
	}
	return a.Bookmark() < b.Bookmark()
}
func (q readyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *readyQueue) Push(x any)        { *q = append(*q, x.(Step)) }
func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// cycleError names every step left unscheduled when Kahn's algorithm
// stalls, so a planning bug surfaces as a readable internal error
// instead of a silently truncated plan.
func cycleError(byKey map[key]Step, remaining map[key]int) error {
	var names []string
	for k, deg := range remaining {
		if deg > 0 {
			names = append(names, fmt.Sprintf("%s(%s)", k.kind, k.bookmark))
		}
	}
	sort.Strings(names)
	_ = byKey
	return fmt.Errorf("plan: dependency cycle among steps: %s", strings.Join(names, ", "))
}
