// Package graphcycle walks named reference graphs and fails closed on cycles.
package graphcycle

import "fmt"

type visitState uint8

const (
	stateOnPath visitState = iota + 1
	stateDone
)

// CycleError reports a cycle closing at Key.
type CycleError[K comparable] struct {
	Key K
}

// Error returns the error string.
func (e CycleError[K]) Error() string {
	return fmt.Sprintf("cycle detected at %v", e.Key)
}

// Graph is a directed graph reachable from Starts. Keys for which Known
// reports false are leaves; a nil Known treats every key as known.
type Graph[K comparable] struct {
	Known  func(K) bool
	Next   func(K) ([]K, error)
	Starts []K
}

func (g Graph[K]) known(key K) bool {
	return g.Known == nil || g.Known(key)
}

// Detect walks every edge reachable from g.Starts and returns CycleError for
// the first key reached again while it is still on the current path.
func Detect[K comparable](g Graph[K]) error {
	if g.Next == nil {
		return fmt.Errorf("cycle detect: next function is nil")
	}
	states := make(map[K]visitState, len(g.Starts))

	var visit func(key K) error
	visit = func(key K) error {
		switch states[key] {
		case stateOnPath:
			return CycleError[K]{Key: key}
		case stateDone:
			return nil
		}
		if !g.known(key) {
			return nil
		}
		states[key] = stateOnPath
		successors, err := g.Next(key)
		if err != nil {
			return err
		}
		for _, next := range successors {
			if err := visit(next); err != nil {
				return err
			}
		}
		states[key] = stateDone
		return nil
	}

	for _, start := range g.Starts {
		if err := visit(start); err != nil {
			return err
		}
	}
	return nil
}

// Chain follows single-successor links from start and returns every visited
// key in order, start included. next reports the successor of a key and
// whether one exists; an error from next stops the walk and is returned with
// the keys visited so far. Revisiting a key returns CycleError.
func Chain[K comparable](start K, next func(K) (K, bool, error)) ([]K, error) {
	if next == nil {
		return nil, fmt.Errorf("chain: next function is nil")
	}
	seen := make(map[K]bool)
	var chain []K
	for current := start; ; {
		if seen[current] {
			return chain, CycleError[K]{Key: current}
		}
		seen[current] = true
		chain = append(chain, current)

		successor, ok, err := next(current)
		if err != nil {
			return chain, err
		}
		if !ok {
			return chain, nil
		}
		current = successor
	}
}
