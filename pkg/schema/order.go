package schema

import (
	"fmt"
	"strings"
)

// TopoLevels groups tables by foreign-key depth. Level 0 holds tables with
// no outgoing references, level n holds tables whose deepest parent sits at
// level n-1. Tables keep their input order within a level. Self references
// do not count toward depth.
func TopoLevels(tables []*TableMetadata) ([][]*TableMetadata, error) {
	byName := make(map[string]*TableMetadata, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(tables))
	depth := make(map[string]int, len(tables))

	var visit func(t *TableMetadata, path []string) error
	visit = func(t *TableMetadata, path []string) error {
		switch state[t.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(path, t.Name), " -> "))
		}
		state[t.Name] = visiting
		d := 0
		for _, parentName := range t.Parents() {
			parent, ok := byName[parentName]
			if !ok {
				return fmt.Errorf("%w: %s -> %s", ErrUnknownReference, t.Name, parentName)
			}
			if err := visit(parent, append(path[:len(path):len(path)], t.Name)); err != nil {
				return err
			}
			d = max(d, depth[parentName]+1)
		}
		depth[t.Name] = d
		state[t.Name] = done
		return nil
	}

	maxDepth := 0
	for _, t := range tables {
		if err := visit(t, nil); err != nil {
			return nil, err
		}
		maxDepth = max(maxDepth, depth[t.Name])
	}

	if len(tables) == 0 {
		return nil, nil
	}
	levels := make([][]*TableMetadata, maxDepth+1)
	for _, t := range tables {
		levels[depth[t.Name]] = append(levels[depth[t.Name]], t)
	}
	return levels, nil
}

// TopoSort flattens TopoLevels: every table appears after all of its parents.
func TopoSort(tables []*TableMetadata) ([]*TableMetadata, error) {
	levels, err := TopoLevels(tables)
	if err != nil {
		return nil, err
	}
	sorted := make([]*TableMetadata, 0, len(tables))
	for _, level := range levels {
		sorted = append(sorted, level...)
	}
	return sorted, nil
}
