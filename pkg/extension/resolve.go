package extension

import (
	"github.com/fustilio/glost/pkg/errors"
)

// Resolve computes the execution order for the selected extensions (all
// of them when only is empty): every extension follows all of its
// dependencies that are also in the selection, and extensions with no
// ordering relationship keep their relative registration order.
//
// Dependency handling:
//
//   - a dependency inside the selection is visited first
//   - a dependency registered but excluded by only is ignored; the
//     caller chose to run without it, and the requires contract will
//     catch any resulting gap at run time
//   - a dependency id registered nowhere is a MISSING_EXTENSION failure
//
// A dependency chain that reaches back to an extension currently on the
// DFS stack is a CYCLE_DETECTED failure naming the offending id. On any
// failure no order is returned and nothing should execute.
//
// Cycle detection runs in O(N+E) using depth-first search with
// white/gray/black coloring.
func (r *Registry) Resolve(only []string) ([]*Extension, error) {
	selected, err := r.selection(only)
	if err != nil {
		return nil, err
	}

	const (
		white = iota // unvisited
		gray         // on stack
		black        // ordered
	)

	inSet := make(map[string]*Extension, len(selected))
	for _, e := range selected {
		inSet[e.ID] = e
	}

	color := make(map[string]int, len(selected))
	order := make([]*Extension, 0, len(selected))

	var visit func(e *Extension) error
	visit = func(e *Extension) error {
		color[e.ID] = gray
		for _, depID := range e.Dependencies {
			dep, ok := inSet[depID]
			if !ok {
				if !r.Has(depID) {
					return errors.New(errors.ErrCodeMissingExtension,
						"extension %q depends on unknown extension %q", e.ID, depID)
				}
				continue
			}
			switch color[depID] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case gray:
				return errors.New(errors.ErrCodeCycle,
					"dependency cycle through extension %q", depID)
			}
		}
		color[e.ID] = black
		order = append(order, e)
		return nil
	}

	for _, e := range selected {
		if color[e.ID] == white {
			if err := visit(e); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}
