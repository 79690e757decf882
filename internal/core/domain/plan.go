package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// RepairPlan is an ordered, dependency-respecting sequence of repair actions.
// Actions are added with the severity of the findings that produced them;
// Validate establishes a topological order over DependsOn with ties broken by
// ascending severity then id, so identical inputs always yield the same order.
type RepairPlan struct {
	actions map[ActionID]Action
	ranks   map[ActionID]Severity
	order   []ActionID
}

// NewRepairPlan creates an empty plan.
func NewRepairPlan() *RepairPlan {
	return &RepairPlan{
		actions: make(map[ActionID]Action),
		ranks:   make(map[ActionID]Severity),
	}
}

// AddAction adds an action with the severity of its originating finding.
// It returns an error if the id is already present.
func (p *RepairPlan) AddAction(a Action, severity Severity) error {
	if _, exists := p.actions[a.ID]; exists {
		return zerr.With(ErrActionAlreadyExists, "action_id", a.ID.String())
	}
	p.actions[a.ID] = a
	p.ranks[a.ID] = severity
	return nil
}

// Raise lifts an existing action's tie-break severity to at least the given
// level. Used when several findings map onto one action.
func (p *RepairPlan) Raise(id ActionID, severity Severity) {
	if current, ok := p.ranks[id]; ok && severity > current {
		p.ranks[id] = severity
	}
}

// Contains reports whether an action id is in the plan.
func (p *RepairPlan) Contains(id ActionID) bool {
	_, ok := p.actions[id]
	return ok
}

// Get returns the action with the given id.
func (p *RepairPlan) Get(id ActionID) (Action, bool) {
	a, ok := p.actions[id]
	return a, ok
}

// Len returns the number of actions in the plan.
func (p *RepairPlan) Len() int {
	return len(p.actions)
}

// Validate checks that every DependsOn id resolves within the plan and that
// the dependency relation is acyclic, then fixes the execution order.
func (p *RepairPlan) Validate() error {
	ids := make([]ActionID, 0, len(p.actions))
	inDegree := make(map[ActionID]int, len(p.actions))
	dependents := make(map[ActionID][]ActionID, len(p.actions))

	for id, a := range p.actions {
		ids = append(ids, id)
		for _, dep := range a.DependsOn {
			if _, exists := p.actions[dep]; !exists {
				err := zerr.With(ErrUnknownActionDependency, "action_id", id.String())
				return zerr.With(err, "dependency", dep.String())
			}
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []ActionID
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	p.order = make([]ActionID, 0, len(p.actions))
	for len(ready) > 0 {
		slices.SortFunc(ready, p.compareIDs)
		next := ready[0]
		ready = ready[1:]
		p.order = append(p.order, next)

		for _, dep := range dependents[next] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(p.order) != len(p.actions) {
		p.order = nil
		return p.buildCycleError(inDegree)
	}
	return nil
}

// compareIDs orders independent actions by ascending severity, then id.
func (p *RepairPlan) compareIDs(a, b ActionID) int {
	if ra, rb := p.ranks[a], p.ranks[b]; ra != rb {
		return int(ra) - int(rb)
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// buildCycleError walks the unordered remainder of the plan to reconstruct a
// cycle path for the error metadata.
func (p *RepairPlan) buildCycleError(inDegree map[ActionID]int) error {
	remaining := make([]ActionID, 0, len(inDegree))
	for id, deg := range inDegree {
		if deg > 0 {
			remaining = append(remaining, id)
		}
	}
	slices.Sort(remaining)

	visited := make(map[ActionID]int) // 0: unvisited, 1: visiting, 2: done
	var path []ActionID

	var visit func(id ActionID) string
	visit = func(id ActionID) string {
		visited[id] = 1
		path = append(path, id)
		for _, dep := range p.actions[id].DependsOn {
			if visited[dep] == 1 {
				cycle := ""
				start := slices.Index(path, dep)
				for i := start; i < len(path); i++ {
					cycle += path[i].String() + " -> "
				}
				return cycle + dep.String()
			}
			if visited[dep] == 0 {
				if cycle := visit(dep); cycle != "" {
					return cycle
				}
			}
		}
		visited[id] = 2
		path = path[:len(path)-1]
		return ""
	}

	for _, id := range remaining {
		if visited[id] == 0 {
			if cycle := visit(id); cycle != "" {
				return zerr.With(ErrPlanCycle, "cycle", cycle)
			}
		}
	}
	return ErrPlanCycle
}

// Walk returns an iterator yielding actions in execution order.
// It assumes Validate() has been called and returned nil.
func (p *RepairPlan) Walk() iter.Seq[Action] {
	return func(yield func(Action) bool) {
		for _, id := range p.order {
			if !yield(p.actions[id]) {
				return
			}
		}
	}
}

// Ordered returns the actions as a slice in execution order.
func (p *RepairPlan) Ordered() []Action {
	out := make([]Action, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.actions[id])
	}
	return out
}
