package sim

// An EventGraph owns all the events of a scenario. Its topology is mutable
// while the scenario declares events and freezes once the scheduler starts
// stepping it. Event states keep mutating during the run.
type EventGraph struct {
	events     map[string]*Event
	order      []*Event
	dependents map[string][]string
	frozen     bool
}

// NewEventGraph creates an empty event graph.
func NewEventGraph() *EventGraph {
	return &EventGraph{
		events:     make(map[string]*Event),
		dependents: make(map[string][]string),
	}
}

// Event returns the event with the given ID.
func (g *EventGraph) Event(id string) (*Event, bool) {
	e, ok := g.events[id]
	return e, ok
}

// Events returns all the events in declaration order.
func (g *EventGraph) Events() []*Event {
	return append([]*Event(nil), g.order...)
}

// Len returns the number of events in the graph.
func (g *EventGraph) Len() int {
	return len(g.order)
}

// Dependents returns the IDs of the events that declared a dependency on
// the given event.
func (g *EventGraph) Dependents(id string) []string {
	return append([]string(nil), g.dependents[id]...)
}

// Frozen tells if the topology of the graph can still be changed.
func (g *EventGraph) Frozen() bool {
	return g.frozen
}

// Freeze closes the graph for topology changes and verifies that the
// dependency relation is a DAG. Freezing an already frozen graph is a
// no-op.
func (g *EventGraph) Freeze() error {
	if g.frozen {
		return nil
	}

	if err := g.checkAcyclic(); err != nil {
		return err
	}

	g.frozen = true

	return nil
}

func (g *EventGraph) add(e *Event) error {
	if g.frozen {
		return &GraphFrozenError{Op: "add event " + e.id}
	}

	if _, ok := g.events[e.id]; ok {
		panic("event " + e.id + " already in graph")
	}

	e.declOrder = len(g.order)
	g.events[e.id] = e
	g.order = append(g.order, e)

	return nil
}

// addEdges attaches the dependency edges of an event. The caller already
// made sure the event declares its dependencies only once.
func (g *EventGraph) addEdges(e *Event, deps []string) error {
	if g.frozen {
		return &GraphFrozenError{Op: "add edges to event " + e.id}
	}

	for _, dep := range deps {
		if _, ok := g.events[dep]; !ok {
			panic("dependency " + dep + " of event " + e.id +
				" is not in the graph")
		}
	}

	e.deps = append(e.deps, deps...)
	for _, dep := range deps {
		g.dependents[dep] = append(g.dependents[dep], e.id)
	}

	if err := g.checkAcyclic(); err != nil {
		e.deps = e.deps[:len(e.deps)-len(deps)]
		for _, dep := range deps {
			ids := g.dependents[dep]
			g.dependents[dep] = ids[:len(ids)-1]
		}
		return err
	}

	return nil
}

// checkAcyclic walks the dependency relation with an iterative
// three-color DFS and reports the first cycle found.
func (g *EventGraph) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g.events))

	for _, root := range g.order {
		if color[root.id] != white {
			continue
		}

		stack := []string{root.id}
		path := []string{}

		for len(stack) > 0 {
			id := stack[len(stack)-1]

			switch color[id] {
			case white:
				color[id] = gray
				path = append(path, id)
				for _, dep := range g.events[id].deps {
					switch color[dep] {
					case gray:
						return &CycleError{
							Path: append(cyclePrefix(path, dep), dep),
						}
					case white:
						stack = append(stack, dep)
					}
				}
			case gray:
				color[id] = black
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
			default:
				stack = stack[:len(stack)-1]
			}
		}
	}

	return nil
}

func cyclePrefix(path []string, start string) []string {
	for i, id := range path {
		if id == start {
			return append([]string(nil), path[i:]...)
		}
	}
	return append([]string(nil), path...)
}
