// Package app provides the operation-table plumbing shared by all apps,
// plus a small set of ready-made apps (email, calendar, filesystem, chat)
// used by scenarios.
package app

import (
	"fmt"
	"sync"

	"github.com/sarchlab/arena/sim"
)

// A Ctx carries one invocation into an operation handler, with typed
// accessors over the bound arguments.
type Ctx struct {
	Now  sim.VTimeInSec
	Args sim.Args
}

// String returns the named argument as a string.
func (c *Ctx) String(name string) string {
	s, _ := c.Args[name].(string)
	return s
}

// Float returns the named argument as a float64. Integer-typed values are
// widened.
func (c *Ctx) Float(name string) float64 {
	switch v := c.Args[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Bool returns the named argument as a bool.
func (c *Ctx) Bool(name string) bool {
	b, _ := c.Args[name].(bool)
	return b
}

// A Handler executes one operation against the state of its app.
type Handler func(c *Ctx) (any, error)

type opEntry struct {
	spec    sim.OpSpec
	handler Handler
}

// A Table is the registration table of one app type: a mapping from
// operation name to handler, effect class, and argument schema. It is built
// once at app initialization and consulted by the scheduler to invoke
// operations. An external tool-description generator can read the same
// specs.
type Table struct {
	appName string
	ops     map[string]opEntry
	order   []string
}

// NewTable creates an empty operation table for the named app.
func NewTable(appName string) *Table {
	return &Table{
		appName: appName,
		ops:     make(map[string]opEntry),
	}
}

// Register adds one operation to the table. Registering the same name twice
// is an initialization bug and panics.
func (t *Table) Register(spec sim.OpSpec, h Handler) {
	if _, ok := t.ops[spec.Name]; ok {
		panic("operation " + spec.Name + " registered twice on app " +
			t.appName)
	}

	t.ops[spec.Name] = opEntry{spec: spec, handler: h}
	t.order = append(t.order, spec.Name)
}

// A Base implements the sim.App contract over a Table. Concrete apps embed
// Base and register their operations at construction. Base serializes all
// invocations with a single mutex, which gives every app the
// critical-section discipline the scheduler requires for concurrent
// dispatch.
type Base struct {
	mu    sync.Mutex
	table *Table
}

// Init wires the base to its operation table.
func (b *Base) Init(table *Table) {
	b.table = table
}

// Name returns the name of the app.
func (b *Base) Name() string {
	return b.table.appName
}

// Operations lists the operations of the app in registration order.
func (b *Base) Operations() []sim.OpSpec {
	specs := make([]sim.OpSpec, 0, len(b.table.order))
	for _, name := range b.table.order {
		specs = append(specs, b.table.ops[name].spec)
	}
	return specs
}

// Operation returns the spec of a single operation.
func (b *Base) Operation(name string) (sim.OpSpec, bool) {
	e, ok := b.table.ops[name]
	return e.spec, ok
}

// Invoke validates the arguments of a call against the operation schema and
// executes the handler under the app lock.
func (b *Base) Invoke(c sim.Call) (any, error) {
	e, ok := b.table.ops[c.Op]
	if !ok {
		return nil, fmt.Errorf("app %s has no operation %s",
			b.table.appName, c.Op)
	}

	if err := validateArgs(e.spec, c.Args); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return e.handler(&Ctx{Now: c.Now, Args: c.Args})
}

func validateArgs(spec sim.OpSpec, args sim.Args) error {
	for _, a := range spec.Args {
		v, ok := args[a.Name]
		if !ok {
			if a.Required {
				return fmt.Errorf("operation %s requires argument %s",
					spec.Name, a.Name)
			}
			continue
		}

		if !typeMatches(a.Type, v) {
			return fmt.Errorf("argument %s of operation %s must be %s",
				a.Name, spec.Name, a.Type)
		}
	}

	return nil
}

func typeMatches(typeName string, v any) bool {
	switch typeName {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		switch v.(type) {
		case int, int64, float32, float64:
			return true
		}
		return false
	case "bool":
		_, ok := v.(bool)
		return ok
	case "any", "":
		return true
	}
	return false
}
