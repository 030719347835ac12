package app

import (
	"fmt"
	"sort"

	"github.com/sarchlab/arena/sim"
)

// A CalendarEvent is one entry in the calendar app. Times are simulated
// seconds from the scenario start.
type CalendarEvent struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// A Calendar is an in-memory calendar app.
type Calendar struct {
	Base

	entries map[string]*CalendarEvent
	nextID  int
}

// NewCalendar creates a calendar app registered under the given name.
func NewCalendar(name string) *Calendar {
	cal := &Calendar{entries: make(map[string]*CalendarEvent)}

	t := NewTable(name)
	t.Register(sim.OpSpec{
		Name:   "add_event",
		Effect: sim.EffectWrite,
		Args: []sim.ArgSpec{
			{Name: "title", Type: "string", Required: true},
			{Name: "start", Type: "number", Required: true},
			{Name: "end", Type: "number", Required: true},
		},
	}, cal.addEvent)
	t.Register(sim.OpSpec{
		Name:   "list_events",
		Effect: sim.EffectRead,
	}, cal.listEvents)
	t.Register(sim.OpSpec{
		Name:   "cancel_event",
		Effect: sim.EffectDelete,
		Args: []sim.ArgSpec{
			{Name: "id", Type: "string", Required: true},
		},
	}, cal.cancelEvent)

	cal.Init(t)

	return cal
}

func (cal *Calendar) addEvent(c *Ctx) (any, error) {
	start := c.Float("start")
	end := c.Float("end")
	if end < start {
		return nil, fmt.Errorf("event ends at %f before it starts at %f",
			end, start)
	}

	cal.nextID++
	entry := &CalendarEvent{
		ID:    fmt.Sprintf("cal-%d", cal.nextID),
		Title: c.String("title"),
		Start: start,
		End:   end,
	}
	cal.entries[entry.ID] = entry

	return entry.ID, nil
}

func (cal *Calendar) listEvents(_ *Ctx) (any, error) {
	entries := make([]CalendarEvent, 0, len(cal.entries))
	for _, e := range cal.entries {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Start != entries[j].Start {
			return entries[i].Start < entries[j].Start
		}
		return entries[i].ID < entries[j].ID
	})

	return entries, nil
}

func (cal *Calendar) cancelEvent(c *Ctx) (any, error) {
	id := c.String("id")
	if _, ok := cal.entries[id]; !ok {
		return nil, fmt.Errorf("calendar event %s not found", id)
	}

	delete(cal.entries, id)

	return id, nil
}

// EventCount returns the number of calendar entries. It is meant for
// condition predicates and validation.
func (cal *Calendar) EventCount() int {
	cal.mu.Lock()
	defer cal.mu.Unlock()
	return len(cal.entries)
}
