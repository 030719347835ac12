package sim

import (
	"log"
)

// EventLogger is a hook that prints the events as the scheduler admits and
// finishes them.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write into the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	evt, ok := ctx.Item.(*Event)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosEventAdmitted:
		h.Logger.Printf("%.10f, admit %s %s %s.%s",
			evt.admittedTime, evt.kind, evt.id,
			evt.target.App, evt.target.Op)
	case HookPosAfterEvent:
		h.Logger.Printf("%.10f, %s %s %s.%s -> %s",
			evt.completedTime, evt.kind, evt.id,
			evt.target.App, evt.target.Op, evt.state)
	case HookPosEventCancelled:
		h.Logger.Printf("%.10f, cancel %s %s %s.%s",
			evt.completedTime, evt.kind, evt.id,
			evt.target.App, evt.target.Op)
	}
}
