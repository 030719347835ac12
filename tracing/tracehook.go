package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/arena/sim"
)

// CollectTrace lets the tracer collect the execution log from a scheduler.
func CollectTrace(domain sim.Hookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain already has tracer %s", reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that forwards log entries to a tracer
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosAfterEvent, sim.HookPosEventCancelled:
		if entry, ok := ctx.Detail.(sim.LogEntry); ok {
			h.t.RecordEntry(entry)
		}
	case sim.HookPosRunEnd:
		h.t.Flush()
	}
}
