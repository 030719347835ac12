package sim

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that
// a hook is triggered.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook
}

// HookPosRunStart is a hook position that triggers when a run starts.
var HookPosRunStart = &HookPos{Name: "RunStart"}

// HookPosRunEnd is a hook position that triggers when a run terminates,
// regardless of the terminal status.
var HookPosRunEnd = &HookPos{Name: "RunEnd"}

// HookPosEventAdmitted is a hook position that triggers when an event is
// admitted for execution.
var HookPosEventAdmitted = &HookPos{Name: "EventAdmitted"}

// HookPosBeforeEvent is a hook position that triggers before executing an
// event against its app.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after an event
// finished executing, whether it completed or failed.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// HookPosEventCancelled is a hook position that triggers when an event is
// cancelled before it could run.
var HookPosEventCancelled = &HookPos{Name: "EventCancelled"}

// Hook is a short piece of program that can be invoked by a hookable
// object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that
// implement the Hookable interface.
type HookableBase struct {
	hookList []Hook
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook register a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	for _, h := range h.hookList {
		if h == hook {
			panic("duplicated hook")
		}
	}
}

// InvokeHook triggers the register Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}
