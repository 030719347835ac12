package validation

import (
	"context"

	"github.com/sarchlab/arena/sim"
)

// A JudgeRequest carries everything a semantic judge needs to grade a run:
// the task the agent was given, the trace of what it did, and the
// scenario's expectation in natural language.
type JudgeRequest struct {
	TaskPrompt string         `json:"task_prompt"`
	Trace      []sim.LogEntry `json:"trace"`
	Criteria   string         `json:"criteria"`
}

// A Judge is an external semantic comparator. Soft validation is delegated
// to it; this package only defines the interface.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (Result, error)
}

// Soft builds a check that consults a judge. A judge error fails the check
// with the error as feedback; it never aborts the run.
func Soft(
	ctx context.Context,
	judge Judge,
	taskPrompt, criteria string,
) Check {
	return func(rc *sim.RunContext) Result {
		verdict, err := judge.Judge(ctx, JudgeRequest{
			TaskPrompt: taskPrompt,
			Trace:      rc.Log.Entries(),
			Criteria:   criteria,
		})
		if err != nil {
			return Result{Feedback: "judge unavailable: " + err.Error()}
		}
		return verdict
	}
}
