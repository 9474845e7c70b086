package executor

import (
	"go.ryu.dev/ryu/internal/plan"
	"go.ryu.dev/ryu/internal/silog"
)

// Result is what executing a single step produced.
type Result struct {
	// PRNumber is set for CreatePr/UpdateBase/PublishPr steps once the
	// forge has confirmed the operation.
	PRNumber int
	// PRURL is the PR's web URL, set alongside PRNumber.
	PRURL string
}

// Sink receives progress notifications as the executor runs a plan.
//
// Sink methods are called synchronously from the executor's single
// goroutine; implementations must not block indefinitely.
type Sink interface {
	StepStarted(plan.Step)
	StepCompleted(plan.Step, Result)
	StepFailed(plan.Step, error)
}

// NopSink discards all progress notifications.
type NopSink struct{}

func (NopSink) StepStarted(plan.Step)           {}
func (NopSink) StepCompleted(plan.Step, Result) {}
func (NopSink) StepFailed(plan.Step, error)     {}

// LogSink reports progress through a [silog.Logger].
type LogSink struct {
	Log *silog.Logger
}

func (s LogSink) StepStarted(step plan.Step) {
	s.Log.Debugf("%s %s: starting", step.Kind(), step.Bookmark())
}

func (s LogSink) StepCompleted(step plan.Step, res Result) {
	if res.PRURL != "" {
		s.Log.Infof("%s %s: done (%s)", step.Kind(), step.Bookmark(), res.PRURL)
		return
	}
	s.Log.Infof("%s %s: done", step.Kind(), step.Bookmark())
}

func (s LogSink) StepFailed(step plan.Step, err error) {
	s.Log.Errorf("%s %s: %v", step.Kind(), step.Bookmark(), err)
}
