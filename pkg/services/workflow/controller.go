package workflow

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

type Controller interface {
	Start(ctx context.Context, name string, interval time.Duration, job Job) error
	Cancel(ctx context.Context, name string) error
}

type workflowDescriptor struct {
	cancelFunc context.CancelFunc
	runner     *Runner
}

// DefaultController runs named jobs on fixed intervals, one goroutine per job
type DefaultController struct {
	runOnStart bool

	mu        sync.Mutex
	workflows map[string]workflowDescriptor
}

func NewController(runOnStart bool) *DefaultController {
	return &DefaultController{
		runOnStart: runOnStart,
		workflows:  make(map[string]workflowDescriptor),
	}
}

func (ctrl *DefaultController) Start(ctx context.Context, name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval for %s: %s", name, interval)
	}
	if job == nil {
		return fmt.Errorf("no job given for %s", name)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if _, exists := ctrl.workflows[name]; exists {
		return fmt.Errorf("workflow already running: %s", name)
	}

	ctx, cancel := context.WithCancel(ctx)
	runner := NewRunner(name, job, RunnerConfig{
		Interval:   interval,
		RunOnStart: ctrl.runOnStart,
	})
	ctrl.workflows[name] = workflowDescriptor{
		cancelFunc: cancel,
		runner:     runner,
	}

	go runner.Run(ctx)
	return nil
}

// Cancel stops the job and waits for an in-flight run to finish
func (ctrl *DefaultController) Cancel(_ context.Context, name string) error {
	ctrl.mu.Lock()
	desc, ok := ctrl.workflows[name]
	if ok {
		delete(ctrl.workflows, name)
	}
	ctrl.mu.Unlock()

	if !ok {
		return fmt.Errorf("workflow not running: %s", name)
	}
	desc.cancelFunc()
	<-desc.runner.Done()
	return nil
}

func (ctrl *DefaultController) Running() []string {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	names := make([]string, 0, len(ctrl.workflows))
	for name := range ctrl.workflows {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Progress returns the progress channel of a running job
func (ctrl *DefaultController) Progress(name string) (<-chan RunnerProgress, bool) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	desc, ok := ctrl.workflows[name]
	if !ok {
		return nil, false
	}
	return desc.runner.Progress(), true
}

func (ctrl *DefaultController) Stop(ctx context.Context) {
	for _, name := range ctrl.Running() {
		_ = ctrl.Cancel(ctx, name)
	}
}
