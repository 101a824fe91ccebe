// Package launch starts the external program for a catalog entry without
// blocking the caller. Each launch runs on its own goroutine; spawn failures
// are logged and reported, never raised past the coordinator.
package launch

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oukeidos/dbyview/internal/apperrors"
	"github.com/oukeidos/dbyview/internal/logger"
)

// Result describes how a dispatched launch went. PID is set when Err is nil.
type Result struct {
	ID         string
	Executable string
	Target     string
	PID        int
	Err        error
}

type Coordinator struct {
	// OnResult, when set, is called from the launch goroutine after every
	// attempt. It must not block for long.
	OnResult func(Result)

	start    func(*exec.Cmd) error
	inflight sync.WaitGroup
}

func NewCoordinator() *Coordinator {
	return &Coordinator{start: startDetached}
}

// Launch dispatches executable with target as its only argument and returns
// at once. The returned channel receives exactly one Result and is then closed.
func (c *Coordinator) Launch(executable, target string) <-chan Result {
	out := make(chan Result, 1)
	res := Result{
		ID:         uuid.NewString(),
		Executable: executable,
		Target:     target,
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(out)
		withPanicGuard("launch."+res.ID, func(r any) {
			res.Err = apperrors.LaunchSpawn(executable, target, fmt.Errorf("internal error: %v", r))
		}, func() {
			res = c.spawn(res)
		})
		c.report(res)
		out <- res
	}()
	return out
}

// Wait blocks until every launch dispatched so far has finished spawning.
// It does not wait for the launched programs to exit.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

func (c *Coordinator) spawn(res Result) Result {
	if strings.TrimSpace(res.Executable) == "" {
		res.Err = apperrors.PathUnresolved("executable_path", nil)
		return res
	}

	logger.Info("Launching", "launch_id", res.ID, "executable", res.Executable, "target", res.Target)
	cmd := exec.Command(res.Executable, res.Target)
	start := c.start
	if start == nil {
		start = startDetached
	}
	if err := start(cmd); err != nil {
		res.Err = apperrors.LaunchSpawn(res.Executable, res.Target, err)
		return res
	}
	if cmd.Process != nil {
		res.PID = cmd.Process.Pid
		go reap(res.ID, cmd)
	}
	return res
}

func (c *Coordinator) report(res Result) {
	if res.Err != nil {
		logger.Error("Launch failed", "launch_id", res.ID, "executable", res.Executable, "target", res.Target, "error", res.Err)
	} else {
		logger.Info("Launched", "launch_id", res.ID, "pid", res.PID, "target", res.Target)
	}
	if c.OnResult != nil {
		withPanicGuard("launch.on_result", nil, func() { c.OnResult(res) })
	}
}

// reap collects the child's exit status so it does not linger as a zombie.
func reap(id string, cmd *exec.Cmd) {
	err := cmd.Wait()
	logger.Debug("Launched program exited", "launch_id", id, "error", err)
}

func startDetached(cmd *exec.Cmd) error {
	detach(cmd)
	return cmd.Start()
}

func withPanicGuard(scope string, onPanic func(any), fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic", "scope", scope, "panic", fmt.Sprint(r))
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}
