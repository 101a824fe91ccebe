package launch

import (
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oukeidos/dbyview/internal/apperrors"
)

func waitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res, ok := <-ch:
		if !ok {
			t.Fatalf("result channel closed without a result")
		}
		return res
	case <-time.After(5 * time.Second):
		t.Fatalf("launch did not report a result")
	}
	return Result{}
}

func TestLaunch_MissingExecutableReportsSpawnError(t *testing.T) {
	c := NewCoordinator()
	missing := filepath.Join(t.TempDir(), "no-such-viewer")

	begin := time.Now()
	ch := c.Launch(missing, "/data/files/a.dby")
	if elapsed := time.Since(begin); elapsed > 500*time.Millisecond {
		t.Fatalf("Launch blocked the caller for %v", elapsed)
	}

	res := waitResult(t, ch)
	if !apperrors.Is(res.Err, apperrors.KindLaunchSpawn) {
		t.Fatalf("want launch_spawn, got %v", res.Err)
	}
	if res.PID != 0 || res.ID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after the result")
	}
}

func TestLaunch_DoesNotWaitForSpawn(t *testing.T) {
	release := make(chan struct{})
	c := &Coordinator{start: func(*exec.Cmd) error {
		<-release
		return nil
	}}

	done := make(chan (<-chan Result), 1)
	go func() { done <- c.Launch("/usr/bin/viewer", "a.dby") }()

	var ch <-chan Result
	select {
	case ch = <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Launch blocked while the spawn was pending")
	}
	select {
	case <-ch:
		t.Fatalf("result arrived before the spawn finished")
	default:
	}
	close(release)
	if res := waitResult(t, ch); res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
}

func TestLaunch_ArgumentsAreDiscrete(t *testing.T) {
	var got []string
	c := &Coordinator{start: func(cmd *exec.Cmd) error {
		got = cmd.Args
		return nil
	}}
	target := `/data/my files/a b; rm -rf $HOME.dby`
	waitResult(t, c.Launch("/usr/bin/viewer", target))

	if len(got) != 2 || got[0] != "/usr/bin/viewer" || got[1] != target {
		t.Fatalf("argv = %q", got)
	}
}

func TestLaunch_ConcurrentLaunchesAreIndependent(t *testing.T) {
	var started atomic.Int32
	gate := make(chan struct{})
	c := &Coordinator{start: func(*exec.Cmd) error {
		started.Add(1)
		<-gate
		return nil
	}}

	const n = 8
	chans := make([]<-chan Result, 0, n)
	for i := 0; i < n; i++ {
		chans = append(chans, c.Launch("/usr/bin/viewer", "a.dby"))
	}

	deadline := time.Now().Add(2 * time.Second)
	for started.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d launches started concurrently", started.Load(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(gate)

	ids := make(map[string]bool)
	for _, ch := range chans {
		res := waitResult(t, ch)
		if ids[res.ID] {
			t.Fatalf("duplicate launch id %s", res.ID)
		}
		ids[res.ID] = true
	}
	c.Wait()
}

func TestLaunch_OnResultCallback(t *testing.T) {
	var mu sync.Mutex
	var seen []Result
	c := &Coordinator{
		start: func(*exec.Cmd) error { return errors.New("exec format error") },
		OnResult: func(r Result) {
			mu.Lock()
			seen = append(seen, r)
			mu.Unlock()
		},
	}
	waitResult(t, c.Launch("/usr/bin/viewer", "a.dby"))
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || !apperrors.Is(seen[0].Err, apperrors.KindLaunchSpawn) {
		t.Fatalf("callback results = %+v", seen)
	}
}

func TestLaunch_PanicsAreContained(t *testing.T) {
	c := &Coordinator{
		start:    func(*exec.Cmd) error { panic("boom") },
		OnResult: func(Result) { panic("callback boom") },
	}
	res := waitResult(t, c.Launch("/usr/bin/viewer", "a.dby"))
	if !apperrors.Is(res.Err, apperrors.KindLaunchSpawn) {
		t.Fatalf("want launch_spawn after panic, got %v", res.Err)
	}
}

func TestLaunch_EmptyExecutable(t *testing.T) {
	c := NewCoordinator()
	res := waitResult(t, c.Launch("  ", "a.dby"))
	if !apperrors.Is(res.Err, apperrors.KindPathUnresolved) {
		t.Fatalf("want path_unresolved, got %v", res.Err)
	}
}

func TestLaunch_RealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no portable no-op program on Windows")
	}
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not available")
	}
	c := NewCoordinator()
	res := waitResult(t, c.Launch(truePath, filepath.Join(t.TempDir(), "a.dby")))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.PID <= 0 {
		t.Fatalf("expected a pid, got %d", res.PID)
	}
}
