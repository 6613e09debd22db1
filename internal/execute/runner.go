// Package execute orchestrates claude CLI invocations: it resolves the
// session workspace, launches the process, reassembles and forwards its
// stream-json output in arrival order, harvests the tool-assigned session
// key from the first system/init event, and commits the session mapping on
// exit.
package execute

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/coderelay-dev/coderelay/internal/log"
	"github.com/coderelay-dev/coderelay/internal/session"
)

// Runner drives one claude process lifecycle per Run call. Concurrent Run
// calls are independent; only resumes of the same session key are
// serialized, via the guard.
type Runner struct {
	Launcher   Launcher
	Store      session.Store
	Workspaces *session.Workspaces
	Guard      *session.Guard
	Logger     *log.Logger
	Timeout    time.Duration // per-execution limit; 0 = none
}

// Result summarizes a completed run. It is returned alongside any error so
// the caller can tell how far streaming got.
type Result struct {
	SessionKey string // key the tool announced; empty if it never did
	Workspace  string
	Events     int // events forwarded to the caller
	InitSeen   bool
	ToolResult *ResultEvent // last result event observed, if any
	StderrTail string
}

// Run executes one request, forwarding every event to emit in arrival
// order. emit returning an error means the caller is gone: the child is
// killed and the run finalizes. The session mapping is committed whenever a
// session key was captured, even on cancellation or a nonzero exit.
func (r *Runner) Run(ctx context.Context, req Request, emit func(Event) error) (*Result, error) {
	res := &Result{}

	workspace, oldKey, err := r.resolveWorkspace(ctx, req)
	if err != nil {
		return res, err
	}
	res.Workspace = workspace
	if oldKey != "" {
		defer r.Guard.Release(oldKey)
	}

	r.logEvent(log.Event{Event: log.EventExecStarted, SessionKey: oldKey, Workspace: workspace})

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	proc, err := r.Launcher.Launch(ctx, workspace, BuildArgs(req))
	if err != nil {
		err = fmt.Errorf("spawning claude: %w", err)
		r.logEvent(log.Event{Event: log.EventExecFailed, SessionKey: oldKey, Error: err.Error()})
		return res, err
	}

	// Keep the child reachable for forced termination: caller disconnect or
	// timeout must not leave it running once its output sink is gone.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = proc.Kill()
		case <-watchDone:
		}
	}()

	stderr := newTailBuffer(4096)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderr, proc.Stderr())
	}()

	emitErr := r.stream(proc.Stdout(), res, emit)
	if emitErr != nil {
		_ = proc.Kill()
	}

	wg.Wait()
	waitErr := proc.Wait()
	res.StderrTail = stderr.String()

	if err := r.commit(ctx, res, oldKey); err != nil {
		return res, err
	}

	switch {
	case emitErr != nil:
		err = fmt.Errorf("forwarding events: %w", emitErr)
	case ctx.Err() == context.DeadlineExceeded:
		err = fmt.Errorf("claude timed out after %s: %w", r.Timeout, ctx.Err())
	case waitErr != nil:
		err = fmt.Errorf("claude exited with error: %w\nstderr: %s", waitErr, res.StderrTail)
	}
	if err != nil {
		r.logEvent(log.Event{Event: log.EventExecFailed, SessionKey: res.SessionKey, Error: err.Error()})
		return res, err
	}

	completed := log.Event{Event: log.EventExecCompleted, SessionKey: res.SessionKey, Workspace: workspace}
	if res.ToolResult != nil {
		completed.DurationMs = res.ToolResult.DurationMS
		completed.CostUSD = res.ToolResult.CostUSD
		completed.NumTurns = res.ToolResult.NumTurns
	}
	r.logEvent(completed)

	return res, nil
}

// resolveWorkspace branches on new-session vs. resume. A resume of an
// unknown key fails here, before any process is spawned. The returned
// oldKey is non-empty only for resumes, with the guard held.
func (r *Runner) resolveWorkspace(ctx context.Context, req Request) (workspace, oldKey string, err error) {
	if req.SessionID == "" {
		workspace, err = r.Workspaces.Create()
		if err != nil {
			return "", "", fmt.Errorf("allocating workspace: %w", err)
		}
		return workspace, "", nil
	}

	if !r.Guard.Acquire(req.SessionID) {
		return "", "", session.ErrSessionBusy
	}

	rec, err := r.Store.Get(ctx, req.SessionID)
	if err != nil {
		r.Guard.Release(req.SessionID)
		return "", "", fmt.Errorf("looking up session: %w", err)
	}
	workspace, err = r.Workspaces.Resolve(rec)
	if err != nil {
		r.Guard.Release(req.SessionID)
		return "", "", err
	}
	return workspace, req.SessionID, nil
}

// stream forwards stdout lines until EOF or an emit failure. Empty lines
// are dropped; unparsable lines are forwarded verbatim but never used for
// session-key extraction.
func (r *Runner) stream(stdout io.Reader, res *Result, emit func(Event) error) error {
	var lb LineBuffer
	chunk := make([]byte, 32*1024)

	forward := func(line []byte) error {
		if len(line) == 0 {
			return nil
		}
		ev := ParseEvent(line)
		if ev.Kind == KindInit && !res.InitSeen {
			res.InitSeen = true
			res.SessionKey = ev.Init.SessionID
		}
		if ev.Kind == KindResult {
			res.ToolResult = ev.Result
		}
		if err := emit(ev); err != nil {
			return err
		}
		res.Events++
		return nil
	}

	for {
		n, err := stdout.Read(chunk)
		if n > 0 {
			for _, line := range lb.Write(chunk[:n]) {
				if emitErr := forward(line); emitErr != nil {
					return emitErr
				}
			}
		}
		if err == io.EOF {
			return forward(lb.Flush())
		}
		if err != nil {
			// Pipe closed by process exit or kill; drain the tail.
			return forward(lb.Flush())
		}
	}
}

// commit persists the session mapping once the run is over. On a resume the
// tool announces a fresh key; the old key's mapping is preserved and
// touched so both point at the same workspace.
func (r *Runner) commit(ctx context.Context, res *Result, oldKey string) error {
	if res.SessionKey == "" {
		return nil
	}
	// The caller's context may already be cancelled; committing must not
	// depend on it.
	ctx = context.WithoutCancel(ctx)

	if err := r.Store.Commit(ctx, res.SessionKey, res.Workspace); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	if oldKey != "" && oldKey != res.SessionKey {
		if err := r.Store.Commit(ctx, oldKey, res.Workspace); err != nil {
			return fmt.Errorf("committing session: %w", err)
		}
	}
	r.logEvent(log.Event{Event: log.EventSessionCommitted, SessionKey: res.SessionKey, Workspace: res.Workspace})
	return nil
}

func (r *Runner) logEvent(e log.Event) {
	if r.Logger != nil {
		_ = r.Logger.Emit(e)
	}
}

// tailBuffer keeps the last max bytes written, for stderr diagnostics.
type tailBuffer struct {
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
