// File: internal/runner/supervisor.go
// Description: Supervises the external console runner. Each run owns exactly
// one subprocess, is tracked in the live-run table under a unique run id, and
// terminates through exactly one of completion, stop, timeout, or spawn error.

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/config"
)

// RunnerBinEnv overrides executable discovery when set.
const RunnerBinEnv = "TESTPILOT_RUNNER_BIN"

// Supervisor launches and tracks runner processes. The live-run table is the
// only shared mutable state; removal is a compare-and-remove so the timeout,
// stop, and completion paths can race safely.
type Supervisor struct {
	cfg      config.RunnerConfig
	logger   *zap.Logger
	validate *validator.Validate
	sink     schemas.OutputSink

	mu   sync.Mutex
	runs map[string]*liveRun
}

type liveRun struct {
	id      string
	cmd     *exec.Cmd
	started time.Time
}

// NewSupervisor creates a supervisor. The output sink may be nil; logger
// must be provided.
func NewSupervisor(cfg config.RunnerConfig, logger *zap.Logger, sink schemas.OutputSink) (*Supervisor, error) {
	if logger == nil {
		return nil, fmt.Errorf("cannot initialize supervisor with nil logger")
	}
	return &Supervisor{
		cfg:      cfg,
		logger:   logger.Named("runner"),
		validate: validator.New(),
		sink:     sink,
		runs:     make(map[string]*liveRun),
	}, nil
}

// Run executes the external runner for the given request and blocks until
// the process reaches a terminal state. Validation failures surface before
// any subprocess is spawned.
func (s *Supervisor) Run(ctx context.Context, req schemas.ExecutionRequest) (schemas.ExecutionOutcome, error) {
	if err := s.validateRequest(req); err != nil {
		return schemas.ExecutionOutcome{}, err
	}

	executable := s.resolveExecutable()
	runID := newRunID()
	reportFolder := req.ReportFolder
	if reportFolder == "" {
		reportFolder = DefaultReportFolder(req.ProjectPath, runID)
	}
	args := buildArgs(req, reportFolder, s.cfg.StatusDelaySec)

	s.logger.Info("Starting test execution",
		zap.String("run_id", runID),
		zap.String("executable", executable),
		zap.Strings("args", args),
	)

	cmd := exec.Command(executable, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return schemas.ExecutionOutcome{}, &schemas.SpawnError{Executable: executable, Cause: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return schemas.ExecutionOutcome{}, &schemas.SpawnError{Executable: executable, Cause: err}
	}
	if err := cmd.Start(); err != nil {
		return schemas.ExecutionOutcome{}, &schemas.SpawnError{Executable: executable, Cause: err}
	}

	run := &liveRun{id: runID, cmd: cmd, started: time.Now()}
	s.mu.Lock()
	s.runs[runID] = run
	s.mu.Unlock()

	// Both streams interleave into one buffer in arrival order; each
	// stream's own ordering is preserved by its pump goroutine.
	var output lockedBuffer
	pumps := new(errgroup.Group)
	pumps.Go(func() error { return s.pump(runID, stdout, &output) })
	pumps.Go(func() error { return s.pump(runID, stderr, &output) })

	done := make(chan error, 1)
	go func() {
		// Pipes must be drained before Wait reaps the process.
		_ = pumps.Wait()
		done <- cmd.Wait()
	}()

	timeout := s.cfg.ExecutionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case waitErr := <-done:
		s.remove(runID)
		outcome := schemas.ExecutionOutcome{
			RunID:        runID,
			ExitCode:     exitCode(cmd, waitErr),
			Output:       output.String(),
			ReportFolder: reportFolder,
		}
		outcome.Succeeded = outcome.ExitCode == 0
		s.logger.Info("Test execution finished",
			zap.String("run_id", runID),
			zap.Int("exit_code", outcome.ExitCode),
			zap.Bool("succeeded", outcome.Succeeded),
		)
		return outcome, nil

	case <-timer.C:
		if s.remove(runID) && cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done // reap the killed process
		s.logger.Error("Test execution timed out",
			zap.String("run_id", runID),
			zap.Duration("timeout", timeout),
		)
		return schemas.ExecutionOutcome{}, &schemas.TimeoutError{RunID: runID, Timeout: timeout.String()}

	case <-ctx.Done():
		if s.remove(runID) && cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return schemas.ExecutionOutcome{}, ctx.Err()
	}
}

// Stop terminates a live run. It returns true when this call removed the run
// and killed its process, false when the run id is not live. Safe to call
// concurrently with the run's own completion.
func (s *Supervisor) Stop(runID string) bool {
	s.mu.Lock()
	run, ok := s.runs[runID]
	if ok {
		delete(s.runs, runID)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	if run.cmd.Process != nil {
		_ = run.cmd.Process.Kill()
	}
	s.logger.Info("Test execution stopped",
		zap.String("run_id", runID),
		zap.Duration("uptime", time.Since(run.started)),
	)
	return true
}

// ListRunning returns a sorted snapshot of the live run ids.
func (s *Supervisor) ListRunning() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// remove is the compare-and-remove primitive: only the first caller for a
// given run id observes true, so each run resolves exactly once.
func (s *Supervisor) remove(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return false
	}
	delete(s.runs, runID)
	return true
}

func (s *Supervisor) pump(runID string, r io.Reader, buf *lockedBuffer) error {
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if s.sink != nil {
				s.sink.Write(runID, chunk[:n])
			}
		}
		if err != nil {
			return nil // EOF and pipe-closed errors both end the pump
		}
	}
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func newRunID() string {
	return fmt.Sprintf("run-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// DefaultReportFolder is where the runner writes its structured results when
// the request does not pin a report folder.
func DefaultReportFolder(projectPath, runID string) string {
	return filepath.Join(projectPath, "Reports", runID)
}

// lockedBuffer is a mutex-guarded byte buffer shared by the two pump
// goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) {
	b.mu.Lock()
	b.buf.Write(p)
	b.mu.Unlock()
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
