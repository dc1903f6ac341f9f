// File: internal/runner/request_test.go
package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/config"
)

func testRunnerConfig() config.RunnerConfig {
	return config.RunnerConfig{
		Executable:        "katalonc",
		ExecutionTimeout:  30 * time.Minute,
		StatusDelaySec:    15,
		SupportedBrowsers: []string{"Chrome", "Chrome (headless)", "Firefox"},
	}
}

// makeProject lays out a minimal valid project on disk.
func makeProject(t *testing.T) (projectPath, suiteRel string) {
	t.Helper()
	projectPath = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectPath, "demo.prj"), []byte("<Project/>"), 0o644))

	suiteDir := filepath.Join(projectPath, "Test Suites")
	require.NoError(t, os.MkdirAll(suiteDir, 0o755))
	suiteRel = filepath.Join("Test Suites", "regression.ts")
	require.NoError(t, os.WriteFile(filepath.Join(projectPath, suiteRel), []byte("<TestSuite/>"), 0o644))
	return projectPath, suiteRel
}

func newTestSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	s, err := NewSupervisor(testRunnerConfig(), zap.NewNop(), nil)
	require.NoError(t, err)
	return s
}

func validRequest(projectPath, suiteRel string) schemas.ExecutionRequest {
	return schemas.ExecutionRequest{
		ProjectPath: projectPath,
		SuitePath:   suiteRel,
		Browser:     "Chrome",
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	projectPath, suiteRel := makeProject(t)
	s := newTestSupervisor(t)
	assert.NoError(t, s.validateRequest(validRequest(projectPath, suiteRel)))
}

func TestValidateRequest_MissingProjectMarker(t *testing.T) {
	s := newTestSupervisor(t)

	req := validRequest(t.TempDir(), "whatever.ts")
	err := s.validateRequest(req)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "project_path", verr.Field)
}

func TestValidateRequest_MissingSuite(t *testing.T) {
	projectPath, _ := makeProject(t)
	s := newTestSupervisor(t)

	req := validRequest(projectPath, filepath.Join("Test Suites", "nope.ts"))
	err := s.validateRequest(req)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "suite_path", verr.Field)
}

func TestValidateRequest_AbsoluteSuiteOutsideProject(t *testing.T) {
	projectPath, _ := makeProject(t)
	s := newTestSupervisor(t)

	outside := filepath.Join(t.TempDir(), "foreign.ts")
	require.NoError(t, os.WriteFile(outside, []byte("<TestSuite/>"), 0o644))

	err := s.validateRequest(validRequest(projectPath, outside))

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "suite_path", verr.Field)
}

func TestValidateRequest_TraversalEscapesProject(t *testing.T) {
	projectPath, _ := makeProject(t)
	s := newTestSupervisor(t)

	sibling := filepath.Join(filepath.Dir(projectPath), "sibling")
	require.NoError(t, os.MkdirAll(sibling, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sibling, "escape.ts"), []byte("<TestSuite/>"), 0o644))

	req := validRequest(projectPath, filepath.Join("..", "sibling", "escape.ts"))
	err := s.validateRequest(req)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "suite_path", verr.Field)
}

func TestValidateRequest_AbsoluteSuiteInsideProject(t *testing.T) {
	projectPath, suiteRel := makeProject(t)
	s := newTestSupervisor(t)

	req := validRequest(projectPath, filepath.Join(projectPath, suiteRel))
	assert.NoError(t, s.validateRequest(req))
}

func TestValidateRequest_UnsupportedBrowser(t *testing.T) {
	projectPath, suiteRel := makeProject(t)
	s := newTestSupervisor(t)

	req := validRequest(projectPath, suiteRel)
	req.Browser = "NetscapeNavigator"
	err := s.validateRequest(req)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "browser", verr.Field)
}

func TestValidateRequest_WrongExtension(t *testing.T) {
	projectPath, _ := makeProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(projectPath, "notes.txt"), []byte("x"), 0o644))
	s := newTestSupervisor(t)

	req := validRequest(projectPath, "notes.txt")
	err := s.validateRequest(req)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "suite_path", verr.Field)
}

func TestValidateRequest_NegativeRetry(t *testing.T) {
	projectPath, suiteRel := makeProject(t)
	s := newTestSupervisor(t)

	req := validRequest(projectPath, suiteRel)
	req.RetryCount = -1
	err := s.validateRequest(req)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildArgs_SuiteDefaults(t *testing.T) {
	projectPath, suiteRel := makeProject(t)

	req := validRequest(projectPath, suiteRel)
	args := buildArgs(req, DefaultReportFolder(projectPath, "run-1"), 15)

	assert.Equal(t, []string{
		"-noSplash",
		"-runMode=console",
		"-projectPath=" + projectPath,
		"-retry=0",
		"-statusDelay=15",
		"-testSuitePath=" + suiteRel,
		"-browserType=Chrome",
		"-reportFolder=" + filepath.Join(projectPath, "Reports", "run-1"),
	}, args)
}

func TestBuildArgs_CollectionAndBrowserOptions(t *testing.T) {
	projectPath, _ := makeProject(t)
	collectionRel := filepath.Join("Test Suites", "all.tsc")
	require.NoError(t, os.WriteFile(filepath.Join(projectPath, collectionRel), []byte("<TestSuiteCollection/>"), 0o644))

	req := schemas.ExecutionRequest{
		ProjectPath:       projectPath,
		SuitePath:         collectionRel,
		Browser:           "Chrome (headless)",
		ExecutionProfile:  "staging",
		Headless:          true,
		WindowSize:        "1920,1080",
		BrowserArgs:       []string{"--disable-gpu"},
		ConsoleLogEnabled: true,
		RetryCount:        2,
	}
	args := buildArgs(req, "/tmp/reports", 10)

	assert.Contains(t, args, "-testSuiteCollectionPath="+collectionRel)
	assert.Contains(t, args, "-executionProfile=staging")
	assert.Contains(t, args, "-retry=2")
	assert.Contains(t, args, "-browserArgs=--headless=new --window-size=1920,1080 --disable-gpu")
	assert.Contains(t, args, "-consoleLog")
	assert.NotContains(t, args, "-testSuitePath="+collectionRel)
}

func TestBuildArgs_DefaultProfileOmitted(t *testing.T) {
	projectPath, suiteRel := makeProject(t)
	req := validRequest(projectPath, suiteRel)
	req.ExecutionProfile = "default"

	args := buildArgs(req, "/tmp/reports", 15)
	for _, a := range args {
		assert.NotContains(t, a, "-executionProfile")
	}
}

func TestResolveExecutable_EnvOverrideWins(t *testing.T) {
	s := newTestSupervisor(t)
	t.Setenv(RunnerBinEnv, "/custom/path/katalonc")
	assert.Equal(t, "/custom/path/katalonc", s.resolveExecutable())
}

func TestResolveExecutable_FallsBackToBareName(t *testing.T) {
	s := newTestSupervisor(t)
	t.Setenv(RunnerBinEnv, "")
	s.cfg.SearchPaths = []string{filepath.Join(t.TempDir(), "missing")}
	assert.Equal(t, "katalonc", s.resolveExecutable())
}

func TestResolveExecutable_ProbesSearchPaths(t *testing.T) {
	s := newTestSupervisor(t)
	t.Setenv(RunnerBinEnv, "")

	dir := t.TempDir()
	bin := filepath.Join(dir, "katalonc")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	s.cfg.SearchPaths = []string{filepath.Join(dir, "missing"), bin}

	assert.Equal(t, bin, s.resolveExecutable())
}
