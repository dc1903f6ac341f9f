// File: internal/runner/request.go
// Request validation, executable discovery, and argument construction for
// the external console runner.

package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
)

// Suite file extensions decide which runner flag carries the target path.
const (
	SuiteExt      = ".ts"
	CollectionExt = ".tsc"
)

// validateRequest fails fast with a ValidationError before any subprocess is
// spawned. Struct tags run first, then the filesystem and browser checks.
func (s *Supervisor) validateRequest(req schemas.ExecutionRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &schemas.ValidationError{
				Field:  strings.ToLower(verrs[0].Field()),
				Reason: fmt.Sprintf("failed %q constraint", verrs[0].Tag()),
			}
		}
		return &schemas.ValidationError{Field: "request", Reason: err.Error()}
	}

	if !hasProjectMarker(req.ProjectPath) {
		return &schemas.ValidationError{
			Field:  "project_path",
			Reason: fmt.Sprintf("%s does not contain a project file (*.prj)", req.ProjectPath),
		}
	}

	suitePath := resolveSuitePath(req.ProjectPath, req.SuitePath)
	if !pathWithinProject(req.ProjectPath, suitePath) {
		return &schemas.ValidationError{
			Field:  "suite_path",
			Reason: fmt.Sprintf("%s resolves outside the project", req.SuitePath),
		}
	}
	if _, err := os.Stat(suitePath); err != nil {
		return &schemas.ValidationError{
			Field:  "suite_path",
			Reason: fmt.Sprintf("%s does not exist under the project", req.SuitePath),
		}
	}
	switch filepath.Ext(suitePath) {
	case SuiteExt, CollectionExt:
	default:
		return &schemas.ValidationError{
			Field:  "suite_path",
			Reason: fmt.Sprintf("%s is neither a test suite (%s) nor a suite collection (%s)", req.SuitePath, SuiteExt, CollectionExt),
		}
	}

	if !s.browserSupported(req.Browser) {
		return &schemas.ValidationError{
			Field:  "browser",
			Reason: fmt.Sprintf("%q is not supported (supported: %s)", req.Browser, strings.Join(s.cfg.SupportedBrowsers, ", ")),
		}
	}
	return nil
}

func (s *Supervisor) browserSupported(browser string) bool {
	for _, b := range s.cfg.SupportedBrowsers {
		if b == browser {
			return true
		}
	}
	return false
}

// hasProjectMarker reports whether the directory holds a runner project file.
func hasProjectMarker(projectPath string) bool {
	info, err := os.Stat(projectPath)
	if err != nil || !info.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(projectPath, "*.prj"))
	return err == nil && len(matches) > 0
}

func resolveSuitePath(projectPath, suitePath string) string {
	if filepath.IsAbs(suitePath) {
		return suitePath
	}
	return filepath.Join(projectPath, suitePath)
}

// pathWithinProject reports whether the cleaned path stays inside the project
// root, so absolute paths and ".." traversal cannot escape it.
func pathWithinProject(projectPath, path string) bool {
	rel, err := filepath.Rel(projectPath, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExecutable locates the runner binary: environment override first,
// then the configured install locations, then the bare name for the
// process's own PATH search.
func (s *Supervisor) resolveExecutable() string {
	if override := os.Getenv(RunnerBinEnv); override != "" {
		return override
	}
	for _, candidate := range s.cfg.SearchPaths {
		expanded, err := homedir.Expand(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(expanded); err == nil && !info.IsDir() {
			return expanded
		}
	}
	return s.cfg.Executable
}

// buildArgs constructs the runner's argument vector. The order is fixed so
// invocations are reproducible and diffable in logs.
func buildArgs(req schemas.ExecutionRequest, reportFolder string, statusDelaySec int) []string {
	args := []string{
		"-noSplash",
		"-runMode=console",
		"-projectPath=" + req.ProjectPath,
		fmt.Sprintf("-retry=%d", req.RetryCount),
		fmt.Sprintf("-statusDelay=%d", statusDelaySec),
	}

	suitePath := resolveSuitePath(req.ProjectPath, req.SuitePath)
	if filepath.Ext(suitePath) == CollectionExt {
		args = append(args, "-testSuiteCollectionPath="+req.SuitePath)
	} else {
		args = append(args, "-testSuitePath="+req.SuitePath)
	}

	args = append(args, "-browserType="+req.Browser)
	if req.ExecutionProfile != "" && req.ExecutionProfile != "default" {
		args = append(args, "-executionProfile="+req.ExecutionProfile)
	}
	args = append(args, "-reportFolder="+reportFolder)

	var browserArgs []string
	if req.Headless {
		browserArgs = append(browserArgs, "--headless=new")
	}
	if req.WindowSize != "" {
		browserArgs = append(browserArgs, "--window-size="+req.WindowSize)
	}
	browserArgs = append(browserArgs, req.BrowserArgs...)
	if len(browserArgs) > 0 {
		args = append(args, "-browserArgs="+strings.Join(browserArgs, " "))
	}

	if req.ConsoleLogEnabled {
		args = append(args, "-consoleLog")
	}
	return args
}
