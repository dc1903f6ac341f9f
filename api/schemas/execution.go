// File: api/schemas/execution.go
package schemas

// ExecutionRequest describes one invocation of the external test runner.
// It is transient, built per call, and validated before any process spawns.
type ExecutionRequest struct {
	ProjectPath       string   `json:"project_path" validate:"required"`
	SuitePath         string   `json:"suite_path" validate:"required"`
	Browser           string   `json:"browser" validate:"required"`
	ExecutionProfile  string   `json:"execution_profile,omitempty"`
	BrowserArgs       []string `json:"browser_args,omitempty"`
	Headless          bool     `json:"headless,omitempty"`
	WindowSize        string   `json:"window_size,omitempty"`
	ReportFolder      string   `json:"report_folder,omitempty"`
	ConsoleLogEnabled bool     `json:"console_log_enabled,omitempty"`
	RetryCount        int      `json:"retry_count" validate:"gte=0,lte=10"`
}

// ExecutionOutcome is the normalized result of a finished runner process.
// ReportFolder is where the runner was told to write its report, whether
// taken from the request or derived from the run id.
type ExecutionOutcome struct {
	RunID        string `json:"run_id"`
	ExitCode     int    `json:"exit_code"`
	Output       string `json:"output"`
	Succeeded    bool   `json:"succeeded"`
	ReportFolder string `json:"report_folder"`
}

// TestStatus classifies a single test result parsed from the runner report.
type TestStatus string

const (
	StatusPassed  TestStatus = "passed"
	StatusFailed  TestStatus = "failed"
	StatusSkipped TestStatus = "skipped"
	StatusError   TestStatus = "error"
)

// TestOutcome is one per-test result parsed from the runner's report file.
type TestOutcome struct {
	Name         string     `json:"name"`
	Status       TestStatus `json:"status"`
	DurationMs   int64      `json:"duration_ms"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// RunArtifacts lists the on-disk artifacts discovered for a finished run.
// Paths are only populated when the file actually exists.
type RunArtifacts struct {
	ReportPath  string   `json:"report_path,omitempty"`
	LogPath     string   `json:"log_path,omitempty"`
	Screenshots []string `json:"screenshots,omitempty"`
}
