package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes pushed to /diag clients.
const (
	TestRunning    = "TEST.RUNNING"
	TestDone       = "TEST.DONE"
	TestUnknown    = "TEST.UNKNOWN"
	DriverWrite    = "DRIVER.WRITE"
	DriverFallback = "DRIVER.FALLBACK"
	ProgramDone    = "PROGRAM.DONE"
	ControlInvalid = "CONTROL.INVALID"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Sink receives diagnostics; nil sinks are allowed wherever one is accepted.
type Sink func(Diagnostic)

func (s Sink) Push(d Diagnostic) {
	if s != nil {
		s(d)
	}
}

// WriteFailed describes a driver error surfaced by Show.
func WriteFailed(err error) Diagnostic {
	return Diagnostic{
		Severity:       Err,
		Code:           DriverWrite,
		Summary:        "LED driver write failed",
		Detail:         err.Error(),
		LikelyCauses:   []string{"SPI or GPIO device unavailable", "pixel count mismatch"},
		SuggestedFixes: []string{"check the spi.dev / gpio settings", "restart with -sim-only to verify the scene"},
	}
}

// Fallback describes the console simulator standing in for the driver that
// was asked for.
func Fallback(requested string, err error) Diagnostic {
	return Diagnostic{
		Severity:       Warn,
		Code:           DriverFallback,
		Summary:        "LED driver unavailable, using the simulator",
		Detail:         err.Error(),
		LikelyCauses:   []string{"not running on the target board", "SPI not enabled or pin busy"},
		SuggestedFixes: []string{"enable SPI in the board config", "run as a user with access to /dev/spidev* and /dev/gpiomem"},
		Evidence:       map[string]any{"requested": requested, "driver": "sim"},
	}
}
