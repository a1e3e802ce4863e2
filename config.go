package toolguard

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// DefaultDenialThreshold is the number of denials that trip the circuit
// breaker.
const DefaultDenialThreshold = 10

// Config is the engine's configuration, constructed once at startup and
// passed down explicitly. Core decision logic has no ambient environment
// dependency: environment lookup is isolated to ConfigFromEnv.
type Config struct {
	// Mode controls where auto-approval is permitted.
	Mode Mode

	// ProjectDir roots the project-local policy override
	// (<ProjectDir>/.toolguard/policy.yaml).
	ProjectDir string

	// PackagedDir roots the packaged default policy
	// (<PackagedDir>/policy.yaml).
	PackagedDir string

	// DenialThreshold overrides the circuit breaker threshold.
	// Zero means DefaultDenialThreshold.
	DenialThreshold int

	// Strict escalates total policy-cascade exhaustion to a hard error
	// instead of falling back to the built-in deny-heavy policy.
	Strict bool
}

// env is the single environment boundary. Nothing else in the engine
// reads environment variables.
type env struct {
	Mode            string `envconfig:"MODE" default:"disabled"`
	ProjectDir      string `envconfig:"PROJECT_DIR" default:"."`
	PackagedDir     string `envconfig:"PACKAGED_DIR"`
	DenialThreshold int    `envconfig:"DENIAL_THRESHOLD" default:"10"`
	Strict          bool   `envconfig:"STRICT" default:"false"`
}

const envNamespace = "TOOLGUARD"

// ConfigFromEnv builds a Config from TOOLGUARD_* environment variables.
// An invalid mode value degrades to disabled rather than failing.
func ConfigFromEnv() (Config, error) {
	var e env
	if err := envconfig.Process(envNamespace, &e); err != nil {
		return Config{}, fmt.Errorf("load config from env: %w", err)
	}

	return Config{
		Mode:            ParseMode(e.Mode),
		ProjectDir:      e.ProjectDir,
		PackagedDir:     e.PackagedDir,
		DenialThreshold: e.DenialThreshold,
		Strict:          e.Strict,
	}, nil
}

func (c Config) threshold() int {
	if c.DenialThreshold > 0 {
		return c.DenialThreshold
	}
	return DefaultDenialThreshold
}
