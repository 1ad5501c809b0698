package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/opsadapter/internal/foundation/normalization"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
)

// Environment variable names read at startup.
const (
	EnvDocsEnvironment = "DOCS_ENVIRONMENT"
	EnvOpsToken        = "DOCS_OPS_TOKEN"
)

// DocsEnvironment classifies which upstream service tier requests go to.
type DocsEnvironment string

const (
	EnvironmentProduction DocsEnvironment = "production"
	EnvironmentSandbox    DocsEnvironment = "sandbox"
)

// Unknown or empty values classify as production. Only the known sandbox
// tier names select the sandbox endpoints.
var environmentNormalizer = normalization.NewNormalizer(map[string]DocsEnvironment{
	"ppe":        EnvironmentSandbox,
	"sandbox":    EnvironmentSandbox,
	"perf":       EnvironmentSandbox,
	"internal":   EnvironmentSandbox,
	"staging":    EnvironmentSandbox,
	"prod":       EnvironmentProduction,
	"production": EnvironmentProduction,
}, EnvironmentProduction)

// NormalizeEnvironment maps a raw DOCS_ENVIRONMENT value to a tier.
func NormalizeEnvironment(raw string) DocsEnvironment {
	return environmentNormalizer.Normalize(raw)
}

// Environment is the immutable snapshot of process environment state taken
// once at startup. Components receive it explicitly; nothing reads these
// variables again after construction.
type Environment struct {
	// Tier is the classified environment the upstream endpoints derive from.
	Tier DocsEnvironment
	// Raw is the original DOCS_ENVIRONMENT value, kept for logging.
	Raw string
	// OpsToken is attached verbatim to every upstream request. May be empty.
	OpsToken string
}

// IsProduction reports whether requests target the production tier.
func (e Environment) IsProduction() bool {
	return e.Tier == EnvironmentProduction
}

// LoadEnvironment loads .env files and snapshots the process environment.
// Values already present in the environment always win over .env content.
func LoadEnvironment() Environment {
	loadEnvFiles()

	raw := os.Getenv(EnvDocsEnvironment)
	if raw != "" && !environmentNormalizer.Recognized(raw) {
		slog.Warn("Unrecognized DOCS_ENVIRONMENT, using production endpoints", "value", raw)
	}
	env := Environment{
		Tier:     NormalizeEnvironment(raw),
		Raw:      raw,
		OpsToken: os.Getenv(EnvOpsToken),
	}

	slog.Debug("Environment loaded",
		logfields.Environment(string(env.Tier)),
		slog.Bool("token_present", env.OpsToken != ""))
	return env
}

// loadEnvFiles loads the first .env style file that parses. godotenv never
// overrides variables already set in the process environment.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", logfields.Path(path))
			return
		}
	}
}
