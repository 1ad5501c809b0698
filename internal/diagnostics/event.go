// Package diagnostics carries the adapter's output side-channel: observations
// that matter to operators but never change the outcome of an operation.
package diagnostics

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

// Kind classifies a diagnostic event.
type Kind string

const (
	// KindRulesetVersion records the validation ruleset version an upstream
	// response advertised via the X-Metadata-Version header.
	KindRulesetVersion Kind = "ruleset_version"
	// KindBuildWarning records a non-fatal interruption the build carried on
	// through, such as an incomplete validation config.
	KindBuildWarning Kind = "build_warning"
	// KindProbe records the result of a scheduled upstream reachability check.
	KindProbe Kind = "probe"
)

// Event is a single diagnostic observation. Events flow through sinks; they
// are never part of an operation's return value.
type Event struct {
	ID        string               `json:"id"`
	SessionID string               `json:"session_id,omitempty"`
	Kind      Kind                 `json:"kind"`
	Severity  errors.ErrorSeverity `json:"severity"`
	Message   string               `json:"message"`
	Fields    map[string]string    `json:"fields,omitempty"`
	Time      time.Time            `json:"time"`
}

// NewEvent creates an event with a fresh ID and timestamp. The session ID is
// stamped later by the Reporter that publishes the event.
func NewEvent(kind Kind, severity errors.ErrorSeverity, message string) Event {
	return Event{
		ID:       uuid.NewString(),
		Kind:     kind,
		Severity: severity,
		Message:  message,
		Time:     time.Now().UTC(),
	}
}

// WithField returns a copy of the event with one field added.
func (e Event) WithField(key, value string) Event {
	fields := make(map[string]string, len(e.Fields)+1)
	maps.Copy(fields, e.Fields)
	fields[key] = value
	e.Fields = fields
	return e
}

// RulesetVersion builds the event recording a ruleset version observation.
func RulesetVersion(url, version string) Event {
	return NewEvent(KindRulesetVersion, errors.SeverityInfo, "validation ruleset version observed").
		WithField("url", url).
		WithField("version", version)
}

// BuildWarning builds the event recording a non-fatal interruption.
func BuildWarning(message string) Event {
	return NewEvent(KindBuildWarning, errors.SeverityWarning, message)
}

// ProbeResult builds the event recording an upstream reachability check.
// Failed probes are warnings; the sidecar keeps running either way.
func ProbeResult(endpoint string, err error) Event {
	if err != nil {
		return NewEvent(KindProbe, errors.SeverityWarning, "upstream probe failed").
			WithField("endpoint", endpoint).
			WithField("error", err.Error())
	}
	return NewEvent(KindProbe, errors.SeverityInfo, "upstream probe succeeded").
		WithField("endpoint", endpoint)
}
