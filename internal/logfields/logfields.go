package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocset      = "docset"
	KeySiteName    = "site_name"
	KeyHostname    = "hostname"
	KeyLocale      = "locale"
	KeyEnvironment = "environment"
	KeyRepo        = "repository"
	KeyBranch      = "branch"
	KeyURL         = "url"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeyEndpoint    = "endpoint"
	KeyScope       = "scope"
	KeyDurationMS  = "duration_ms"
	KeySessionID   = "session_id"
	KeyRuleset     = "ruleset_version"
	KeyPath        = "path"
	KeyRemoteAddr  = "remote_addr"
	KeyUserAgent   = "user_agent"
	KeyResponseSz  = "response_size"
	KeyCount       = "count"
	KeySubject     = "subject"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Docset(name string) slog.Attr      { return slog.String(KeyDocset, name) }
func SiteName(name string) slog.Attr    { return slog.String(KeySiteName, name) }
func Hostname(h string) slog.Attr       { return slog.String(KeyHostname, h) }
func Locale(l string) slog.Attr         { return slog.String(KeyLocale, l) }
func Environment(e string) slog.Attr    { return slog.String(KeyEnvironment, e) }
func Repository(r string) slog.Attr     { return slog.String(KeyRepo, r) }
func Branch(b string) slog.Attr         { return slog.String(KeyBranch, b) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Method(m string) slog.Attr         { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr         { return slog.Int(KeyStatus, code) }
func Endpoint(e string) slog.Attr       { return slog.String(KeyEndpoint, e) }
func Scope(name string) slog.Attr       { return slog.String(KeyScope, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func SessionID(id string) slog.Attr     { return slog.String(KeySessionID, id) }
func RulesetVersion(v string) slog.Attr { return slog.String(KeyRuleset, v) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func RemoteAddr(a string) slog.Attr     { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr     { return slog.String(KeyUserAgent, ua) }
func ResponseSize(n int) slog.Attr      { return slog.Int(KeyResponseSz, n) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Subject(s string) slog.Attr        { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
