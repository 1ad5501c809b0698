package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    interface{}
	}{
		{"Docset", KeyDocset, "azure-docs", Docset("azure-docs")},
		{"SiteName", KeySiteName, "Docs", SiteName("Docs")},
		{"Hostname", KeyHostname, "docs.example.com", Hostname("docs.example.com")},
		{"Locale", KeyLocale, "en-us", Locale("en-us")},
		{"Environment", KeyEnvironment, "production", Environment("production")},
		{"Repository", KeyRepo, "https://example.com/org/repo", Repository("https://example.com/org/repo")},
		{"Branch", KeyBranch, "main", Branch("main")},
		{"URL", KeyURL, "https://example.com", URL("https://example.com")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Endpoint", KeyEndpoint, "docsets", Endpoint("docsets")},
		{"Scope", KeyScope, "build_config", Scope("build_config")},
		{"SessionID", KeySessionID, "sid-1", SessionID("sid-1")},
		{"RulesetVersion", KeyRuleset, "v42", RulesetVersion("v42")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
		{"UserAgent", KeyUserAgent, "ua", UserAgent("ua")},
		{"Subject", KeySubject, "ops.events", Subject("ops.events")},
	}

	for _, tc := range cases {
		a := tc.attr.(slog.Attr)
		if a.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, a.Key)
		}
		if got := a.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Status(200); v.Key != KeyStatus {
		t.Fatalf("Status key mismatch: %s", v.Key)
	}
	if v := ResponseSize(42); v.Key != KeyResponseSz {
		t.Fatalf("ResponseSize key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
	if v := Count(3); v.Key != KeyCount {
		t.Fatalf("Count key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
