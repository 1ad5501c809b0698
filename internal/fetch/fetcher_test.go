package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"git.home.luguber.info/inful/opsadapter/internal/config"
	"git.home.luguber.info/inful/opsadapter/internal/diagnostics"
	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

func testEnv(token string) config.Environment {
	return config.Environment{
		Tier:     config.EnvironmentProduction,
		OpsToken: token,
	}
}

func TestFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"rules": []}`))
	}))
	defer server.Close()

	fetcher := New(server.Client(), testEnv(""), nil, nil)

	body, err := fetcher.Fetch(t.Context(), server.URL, Options{Scope: "rules"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if body != `{"rules": []}` {
		t.Errorf("Fetch() body = %q, expected rules document", body)
	}
}

func TestFetchInjectsHeaders(t *testing.T) {
	var gotToken, gotRepo, gotBranch string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(HeaderBuildUserToken)
		gotRepo = r.Header.Get(HeaderRepositoryURL)
		gotBranch = r.Header.Get(HeaderRepositoryBranch)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := New(server.Client(), testEnv("secret token; with=odd chars"), nil, nil)

	_, err := fetcher.Fetch(t.Context(), server.URL, Options{
		Headers: map[string]string{
			HeaderRepositoryURL:    "https://github.com/org/repo",
			HeaderRepositoryBranch: "feature/x",
		},
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if gotToken != "secret token; with=odd chars" {
		t.Errorf("token header = %q, expected verbatim value", gotToken)
	}
	if gotRepo != "https://github.com/org/repo" {
		t.Errorf("repository header = %q", gotRepo)
	}
	if gotBranch != "feature/x" {
		t.Errorf("branch header = %q", gotBranch)
	}
}

func TestFetchOmitsEmptyToken(t *testing.T) {
	var tokenPresent bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, tokenPresent = r.Header[HeaderBuildUserToken]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := New(server.Client(), testEnv(""), nil, nil)
	if _, err := fetcher.Fetch(t.Context(), server.URL, Options{}); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if tokenPresent {
		t.Error("expected no token header when the environment has none")
	}
}

func TestFetchForwardsRulesetVersionAsDiagnostic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRulesetVersion, "2024-06-01")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("body"))
	}))
	defer server.Close()

	collector := diagnostics.NewCollector()
	reporter := diagnostics.NewReporter(collector)
	fetcher := New(server.Client(), testEnv(""), reporter, nil)

	body, err := fetcher.Fetch(t.Context(), server.URL, Options{})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if body != "body" {
		t.Errorf("Fetch() body = %q", body)
	}

	events := collector.ByKind(diagnostics.KindRulesetVersion)
	if len(events) != 1 {
		t.Fatalf("expected 1 ruleset_version event, got %d", len(events))
	}
	if events[0].Fields["version"] != "2024-06-01" {
		t.Errorf("expected version field, got %v", events[0].Fields)
	}
}

func TestFetchNoDiagnosticWithoutVersionHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	collector := diagnostics.NewCollector()
	fetcher := New(server.Client(), testEnv(""), diagnostics.NewReporter(collector), nil)

	if _, err := fetcher.Fetch(t.Context(), server.URL, Options{}); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if events := collector.Events(); len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestFetchNotFoundRunsHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := New(server.Client(), testEnv(""), nil, nil)

	t.Run("hook error replaces transport error", func(t *testing.T) {
		substituted := ferrors.DocsetError("docset \"foo\" is not provisioned").Build()
		_, err := fetcher.Fetch(t.Context(), server.URL, Options{
			On404: func() error { return substituted },
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if !ferrors.HasCategory(err, ferrors.CategoryDocset) {
			t.Errorf("expected docset category, got %v", ferrors.GetCategory(err))
		}
		if !ferrors.IsWarning(err) {
			t.Error("expected warning severity from hook error")
		}
	})

	t.Run("nil hook result leaves 404 a transport error", func(t *testing.T) {
		hookRan := false
		_, err := fetcher.Fetch(t.Context(), server.URL, Options{
			On404: func() error { hookRan = true; return nil },
		})
		if !hookRan {
			t.Error("expected hook to run on 404")
		}
		assertNetworkStatus(t, err, http.StatusNotFound)
	})

	t.Run("no hook yields transport error", func(t *testing.T) {
		_, err := fetcher.Fetch(t.Context(), server.URL, Options{})
		assertNetworkStatus(t, err, http.StatusNotFound)
	})
}

func TestFetchNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := New(server.Client(), testEnv(""), nil, nil)
	hookRan := false

	_, err := fetcher.Fetch(t.Context(), server.URL, Options{
		On404: func() error { hookRan = true; return nil },
	})
	if hookRan {
		t.Error("expected hook to stay idle for non-404 status")
	}
	assertNetworkStatus(t, err, http.StatusBadGateway)
}

func TestFetchRejectedToken(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		fetcher := New(server.Client(), testEnv("expired-token"), nil, nil)
		_, err := fetcher.Fetch(t.Context(), server.URL, Options{})
		server.Close()

		if !ferrors.HasCategory(err, ferrors.CategoryAuth) {
			t.Errorf("status %d: expected auth category, got %v", status, ferrors.GetCategory(err))
		}
		if classified, ok := ferrors.AsClassified(err); !ok || classified.CanRetry() {
			t.Errorf("status %d: a rejected token must not advise retry", status)
		}
	}
}

func TestFetchSendFailure(t *testing.T) {
	fetcher := New(http.DefaultClient, testEnv(""), nil, nil)

	// Port 0 is never reachable.
	_, err := fetcher.Fetch(t.Context(), "http://127.0.0.1:0/", Options{})
	if err == nil {
		t.Fatal("expected send failure")
	}
	if !ferrors.HasCategory(err, ferrors.CategoryNetwork) {
		t.Errorf("expected network category, got %v", ferrors.GetCategory(err))
	}
}

func assertNetworkStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	classified, ok := ferrors.AsClassified(err)
	if !ok {
		t.Fatalf("expected classified error, got %T", err)
	}
	if classified.Category() != ferrors.CategoryNetwork {
		t.Errorf("expected network category, got %v", classified.Category())
	}
	if got, ok := classified.Context().GetInt("status"); !ok || got != status {
		t.Errorf("expected status %d in context, got %v", status, classified.Context())
	}
}
