package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/kapu/planning-center-groups-go/internal/constants"
)

func setRenderEnv(t *testing.T, baseURL, clientID, clientSecret string) {
	t.Helper()
	t.Setenv("PCG_API_BASE_URL", baseURL)
	t.Setenv("PCG_CLIENT_ID", clientID)
	t.Setenv("PCG_CLIENT_SECRET", clientSecret)
	t.Setenv("PCG_DEBUG_MODE", "")
	t.Setenv("PCG_TAG_FILTER", "")
	t.Setenv("PCG_GROUP_TYPE_FILTER", "")
	t.Setenv("SETTINGS_BACKEND", "memory")
	t.Setenv("ADMIN_USER", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "")
}

func runRender(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"render", "--group-type=", "--content="}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v\nstderr:\n%s", err, errOut.String())
	}
	return out.String(), errOut.String()
}

func TestRenderKeepsLogsOffStdout(t *testing.T) {
	setRenderEnv(t, "http://127.0.0.1:1", "", "")

	stdout, stderr := runRender(t)

	if want := constants.Messages.MissingCredentials + "\n"; stdout != want {
		t.Fatalf("stdout = %q, want only the fragment %q", stdout, want)
	}
	if !strings.Contains(stderr, "Services assembled") {
		t.Fatalf("expected startup logs on stderr, got %q", stderr)
	}
}

func TestRenderPrintsGrid(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"id":"1","attributes":{"name":"Small Group"},"relationships":{"group_type":{"data":{"type":"GroupType","id":"7"}}},"links":{"html":"https://groups.test/1"}},
			{"id":"2","attributes":{"name":"Study"},"relationships":{"group_type":{"data":{"type":"GroupType","id":"8"}}},"links":{"html":"https://groups.test/2"}}
		],"included":[
			{"type":"GroupType","id":"7","attributes":{"name":"Small Group"}},
			{"type":"GroupType","id":"8","attributes":{"name":"Bible Study"}}
		]}`))
	}))
	defer upstream.Close()
	setRenderEnv(t, upstream.URL, "id", "secret")

	stdout, stderr := runRender(t, "--group-type=bible")

	if !strings.HasPrefix(stdout, `<div class="pcg-group-grid"`) {
		t.Fatalf("stdout should start with the grid, got %q", stdout)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Find("div.pcg-group-card strong").Text(); got != "Study" {
		t.Fatalf("expected only the Bible Study group, got %q", got)
	}
	if strings.Contains(stdout, " | INFO | ") || strings.Contains(stdout, " | DEBUG | ") {
		t.Fatalf("log lines leaked into stdout:\n%s", stdout)
	}
	if !strings.Contains(stderr, "Planning Center response") {
		t.Fatalf("expected request logs on stderr, got %q", stderr)
	}
}
