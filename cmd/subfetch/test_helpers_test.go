package main

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subfetch/internal/oshash"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// writeTestConfig writes a config pointing at the test catalog server with
// the history journal rooted in a temp dir.
func writeTestConfig(t *testing.T, dir, apiURL, languages string) string {
	t.Helper()
	content := fmt.Sprintf(`[catalog]
api_url = %q
request_timeout = 5

[subtitles]
languages = %q

[history]
enabled = true
dir = %q

[logging]
level = "error"
`, apiURL, languages, filepath.Join(dir, "state"))
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

// writeMediaFile creates a file large enough to fingerprint.
func writeMediaFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := make([]byte, oshash.ChunkSize+256)
	for i := range data {
		data[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	return path
}

func gzipBytes(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(payload)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func rpcString(name, value string) string {
	return fmt.Sprintf("<member><name>%s</name><value><string>%s</string></value></member>", name, value)
}

func rpcDouble(name string, value float64) string {
	return fmt.Sprintf("<member><name>%s</name><value><double>%g</double></value></member>", name, value)
}

func rpcStruct(members ...string) string {
	return "<value><struct>" + strings.Join(members, "") + "</struct></value>"
}

func rpcEnvelope(members ...string) string {
	return `<?xml version="1.0"?><methodResponse><params><param>` +
		rpcStruct(members...) +
		`</param></params></methodResponse>`
}

// offer describes one subtitle hit served by the fake catalog.
type offer struct {
	lang   string
	score  float64
	format string
}

// newCatalogServer serves LogIn, SearchSubtitles, and gzip payloads. Each
// offer's download link points back at the server, keyed by language and
// index, with "subtitle text <lang> <i>" as the decompressed body.
func newCatalogServer(t *testing.T, offers []offer) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
			if len(parts) != 3 || parts[0] != "payload" {
				http.NotFound(w, r)
				return
			}
			w.Write(gzipBytes(t, fmt.Sprintf("subtitle text %s %s", parts[1], parts[2])))
			return
		}

		body, _ := io.ReadAll(r.Body)
		switch {
		case strings.Contains(string(body), "<methodName>LogIn</methodName>"):
			fmt.Fprint(w, rpcEnvelope(
				rpcString("token", "test-token"),
				rpcString("status", "200 OK"),
			))
		case strings.Contains(string(body), "<methodName>SearchSubtitles</methodName>"):
			hits := make([]string, 0, len(offers))
			for i, o := range offers {
				link := fmt.Sprintf("%s/payload/%s/%d", server.URL, o.lang, i)
				hits = append(hits, rpcStruct(
					rpcString("SubDownloadLink", link),
					rpcString("SubLanguageID", o.lang),
					rpcDouble("Score", o.score),
					rpcString("SubFormat", o.format),
				))
			}
			fmt.Fprint(w, rpcEnvelope(
				rpcString("status", "200 OK"),
				fmt.Sprintf("<member><name>data</name><value><array><data>%s</data></array></value></member>",
					strings.Join(hits, "")),
			))
		default:
			http.Error(w, "unknown method", http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)
	return server
}
