package subtitle

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subfetch/internal/oshash"
	"subfetch/internal/services"
)

// fakeCatalog serves canned search records keyed by nothing (one batch per
// test) and payloads keyed by URL.
type fakeCatalog struct {
	records    []map[string]any
	searchErrs map[string]error // keyed by langs query string
	fetcher    fakeFetcher

	searches []string // langs query strings seen
}

func (f *fakeCatalog) Search(_ context.Context, _, langs string, _ oshash.Fingerprint) ([]map[string]any, error) {
	f.searches = append(f.searches, langs)
	if err, ok := f.searchErrs[langs]; ok {
		return nil, err
	}
	return f.records, nil
}

func (f *fakeCatalog) FetchPayload(ctx context.Context, url string) ([]byte, error) {
	return f.fetcher.FetchPayload(ctx, url)
}

type memoryJournal struct {
	attempts []Attempt
}

func (j *memoryJournal) Append(_ context.Context, attempt Attempt) error {
	j.attempts = append(j.attempts, attempt)
	return nil
}

// writeMediaFixture creates a file big enough to fingerprint.
func writeMediaFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, oshash.ChunkSize+100), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func record(url, lang string, score float64) map[string]any {
	return map[string]any{
		"SubDownloadLink": url,
		"SubLanguageID":   lang,
		"Score":           score,
	}
}

func TestRunnerBestModeDownloadsTopCandidate(t *testing.T) {
	dir := t.TempDir()
	source := writeMediaFixture(t, dir, "movie.mkv")

	catalog := &fakeCatalog{
		records: []map[string]any{
			record("https://dl.example/low.gz", "eng", 2.0),
			record("https://dl.example/high.gz", "eng", 9.5),
		},
		fetcher: fakeFetcher{payloads: map[string][]byte{
			"https://dl.example/high.gz": gzipBytes(t, []byte("best subtitle")),
		}},
	}
	var out, errOut bytes.Buffer
	journal := &memoryJournal{}
	runner := &Runner{
		Catalog:   catalog,
		Languages: []string{"eng"},
		Mode:      Best,
		RunID:     "run-1",
		Journal:   journal,
		Out:       &out,
		ErrOut:    &errOut,
	}

	attempts := runner.Run(context.Background(), "tok", []string{source})

	wantOutput := filepath.Join(dir, "movie.eng.srt")
	content, err := os.ReadFile(wantOutput)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(content) != "best subtitle" {
		t.Errorf("content = %q", content)
	}
	if got, want := out.String(), fmt.Sprintf("%s 9.5\n", wantOutput); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr should be empty, got %q", errOut.String())
	}
	if len(attempts) != 1 || attempts[0].Status != StatusDownloaded {
		t.Errorf("attempts = %+v", attempts)
	}
	if len(journal.attempts) != 1 || journal.attempts[0].RunID != "run-1" {
		t.Errorf("journal = %+v", journal.attempts)
	}
	if len(catalog.searches) != 1 || catalog.searches[0] != "eng" {
		t.Errorf("searches = %v", catalog.searches)
	}
}

func TestRunnerAllModeIndexesEveryCandidate(t *testing.T) {
	dir := t.TempDir()
	source := writeMediaFixture(t, dir, "movie.mkv")

	catalog := &fakeCatalog{
		records: []map[string]any{
			record("https://dl.example/one.gz", "eng", 5.0),
			record("https://dl.example/two.gz", "eng", 9.0),
		},
		fetcher: fakeFetcher{payloads: map[string][]byte{
			"https://dl.example/one.gz": gzipBytes(t, []byte("five")),
			"https://dl.example/two.gz": gzipBytes(t, []byte("nine")),
		}},
	}
	var out bytes.Buffer
	runner := &Runner{
		Catalog:   catalog,
		Languages: []string{"eng"},
		Mode:      All,
		Out:       &out,
		ErrOut:    new(bytes.Buffer),
	}

	runner.Run(context.Background(), "tok", []string{source})

	// Higher score ranks first, so index 1 is the 9.0 candidate.
	first := filepath.Join(dir, "movie.eng-1.srt")
	second := filepath.Join(dir, "movie.eng-2.srt")
	if content, err := os.ReadFile(first); err != nil || string(content) != "nine" {
		t.Errorf("first = %q err = %v", content, err)
	}
	if content, err := os.ReadFile(second); err != nil || string(content) != "five" {
		t.Errorf("second = %q err = %v", content, err)
	}
	wantLines := fmt.Sprintf("%s 9.0\n%s 5.0\n", first, second)
	if out.String() != wantLines {
		t.Errorf("stdout = %q, want %q", out.String(), wantLines)
	}
}

func TestRunnerMissingLanguageWarns(t *testing.T) {
	dir := t.TempDir()
	source := writeMediaFixture(t, dir, "movie.mkv")

	catalog := &fakeCatalog{
		records: []map[string]any{record("https://dl.example/e.gz", "eng", 1.0)},
		fetcher: fakeFetcher{payloads: map[string][]byte{
			"https://dl.example/e.gz": gzipBytes(t, []byte("x")),
		}},
	}
	var out, errOut bytes.Buffer
	runner := &Runner{
		Catalog:   catalog,
		Languages: []string{"eng", "spa"},
		Mode:      Best,
		Out:       &out,
		ErrOut:    &errOut,
	}

	attempts := runner.Run(context.Background(), "tok", []string{source})

	want := fmt.Sprintf("%s: No spa subtitles\n", source)
	if errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
	if len(attempts) != 2 {
		t.Fatalf("attempts = %+v", attempts)
	}
	if attempts[0].Status != StatusDownloaded || attempts[1].Status != StatusNoMatch {
		t.Errorf("statuses = %q, %q", attempts[0].Status, attempts[1].Status)
	}
	// One query carries all requested languages; the miss never re-queries.
	if len(catalog.searches) != 1 || catalog.searches[0] != "eng,spa" {
		t.Errorf("searches = %v", catalog.searches)
	}
}

func TestRunnerBatchIsolation(t *testing.T) {
	dir := t.TempDir()
	source := writeMediaFixture(t, dir, "movie.mkv")

	// Candidate A (eng) fails at the transport; candidate B (fre) succeeds.
	catalog := &fakeCatalog{
		records: []map[string]any{
			record("https://dl.example/a.gz", "eng", 5.0),
			record("https://dl.example/b.gz", "fre", 8.0),
		},
		fetcher: fakeFetcher{
			payloads: map[string][]byte{
				"https://dl.example/b.gz": gzipBytes(t, []byte("french")),
			},
			errs: map[string]error{
				"https://dl.example/a.gz": services.Wrap(services.ErrTransport, "catalog", "fetch", "connection reset", nil),
			},
		},
	}
	var out, errOut bytes.Buffer
	runner := &Runner{
		Catalog:   catalog,
		Languages: []string{"eng", "fre"},
		Mode:      Best,
		Out:       &out,
		ErrOut:    &errOut,
	}

	attempts := runner.Run(context.Background(), "tok", []string{source})

	freOutput := filepath.Join(dir, "movie.fre.srt")
	if content, err := os.ReadFile(freOutput); err != nil || string(content) != "french" {
		t.Errorf("fre output = %q err = %v", content, err)
	}
	if !strings.Contains(errOut.String(), "connection reset") {
		t.Errorf("stderr should report the eng failure: %q", errOut.String())
	}
	if want := fmt.Sprintf("%s 8.0\n", freOutput); out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
	if len(attempts) != 2 || attempts[0].Status != StatusFailed || attempts[1].Status != StatusDownloaded {
		t.Errorf("attempts = %+v", attempts)
	}
}

func TestRunnerFileFailureDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	good := writeMediaFixture(t, dir, "good.mkv")
	// Too small to fingerprint.
	bad := filepath.Join(dir, "bad.mkv")
	if err := os.WriteFile(bad, []byte("tiny"), 0o644); err != nil {
		t.Fatalf("write bad fixture: %v", err)
	}

	catalog := &fakeCatalog{
		records: []map[string]any{record("https://dl.example/g.gz", "eng", 3.0)},
		fetcher: fakeFetcher{payloads: map[string][]byte{
			"https://dl.example/g.gz": gzipBytes(t, []byte("ok")),
		}},
	}
	var out, errOut bytes.Buffer
	runner := &Runner{
		Catalog:   catalog,
		Languages: []string{"eng"},
		Mode:      Best,
		Out:       &out,
		ErrOut:    &errOut,
	}

	attempts := runner.Run(context.Background(), "tok", []string{bad, good})

	if len(attempts) != 2 {
		t.Fatalf("attempts = %+v", attempts)
	}
	if attempts[0].Status != StatusFailed || attempts[0].Source != bad {
		t.Errorf("first attempt = %+v", attempts[0])
	}
	if attempts[1].Status != StatusDownloaded || attempts[1].Source != good {
		t.Errorf("second attempt = %+v", attempts[1])
	}
	if _, err := os.Stat(filepath.Join(dir, "good.eng.srt")); err != nil {
		t.Errorf("good output missing: %v", err)
	}
	if errOut.Len() == 0 {
		t.Error("bad file error should be reported")
	}
}

func TestRunnerSearchFailureIsScopedToFile(t *testing.T) {
	dir := t.TempDir()
	source := writeMediaFixture(t, dir, "movie.mkv")

	catalog := &fakeCatalog{
		searchErrs: map[string]error{
			"eng": services.Wrap(services.ErrTransport, "catalog", "search", "503", nil),
		},
	}
	var errOut bytes.Buffer
	runner := &Runner{
		Catalog:   catalog,
		Languages: []string{"eng"},
		Mode:      Best,
		Out:       new(bytes.Buffer),
		ErrOut:    &errOut,
	}

	attempts := runner.Run(context.Background(), "tok", []string{source})
	if len(attempts) != 1 || attempts[0].Status != StatusFailed {
		t.Errorf("attempts = %+v", attempts)
	}
	if !strings.Contains(errOut.String(), "503") {
		t.Errorf("stderr = %q", errOut.String())
	}
}
