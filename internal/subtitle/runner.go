package subtitle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"subfetch/internal/logging"
	"subfetch/internal/oshash"
	"subfetch/internal/services"
)

// Attempt statuses recorded in the journal and run summary.
const (
	StatusDownloaded = "downloaded"
	StatusFailed     = "failed"
	StatusNoMatch    = "no match"
)

// Attempt is the outcome of one unit of work: a candidate materialization, a
// language with no candidates, or a file that failed before selection.
type Attempt struct {
	RunID  string
	Source string
	Lang   string
	Output string
	Score  float64
	Status string
	Detail string
	When   time.Time
}

// Catalog is the transport surface the runner consumes: fingerprint search
// plus payload retrieval. Satisfied by catalog.Client.
type Catalog interface {
	Search(ctx context.Context, token, langs string, fp oshash.Fingerprint) ([]map[string]any, error)
	Fetcher
}

// Journal records attempts as they complete. Satisfied by history.Store.
type Journal interface {
	Append(ctx context.Context, attempt Attempt) error
}

// Runner drives the per-file pipeline: fingerprint, search, rank per
// requested language, materialize the selection. Every failure is contained
// to its own unit (candidate, language, or file) and reported without
// stopping sibling work.
type Runner struct {
	Catalog   Catalog
	Languages []string
	Mode      Mode
	RunID     string
	Logger    *slog.Logger
	Journal   Journal
	Out       io.Writer
	ErrOut    io.Writer
}

// Run processes each file in order and returns every attempt for the run
// summary. A canceled context stops the batch between files.
func (r *Runner) Run(ctx context.Context, token string, files []string) []Attempt {
	var attempts []Attempt
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		attempts = append(attempts, r.processFile(ctx, token, file)...)
	}
	return attempts
}

func (r *Runner) processFile(ctx context.Context, token, path string) []Attempt {
	log := r.logger().With(logging.String(logging.FieldSource, path))

	if err := writableDir(outputDir(path)); err != nil {
		return []Attempt{r.failFile(ctx, log, path, err)}
	}

	fp, err := oshash.FromFile(path)
	if err != nil {
		return []Attempt{r.failFile(ctx, log, path, err)}
	}
	log.Debug("fingerprint computed",
		logging.Uint64("size", fp.Size),
		logging.String("hash", fp.HexHash()),
	)

	records, err := r.Catalog.Search(ctx, token, strings.Join(r.Languages, ","), fp)
	if err != nil {
		return []Attempt{r.failFile(ctx, log, path, err)}
	}
	candidates := CandidatesFromRecords(records)
	log.Debug("search complete",
		logging.Int("hits", len(records)),
		logging.Int("candidates", len(candidates)),
	)

	var attempts []Attempt
	for _, lang := range r.Languages {
		attempts = append(attempts, r.processLanguage(ctx, log, path, lang, candidates)...)
	}
	return attempts
}

func (r *Runner) processLanguage(ctx context.Context, log *slog.Logger, path, lang string, candidates []Candidate) []Attempt {
	group := RankByLanguage(candidates, lang)
	if len(group) == 0 {
		fmt.Fprintf(r.errOut(), "%s: No %s subtitles\n", path, lang)
		log.Warn("no subtitles for language", logging.String(logging.FieldLanguage, lang))
		return []Attempt{r.record(ctx, Attempt{
			Source: path,
			Lang:   lang,
			Status: StatusNoMatch,
		})}
	}

	if r.Mode == Best {
		return []Attempt{r.materializeOne(ctx, log, path, lang, 0, group[0])}
	}
	attempts := make([]Attempt, 0, len(group))
	for i, candidate := range group {
		attempts = append(attempts, r.materializeOne(ctx, log, path, lang, i+1, candidate))
	}
	return attempts
}

func (r *Runner) materializeOne(ctx context.Context, log *slog.Logger, path, lang string, index int, candidate Candidate) Attempt {
	output := OutputName(path, lang, index, candidate.Format)
	attempt := Attempt{
		Source: path,
		Lang:   lang,
		Output: output,
		Score:  candidate.Score,
	}

	if err := Materialize(ctx, r.Catalog, output, candidate); err != nil {
		fmt.Fprintln(r.errOut(), err)
		log.Warn("download failed",
			logging.String(logging.FieldLanguage, lang),
			logging.String("url", candidate.URL),
			logging.String("kind", services.Classify(err)),
			logging.Error(err),
		)
		attempt.Status = StatusFailed
		attempt.Detail = err.Error()
		return r.record(ctx, attempt)
	}

	fmt.Fprintf(r.out(), "%s %2.1f\n", output, candidate.Score)
	log.Debug("download complete",
		logging.String(logging.FieldLanguage, lang),
		logging.String("output", output),
		logging.Float64("score", candidate.Score),
	)
	attempt.Status = StatusDownloaded
	return r.record(ctx, attempt)
}

func (r *Runner) failFile(ctx context.Context, log *slog.Logger, path string, err error) Attempt {
	fmt.Fprintln(r.errOut(), err)
	log.Warn("file skipped",
		logging.String("kind", services.Classify(err)),
		logging.Error(err),
	)
	return r.record(ctx, Attempt{
		Source: path,
		Status: StatusFailed,
		Detail: err.Error(),
	})
}

// record stamps the attempt and appends it to the journal. Journal failures
// only cost the history entry, never the download.
func (r *Runner) record(ctx context.Context, attempt Attempt) Attempt {
	attempt.RunID = r.RunID
	attempt.When = time.Now().UTC()
	if r.Journal != nil {
		if err := r.Journal.Append(ctx, attempt); err != nil {
			r.logger().Warn("journal append failed", logging.Error(err))
		}
	}
	return attempt
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.NewNop()
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func (r *Runner) errOut() io.Writer {
	if r.ErrOut != nil {
		return r.ErrOut
	}
	return os.Stderr
}

func outputDir(path string) string {
	dir := filepath.Dir(path)
	if dir == "" {
		return "."
	}
	return dir
}

// writableDir verifies up front that subtitles can land next to the source,
// so a read-only directory fails the file before any network work.
func writableDir(dir string) error {
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return services.Wrap(services.ErrIO, "preflight", "access",
			fmt.Sprintf("directory %s is not writable", dir), err)
	}
	return nil
}
