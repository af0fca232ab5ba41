package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-isatty"

	"subfetch/internal/language"
	"subfetch/internal/subtitle"
)

// printRunSummary writes a per-attempt table after a batch. On non-terminal
// writers it degrades to a one-line tally so piped output stays clean.
func printRunSummary(w io.Writer, attempts []subtitle.Attempt) {
	if len(attempts) == 0 {
		return
	}

	downloaded, failed, noMatch := tallyAttempts(attempts)

	if !writerIsTerminal(w) {
		fmt.Fprintf(w, "summary: %d downloaded, %d failed, %d without matches\n", downloaded, failed, noMatch)
		return
	}

	rows := make([][]string, 0, len(attempts))
	for _, attempt := range attempts {
		score := ""
		if attempt.Status == subtitle.StatusDownloaded {
			score = strconv.FormatFloat(attempt.Score, 'f', 1, 64)
		}
		rows = append(rows, []string{
			attempt.Source,
			language.Display(attempt.Lang),
			attempt.Status,
			score,
			attempt.Output,
		})
	}

	fmt.Fprintln(w, attemptTable(
		[]string{"File", "Language", "Status", "Score", "Output"},
		rows,
		3,
	))
	fmt.Fprintf(w, "%d downloaded, %d failed, %d without matches\n", downloaded, failed, noMatch)
}

func tallyAttempts(attempts []subtitle.Attempt) (downloaded, failed, noMatch int) {
	for _, attempt := range attempts {
		switch attempt.Status {
		case subtitle.StatusDownloaded:
			downloaded++
		case subtitle.StatusFailed:
			failed++
		case subtitle.StatusNoMatch:
			noMatch++
		}
	}
	return downloaded, failed, noMatch
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
