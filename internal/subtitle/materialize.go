package subtitle

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"

	"subfetch/internal/services"
)

// Fetcher retrieves the raw (gzip-compressed) payload behind a candidate's
// download link. Satisfied by catalog.Client.
type Fetcher interface {
	FetchPayload(ctx context.Context, url string) ([]byte, error)
}

// Materialize turns one selected candidate into a file on disk: fetch the
// payload, decompress it fully, write it to outputPath (created or
// truncated). Failures are tagged for classification; none of them abort
// sibling candidates.
func Materialize(ctx context.Context, fetcher Fetcher, outputPath string, candidate Candidate) error {
	payload, err := fetcher.FetchPayload(ctx, candidate.URL)
	if err != nil {
		return err
	}

	reader, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return services.Wrap(services.ErrDecode, "materialize", "gunzip", candidate.URL, err)
	}
	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return services.Wrap(services.ErrDecode, "materialize", "gunzip", candidate.URL, err)
	}
	if err := reader.Close(); err != nil {
		return services.Wrap(services.ErrDecode, "materialize", "gunzip", candidate.URL, err)
	}

	if err := os.WriteFile(outputPath, decompressed, 0o644); err != nil {
		return services.Wrap(services.ErrIO, "materialize", "write", outputPath, err)
	}
	return nil
}
