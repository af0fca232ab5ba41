package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputName derives the subtitle file name for a source media path. The
// final extension is stripped from the full path (the directory part stays,
// so output lands next to the source); a path with nothing separable keeps
// its original form. Best-mode selections (index 0) get ".<lang>.<format>",
// indexed selections get ".<lang>-<index>.<format>".
func OutputName(source, lang string, index int, format string) string {
	stem := source
	if ext := filepath.Ext(source); ext != "" {
		trimmed := strings.TrimSuffix(source, ext)
		if base := filepath.Base(trimmed); base != "" && base != "." && !strings.HasSuffix(trimmed, string(filepath.Separator)) {
			stem = trimmed
		}
	}
	if index > 0 {
		return fmt.Sprintf("%s.%s-%d.%s", stem, lang, index, format)
	}
	return fmt.Sprintf("%s.%s.%s", stem, lang, format)
}
