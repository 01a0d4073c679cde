package content

import (
	"log/slog"
	"os"
	"strings"
)

// Placeholder flows through the pipeline when the corpus file is missing.
// Authentication against it deterministically fails, which is the intended
// degraded behavior rather than an error path.
const Placeholder = "Content file not found. Please contact admin."

// Loader reads the member/event corpus from a local markdown file. The file
// is re-read on every request so content edits take effect without a restart.
type Loader struct {
	path string
	log  *slog.Logger
}

func NewLoader(path string, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{path: path, log: log}
}

// Load returns the full corpus text, or Placeholder if the file cannot be read.
func (l *Loader) Load() string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		l.log.Error("content file unavailable", "path", l.path, "error", err)
		return Placeholder
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return Placeholder
	}
	return text
}

// Available reports whether the corpus file is currently readable.
func (l *Loader) Available() bool {
	info, err := os.Stat(l.path)
	return err == nil && !info.IsDir()
}
