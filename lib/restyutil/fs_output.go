package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput dumps one file per captured request/response pair,
// named by message id. The directory is wiped on construction so every
// scrape run starts from a clean capture set.
type FilesystemOutput struct {
	dir string
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	os.RemoveAll(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		panic(err)
	}
	return FilesystemOutput{dir: dir}
}

func (o FilesystemOutput) Write(id string, contents string) {
	path := filepath.Join(o.dir, id+".http")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		slog.Warn("failed to write http dump", "path", path, "err", err)
	}
}
