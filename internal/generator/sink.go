package generator

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// inlBanner is prepended to every generated artifact.
const inlBanner = `/* WARNING: This is auto-generated file. Do not modify, since changes will
 * be lost! Modify the generating script instead.
 */`

// ArtifactSink receives finished artifacts from generator passes. The
// name is a bare file name; placement is the sink's business.
type ArtifactSink interface {
	Write(name string, lines []string) error
}

// renderArtifact assembles the final byte content: banner, lines joined
// with newlines, trailing newline.
func renderArtifact(lines []string) []byte {
	var b bytes.Buffer
	b.WriteString(inlBanner)
	b.WriteByte('\n')
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteByte('\n')
	return b.Bytes()
}

// DirSink writes artifacts into a directory, skipping files whose
// content is already up to date so build systems see no timestamp
// churn.
type DirSink struct {
	dir    string
	logger *slog.Logger
}

func NewDirSink(dir string, logger *slog.Logger) *DirSink {
	return &DirSink{dir: dir, logger: logger}
}

func (s *DirSink) Write(name string, lines []string) error {
	content := renderArtifact(lines)
	path := filepath.Join(s.dir, name)

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		s.logger.Debug("Artifact up to date", "file", name)
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	s.logger.Info("Wrote artifact", "file", name, "lines", len(lines))
	return nil
}

// MemSink collects artifacts in memory.
type MemSink struct {
	Artifacts map[string][]string
}

func NewMemSink() *MemSink {
	return &MemSink{Artifacts: make(map[string][]string)}
}

func (s *MemSink) Write(name string, lines []string) error {
	s.Artifacts[name] = append([]string(nil), lines...)
	return nil
}
