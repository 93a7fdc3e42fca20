// Package latex compiles LaTeX sources into PDF inside disposable workspaces.
package latex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/metrics"
)

const (
	MaxLogChars  = 5000
	LogTailLines = 80

	texName          = "document.tex"
	pdfName          = "document.pdf"
	logName          = "document.log"
	defaultClassName = "main.cls"
	workspacePrefix  = "latex-"
)

// Compiler runs the typesetting toolchain with a bounded number of concurrent jobs.
type Compiler struct {
	cfg    config.LatexConfig
	runner Runner
	sem    *semaphore.Weighted
}

func NewCompiler(cfg config.LatexConfig, runner Runner) *Compiler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Passes < 1 {
		cfg.Passes = 1
	}
	if cfg.Binary == "" {
		cfg.Binary = "pdflatex"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Compiler{cfg: cfg, runner: runner, sem: semaphore.NewWeighted(int64(cfg.Workers))}
}

// Compile typesets tex, with an optional class file written next to it under
// clsName, and returns the PDF bytes. The workspace is removed on every path.
func (c *Compiler) Compile(ctx context.Context, tex, cls, clsName string) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, apperr.Wrap(apperr.KindCompilationTimeout, err, "Timed out waiting for a LaTeX worker")
	}
	defer c.sem.Release(1)
	metrics.CompileInflight.Inc()
	defer metrics.CompileInflight.Dec()

	start := time.Now()
	defer func() { metrics.CompileDuration.Observe(time.Since(start).Seconds()) }()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	dir, err := c.createWorkspace()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warnw("failed to remove latex workspace", "dir", dir, "error", err)
		}
	}()

	if err := os.WriteFile(filepath.Join(dir, texName), []byte(tex), 0o600); err != nil {
		return nil, apperr.Wrap(apperr.KindWorkspace, err, "Failed to write LaTeX source")
	}
	if cls != "" {
		name := className(clsName)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(cls), 0o600); err != nil {
			return nil, apperr.Wrap(apperr.KindWorkspace, err, "Failed to write class file")
		}
	}

	args := []string{
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-file-line-error",
		"-output-directory=" + dir,
		texName,
	}
	for pass := 1; pass <= c.cfg.Passes; pass++ {
		out, runErr := c.runner.Run(ctx, dir, c.cfg.Binary, args...)
		if ctx.Err() != nil {
			return nil, apperr.Wrap(apperr.KindCompilationTimeout, ctx.Err(), "LaTeX compilation timed out")
		}
		if runErr != nil {
			logger.Debugf("latex pass %d failed: %v", pass, runErr)
			return nil, apperr.Wrap(apperr.KindCompilation, runErr, "LaTeX compilation failed").
				WithDetail(diagnostics(dir, out))
		}
	}

	pdf, err := os.ReadFile(filepath.Join(dir, pdfName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.New(apperr.KindCompilation, "LaTeX compilation produced no PDF").
				WithDetail(diagnostics(dir, nil))
		}
		return nil, apperr.Wrap(apperr.KindWorkspace, err, "Failed to read compiled PDF")
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		return nil, apperr.New(apperr.KindCompilation, "LaTeX compilation produced an invalid PDF")
	}
	return pdf, nil
}

func (c *Compiler) createWorkspace() (string, error) {
	base := c.cfg.TempDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, workspacePrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", apperr.Wrap(apperr.KindWorkspace, err, "Failed to create compile workspace")
	}
	return dir, nil
}

// className keeps only the base name so a class file can never escape the workspace.
func className(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	switch name {
	case "", ".", "..", string(filepath.Separator), texName:
		return defaultClassName
	}
	return name
}

// diagnostics prefers the engine log over process output. Workspace paths are removed.
func diagnostics(dir string, out []byte) string {
	text := string(out)
	if data, err := os.ReadFile(filepath.Join(dir, logName)); err == nil && len(data) > 0 {
		text = string(data)
	}
	text = strings.ReplaceAll(text, dir+string(filepath.Separator), "")
	text = strings.ReplaceAll(text, dir, ".")
	return tailLines(truncateHead(text, MaxLogChars), LogTailLines)
}

// truncateHead keeps the last max bytes, where the error usually is.
func truncateHead(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("...[%d bytes truncated]...\n%s", len(s)-max, s[len(s)-max:])
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

