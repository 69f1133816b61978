package logwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/config"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/file"
	"github.com/juju/loggo"
	"github.com/pkg/errors"
)

type writer struct {
	mu      sync.Mutex
	out     io.Writer
	logPath string
}

// Setup replaces loggo's default writer with one writing to stderr and,
// if cfg.LogPath is set, appending to that file. stdout stays reserved for
// the tools' own output.
func Setup(cfg *config.Config) error {
	return setup(cfg, os.Stderr)
}

func setup(cfg *config.Config, out io.Writer) error {
	if err := loggo.ConfigureLoggers(cfg.LogLevel); err != nil {
		return failure.Wrap(errors.Wrapf(err, "invalid log level %q", cfg.LogLevel), failure.Configuration, "logwriter")
	}

	// absent after loggo.ResetLogging, nothing to replace then
	_, _ = loggo.RemoveWriter(loggo.DefaultWriterName)

	return loggo.RegisterWriter(loggo.DefaultWriterName, &writer{
		out:     out,
		logPath: cfg.LogPath,
	})
}

func (w *writer) Write(e loggo.Entry) {
	line := w.formatEntry(e)

	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintln(w.out, line)

	if w.logPath == "" {
		return
	}

	fp := e.Filename
	ix := strings.Index(e.Filename, "rpi-tools/")
	if ix != -1 {
		fp = fp[ix+len("rpi-tools/"):]
	}

	l := fmt.Sprintf("%v%v:%v %v\n",
		e.Timestamp.Format("[2006-01-02 15:04:05] "),
		fp, e.Line,
		line,
	)
	if err := file.Append(w.logPath, []byte(l)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log file: %v\n", err)
	}
}

func (w *writer) formatEntry(e loggo.Entry) string {
	// who can remember the order of the levels right?
	// indicate the level like T1 for TRACE D2 for debug, etc
	return fmt.Sprintf(
		"[%v%v|%v:%v:%v] %v",
		string(e.Level.String()[0]),
		int(e.Level),
		e.Module,
		filepath.Base(e.Filename),
		e.Line,
		e.Message,
	)
}
