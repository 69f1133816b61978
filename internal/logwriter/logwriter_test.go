package logwriter

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/config"
	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"github.com/juju/loggo"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type WriterSuite struct{}

var _ = check.Suite(&WriterSuite{})

func (s *WriterSuite) TearDownTest(c *check.C) {
	loggo.ResetLogging()
	err := loggo.RegisterWriter(loggo.DefaultWriterName, loggo.NewSimpleWriter(os.Stderr, loggo.DefaultFormatter))
	c.Assert(err, check.IsNil)
}

func (s *WriterSuite) TestFormatEntry(c *check.C) {
	w := &writer{}
	line := w.formatEntry(loggo.Entry{
		Level:     loggo.WARNING,
		Module:    "main.scanner",
		Filename:  "/src/rpi-tools/internal/scanner/scanner.go",
		Line:      42,
		Timestamp: time.Date(2019, 9, 1, 10, 0, 0, 0, time.UTC),
		Message:   "no answer",
	})
	c.Assert(line, check.Equals, "[W4|main.scanner:scanner.go:42] no answer")
}

func (s *WriterSuite) TestSetupWritesStderrAndFile(c *check.C) {
	dir, err := ioutil.TempDir("", "rpi-tools-log")
	c.Assert(err, check.IsNil)
	defer os.RemoveAll(dir)

	cfg := config.Default()
	cfg.LogLevel = "<root>=INFO"
	cfg.LogPath = filepath.Join(dir, "tool.log")

	out := &bytes.Buffer{}
	c.Assert(setup(cfg, out), check.IsNil)

	logger := loggo.GetLogger("main.test")
	logger.Debugf("hidden")
	logger.Infof("bus opened")

	c.Assert(out.String(), check.Matches, `\[I3\|main.test:logwriter_test.go:\d+\] bus opened\n`)

	b, err := ioutil.ReadFile(cfg.LogPath)
	c.Assert(err, check.IsNil)
	c.Assert(strings.Count(string(b), "\n"), check.Equals, 1)
	c.Assert(string(b), check.Matches, `\[\d{4}-\d\d-\d\d \d\d:\d\d:\d\d\] .*logwriter_test.go:\d+ \[I3\|main.test:.*\] bus opened\n`)
}

func (s *WriterSuite) TestInvalidLevel(c *check.C) {
	cfg := config.Default()
	cfg.LogLevel = "<root>=LOUD"
	err := setup(cfg, &bytes.Buffer{})
	c.Assert(failure.KindOf(err), check.Equals, failure.Configuration)
}

func (s *WriterSuite) TestSetupWithoutDefaultWriter(c *check.C) {
	loggo.ResetWriters()

	out := &bytes.Buffer{}
	cfg := config.Default()
	cfg.LogLevel = "<root>=INFO"
	c.Assert(setup(cfg, out), check.IsNil)
	c.Assert(setup(cfg, out), check.IsNil)

	loggo.GetLogger("main.test").Infof("once")
	c.Assert(strings.Count(out.String(), "once"), check.Equals, 1)
}
