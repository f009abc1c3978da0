// Command filelinked inspects and edits files written by filelinked handles.
//
//	filelinked show [flags] PATH
//	filelinked init [flags] PATH JSON
//	filelinked set  [flags] PATH KEY JSON
//
// Values are exchanged as JSON on the command line and stored with the
// configured codec (deterministic CBOR by default).
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdslog "log/slog"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/filelinked"
	asynchook "github.com/unkn0wn-root/filelinked/hooks/async"
	zaplog "github.com/unkn0wn-root/filelinked/log/zap"
	"github.com/unkn0wn-root/filelinked/sloghooks"
)

const usage = `usage:
  filelinked show [flags] PATH
  filelinked init [flags] PATH JSON
  filelinked set  [flags] PATH KEY JSON
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exit codes
const (
	exitOK = iota
	exitErr
	exitUsage
)

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	cmd, rest := args[0], args[1:]

	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	bindFlags(fs)
	if err := fs.Parse(rest); err != nil {
		return exitUsage
	}
	cfg, err := loadConfig(fs)
	if err != nil {
		fmt.Fprintln(stderr, "filelinked:", err)
		return exitErr
	}

	zl, err := newZap(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "filelinked:", err)
		return exitErr
	}
	defer func() { _ = zl.Sync() }()

	e := env{cfg: cfg, out: stdout, log: zaplog.ZapLogger{L: zl}}
	if cfg.Events {
		h := asynchook.New(sloghooks.New(stdslog.New(stdslog.NewTextHandler(stderr, &stdslog.HandlerOptions{
			Level: stdslog.LevelDebug,
		})), sloghooks.Options{}), 1, 64)
		defer h.Close()
		e.hooks = h
	}

	pos := fs.Args()
	switch cmd {
	case "show":
		err = needArgs(pos, 1, func() error { return e.show(pos[0]) })
	case "init":
		err = needArgs(pos, 2, func() error { return e.create(pos[0], pos[1]) })
	case "set":
		err = needArgs(pos, 3, func() error { return e.set(pos[0], pos[1], pos[2]) })
	default:
		err = errUsage
	}
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprint(stderr, usage)
		return exitUsage
	default:
		zl.Error("command failed", zap.String("cmd", cmd), zap.Error(err))
		fmt.Fprintln(stderr, "filelinked:", err)
		return exitErr
	}
}

var errUsage = errors.New("usage")

func needArgs(pos []string, n int, fn func() error) error {
	if len(pos) != n {
		return errUsage
	}
	return fn()
}

func newZap(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

type env struct {
	cfg   config
	out   io.Writer
	log   filelinked.Logger
	hooks filelinked.Hooks
}

func options[V any](e env) (filelinked.Options[V], error) {
	cd, err := codecFor[V](e.cfg)
	if err != nil {
		return filelinked.Options[V]{}, err
	}
	return filelinked.Options[V]{
		Codec:      cd,
		Logger:     e.log,
		Hooks:      e.hooks,
		Atomic:     e.cfg.Atomic,
		CreateDirs: true,
	}, nil
}

func (e env) show(path string) error {
	opts, err := options[any](e)
	if err != nil {
		return err
	}
	l, err := filelinked.Open(path, opts)
	if err != nil {
		return err
	}
	return e.printJSON(l.Readonly())
}

func (e env) create(path, raw string) error {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	opts, err := options[any](e)
	if err != nil {
		return err
	}
	_, err = filelinked.New(v, path, opts)
	return err
}

func (e env) set(path, key, raw string) error {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	opts, err := options[map[string]any](e)
	if err != nil {
		return err
	}
	l, err := filelinked.OpenOrCreate(path, opts)
	if err != nil {
		return err
	}
	if err := l.Mutate(func(m *map[string]any) {
		if *m == nil {
			*m = make(map[string]any)
		}
		(*m)[key] = v
	}); err != nil {
		return err
	}
	return e.printJSON(l.Readonly())
}

func (e env) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = fmt.Fprintln(e.out, string(b))
	return err
}
