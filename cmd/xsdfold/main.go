package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/zxc8027/cnp-xml-fields-generator/internal/config"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/logging"
	"github.com/zxc8027/cnp-xml-fields-generator/internal/writer"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runContext(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	return runContext(context.Background(), args, stdout, stderr)
}

func runContext(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("xsdfold"),
		kong.Description("Fold the schema documents of successive releases into one versioned model."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			if exitCode < 0 {
				exitCode = code
			}
		}),
		kong.Vars{"formats": formatNames()},
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	)
	if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 1
	}
	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		_ = writef(stderr, "error loading config: %v\n", err)
		return 1
	}
	level, format := cfg.Log.Level, cfg.Log.Format
	if cli.LogLevel != "" {
		level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		format = cli.LogFormat
	}
	logger, err := logging.New(level, format, stderr)
	if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	if cli.CPUProfile != "" {
		stopCPUProfile, err := startCPUProfile(cli.CPUProfile)
		if err != nil {
			_ = writef(stderr, "error starting CPU profile: %v\n", err)
			return 1
		}
		defer func() {
			if err := stopCPUProfile(); err != nil {
				_ = writef(stderr, "error stopping CPU profile: %v\n", err)
			}
		}()
	}
	if cli.MemProfile != "" {
		defer func() {
			if err := writeMemProfile(cli.MemProfile); err != nil {
				_ = writef(stderr, "error writing memory profile: %v\n", err)
			}
		}()
	}

	globals := &Globals{
		Context: ctx,
		Config:  cfg,
		Logger:  logger,
		Stdout:  stdout,
		Stderr:  stderr,
	}
	if err := kctx.Run(globals); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			_ = writef(stderr, "error: %v\n", err)
		}
		logger.Debug("command failed", zap.String("command", kctx.Command()), zap.Error(err))
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func formatNames() string {
	formats := writer.Formats()
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return strings.Join(out, ", ")
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return nil, fmt.Errorf("start cpu profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, fmt.Errorf("start cpu profile %s: %w", path, err)
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close cpu profile %s: %w", path, err)
		}
		return nil
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mem profile %s: %w", path, err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("write mem profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return fmt.Errorf("write mem profile %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mem profile %s: %w", path, err)
	}
	return nil
}
