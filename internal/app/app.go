package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/mystichronicle/VisionNav/internal/common"
	"github.com/mystichronicle/VisionNav/internal/config"
	"github.com/mystichronicle/VisionNav/internal/entity"
	clihandler "github.com/mystichronicle/VisionNav/internal/handler/cli"
	"github.com/mystichronicle/VisionNav/internal/repository/source"
	"github.com/mystichronicle/VisionNav/internal/service/fetch"
	"github.com/mystichronicle/VisionNav/internal/storage/artifact"
)

type App struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
	level  *slog.LevelVar
}

func New(stdout, stderr io.Writer) *App {
	return NewWithFS(afero.NewOsFs(), stdout, stderr)
}

func NewWithFS(fs afero.Fs, stdout, stderr io.Writer) *App {
	level := new(slog.LevelVar)

	return &App{
		fs:     fs,
		stdout: stdout,
		stderr: stderr,
		level:  level,
		log:    slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}
}

// Run executes the command line and returns the process exit code: zero
// only when the requested command fully succeeded.
func (a *App) Run(ctx context.Context, args []string) int {
	root := clihandler.NewRootCommand(a.build)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		// Incomplete runs have already reported themselves on stdout.
		if !errors.Is(err, common.ErrIncomplete) {
			a.log.Error("Run failed", slog.Any("error", err))
		}

		return 1
	}

	return 0
}

func (a *App) build(p clihandler.Params) (*clihandler.Runtime, error) {
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return nil, err
	}

	if p.DataDir != "" {
		cfg.FetcherConfig.TargetDir = p.DataDir
	}

	if p.ManifestPath != "" {
		cfg.ManifestPath = p.ManifestPath
	}

	switch cfg.LogLevel {
	case config.LogLevelInfo:
		a.level.Set(slog.LevelInfo)
	case config.LogLevelWarn:
		a.level.Set(slog.LevelWarn)
	case config.LogLevelError:
		a.level.Set(slog.LevelError)
	case config.LogLevelDebug:
		a.level.Set(slog.LevelDebug)
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	if p.Verbose {
		a.level.Set(slog.LevelDebug)
	}

	manifest := entity.DefaultManifest()
	if cfg.ManifestPath != "" {
		data, err := afero.ReadFile(a.fs, cfg.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read manifest %s: %w", cfg.ManifestPath, err)
		}

		manifest, err = entity.ParseManifest(data)
		if err != nil {
			return nil, fmt.Errorf("cannot parse manifest %s: %w", cfg.ManifestPath, err)
		}
	}

	store := artifact.NewArtifactStoreWithFS(a.fs, cfg.FetcherConfig.TargetDir, cfg.FetcherConfig.ChunkSize, a.log)
	src := source.NewHTTPSource(source.NewHTTPClient(cfg.FetcherConfig.Timeout()), cfg.FetcherConfig.ChunkSize, a.log)

	return &clihandler.Runtime{
		Service:   fetch.NewFetchService(store, src, a.log),
		Manifest:  manifest,
		TargetDir: cfg.FetcherConfig.TargetDir,
	}, nil
}
