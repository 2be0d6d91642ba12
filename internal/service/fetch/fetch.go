package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mystichronicle/VisionNav/internal/common"
	"github.com/mystichronicle/VisionNav/internal/entity"
)

// ArtifactStore is the local side of a run: artifact presence,
// verification and lifecycle under the target directory.
type ArtifactStore interface {
	EnsureDir() error
	Exists(name string) (bool, error)
	Verify(name, digest string) (bool, error)
	Remove(name string) error
	WriteArtifact(name string, fill func(w io.Writer) error) error
	RemovePartials() (int, error)
	Size(name string) (int64, error)
}

// ArtifactSource pulls artifact content from its upstream location.
type ArtifactSource interface {
	Fetch(ctx context.Context, url string, dst io.Writer, report entity.ProgressFunc) (int64, error)
}

type FetchService struct {
	store  ArtifactStore
	source ArtifactSource
	log    *slog.Logger
}

func NewFetchService(store ArtifactStore, source ArtifactSource, log *slog.Logger) *FetchService {
	return &FetchService{
		store:  store,
		source: source,
		log:    log.With(slog.String("item", "FetchService")),
	}
}

// Run brings every manifest entry to verified-present, strictly one after
// another in manifest order. A failed entry does not stop the rest. The
// returned error is set only when the run cannot start at all.
func (s *FetchService) Run(ctx context.Context, manifest entity.Manifest, opts ...Option) (entity.Summary, error) {
	cfg := newRunConfig(opts...)

	if err := manifest.Validate(); err != nil {
		s.log.Error("Cannot run", slog.Any("error", err))

		return entity.Summary{}, err
	}

	if err := s.store.EnsureDir(); err != nil {
		s.log.Error("Cannot prepare target dir", slog.Any("error", err))

		return entity.Summary{}, err
	}

	summary := entity.Summary{Total: len(manifest)}
	for _, asset := range manifest {
		var res entity.FetchResult
		if err := ctx.Err(); err != nil {
			res = s.fail(entity.FetchResult{Asset: asset, Status: entity.StatusAbsent}, err, cfg)
		} else {
			res = s.ensure(ctx, asset, cfg)
		}

		summary.Results = append(summary.Results, res)
		if res.Status.Ready() {
			summary.Ready++
		}
	}

	s.log.Info("Run finished", slog.Int("ready", summary.Ready), slog.Int("total", summary.Total))

	return summary, nil
}

// Ensure brings a single asset to verified-present.
func (s *FetchService) Ensure(ctx context.Context, asset entity.Asset, opts ...Option) entity.FetchResult {
	cfg := newRunConfig(opts...)

	if err := s.store.EnsureDir(); err != nil {
		return s.fail(entity.FetchResult{Asset: asset, Status: entity.StatusAbsent}, err, cfg)
	}

	return s.ensure(ctx, asset, cfg)
}

func (s *FetchService) ensure(ctx context.Context, asset entity.Asset, cfg *runConfig) entity.FetchResult {
	res := entity.FetchResult{Asset: asset, Status: entity.StatusAbsent}
	log := s.log.With(slog.String("asset", asset.Name))

	exists, err := s.store.Exists(asset.Name)
	if err != nil {
		return s.fail(res, err, cfg)
	}

	switch {
	case exists && !cfg.force:
		res.Status = entity.StatusPresentUnverified

		ok, err := s.store.Verify(asset.Name, asset.Digest)
		if err != nil {
			return s.fail(res, err, cfg)
		}

		if ok {
			res.Status = entity.StatusVerified
			log.Info("Already present, skipping")
			cfg.notify(Event{Asset: asset, Kind: EventSkipped})

			return res
		}

		log.Warn("Present but fails verification, downloading again")
		cfg.notify(Event{Asset: asset, Kind: EventStale})

		if err := s.store.Remove(asset.Name); err != nil {
			return s.fail(res, err, cfg)
		}
	case exists:
		log.Info("Forced refresh, removing present artifact")

		if err := s.store.Remove(asset.Name); err != nil {
			return s.fail(res, err, cfg)
		}
	}

	res.Status = entity.StatusDownloading
	res.Fetched = true
	log.Info("Downloading", slog.String("url", asset.URL))
	cfg.notify(Event{Asset: asset, Kind: EventDownloadStarted})

	err = s.store.WriteArtifact(asset.Name, func(w io.Writer) error {
		n, ferr := s.source.Fetch(ctx, asset.URL, w, func(p entity.Progress) {
			res.BytesFetched = p.Received
			cfg.notify(Event{Asset: asset, Kind: EventProgress, Progress: p})
		})
		res.BytesFetched = n

		return ferr
	})
	if err != nil {
		return s.fail(res, err, cfg)
	}

	ok, err := s.store.Verify(asset.Name, asset.Digest)
	if err != nil {
		if rerr := s.store.Remove(asset.Name); rerr != nil {
			log.Error("Cannot remove unverifiable artifact", slog.Any("error", rerr))
		}

		return s.fail(res, err, cfg)
	}

	if !ok {
		if rerr := s.store.Remove(asset.Name); rerr != nil {
			log.Error("Cannot remove corrupt artifact", slog.Any("error", rerr))
		}

		return s.fail(res, fmt.Errorf("%w: %s does not match expected sha256 %s",
			common.ErrIntegrity, asset.Name, asset.Digest), cfg)
	}

	res.Status = entity.StatusVerified
	log.Info("Downloaded", slog.Int64("bytes", res.BytesFetched))
	cfg.notify(Event{Asset: asset, Kind: EventDownloaded})

	return res
}

// Inspect reports the local state of every manifest entry without touching
// the network. Entries carrying a digest are re-hashed from disk.
func (s *FetchService) Inspect(manifest entity.Manifest) []entity.AssetInfo {
	infos := make([]entity.AssetInfo, 0, len(manifest))
	for _, asset := range manifest {
		infos = append(infos, s.inspect(asset))
	}

	return infos
}

func (s *FetchService) inspect(asset entity.Asset) entity.AssetInfo {
	info := entity.AssetInfo{Asset: asset, Status: entity.StatusAbsent}

	exists, err := s.store.Exists(asset.Name)
	if err != nil {
		info.Status = entity.StatusFailed
		info.Err = err

		return info
	}

	if !exists {
		return info
	}

	if size, err := s.store.Size(asset.Name); err == nil {
		info.Size = size
	}

	ok, err := s.store.Verify(asset.Name, asset.Digest)
	switch {
	case err != nil:
		info.Status = entity.StatusFailed
		info.Err = err
	case ok:
		info.Status = entity.StatusVerified
	default:
		info.Status = entity.StatusFailed
		info.Err = fmt.Errorf("%w: %s does not match expected sha256 %s",
			common.ErrIntegrity, asset.Name, asset.Digest)
	}

	return info
}

// Clean removes every manifest artifact along with stale partial files
// left by interrupted runs.
func (s *FetchService) Clean(manifest entity.Manifest) (int, error) {
	removed := 0
	for _, asset := range manifest {
		exists, err := s.store.Exists(asset.Name)
		if err != nil {
			return removed, err
		}

		if !exists {
			continue
		}

		if err := s.store.Remove(asset.Name); err != nil {
			return removed, err
		}

		s.log.Info("Removed artifact", slog.String("asset", asset.Name))
		removed++
	}

	n, err := s.store.RemovePartials()
	removed += n
	if err != nil {
		return removed, err
	}

	return removed, nil
}

func (s *FetchService) fail(res entity.FetchResult, err error, cfg *runConfig) entity.FetchResult {
	res.Status = entity.StatusFailed
	res.Err = err

	s.log.Error("Cannot ensure artifact", slog.String("asset", res.Asset.Name), slog.Any("error", err))
	cfg.notify(Event{Asset: res.Asset, Kind: EventFailed, Err: err})

	return res
}
