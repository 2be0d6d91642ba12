package artifact

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/mystichronicle/VisionNav/internal/common"
	"github.com/mystichronicle/VisionNav/internal/util"
)

const partialSuffix = ".partial"

// artifactStore keeps model artifacts under a single target directory.
// Downloads land in uniquely named partial files that are renamed into
// place only after the transfer succeeds, so a crash or a failed run
// never leaves a half-written artifact behind under its final name.
type artifactStore struct {
	fs        afero.Fs
	dir       string
	chunkSize int
	log       *slog.Logger
}

func NewArtifactStore(dir string, chunkSize int, log *slog.Logger) *artifactStore {
	return NewArtifactStoreWithFS(afero.NewOsFs(), dir, chunkSize, log)
}

func NewArtifactStoreWithFS(fs afero.Fs, dir string, chunkSize int, log *slog.Logger) *artifactStore {
	return &artifactStore{
		fs:        fs,
		dir:       dir,
		chunkSize: chunkSize,
		log:       log.With(slog.String("item", "ArtifactStore")),
	}
}

// EnsureDir creates the target directory if it does not exist yet.
func (s *artifactStore) EnsureDir() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create target dir %s: %v", common.ErrFilesystem, s.dir, err)
	}

	return nil
}

// Path returns the final on-disk location of the named artifact.
func (s *artifactStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *artifactStore) Exists(name string) (bool, error) {
	exists, err := afero.Exists(s.fs, s.Path(name))
	if err != nil {
		return false, fmt.Errorf("%w: cannot stat %s: %v", common.ErrFilesystem, name, err)
	}

	return exists, nil
}

func (s *artifactStore) Size(name string) (int64, error) {
	stat, err := s.fs.Stat(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, fmt.Errorf("%w: cannot stat %s: %v", common.ErrFilesystem, name, err)
	}

	return stat.Size(), nil
}

// Verify streams the artifact through SHA-256 and compares against digest.
// A missing file never verifies. An empty digest verifies any present
// file: existence alone is success for assets published without one.
func (s *artifactStore) Verify(name, digest string) (bool, error) {
	file, err := s.fs.Open(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("%w: cannot open %s: %v", common.ErrFilesystem, name, err)
	}
	defer file.Close()

	if digest == "" {
		return true, nil
	}

	actual, err := util.HexDigest(file, s.chunkSize)
	if err != nil {
		return false, fmt.Errorf("%w: cannot hash %s: %v", common.ErrFilesystem, name, err)
	}

	return actual == digest, nil
}

// Remove deletes the named artifact. A file that is already gone is not
// an error.
func (s *artifactStore) Remove(name string) error {
	if err := s.fs.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: cannot remove %s: %v", common.ErrFilesystem, name, err)
	}

	return nil
}

// WriteArtifact streams content produced by fill into a partial file and
// promotes it to the final name only when fill succeeds. On any failure
// the partial file is deleted and the destination is left untouched.
func (s *artifactStore) WriteArtifact(name string, fill func(w io.Writer) error) error {
	partial, err := s.newPartial(name)
	if err != nil {
		return err
	}

	if err := fill(partial); err != nil {
		if derr := partial.Discard(); derr != nil {
			s.log.Error("Cannot discard partial file", slog.String("path", partial.path), slog.Any("error", derr))
		}

		return err
	}

	return partial.Commit()
}

// RemovePartials deletes leftover partial files from interrupted runs.
func (s *artifactStore) RemovePartials() (int, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, fmt.Errorf("%w: cannot read target dir %s: %v", common.ErrFilesystem, s.dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), partialSuffix) {
			continue
		}

		if err := s.fs.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("%w: cannot remove partial %s: %v", common.ErrFilesystem, entry.Name(), err)
		}

		s.log.Debug("Removed stale partial", slog.String("name", entry.Name()))
		removed++
	}

	return removed, nil
}

type partialArtifact struct {
	fs    afero.Fs
	file  afero.File
	path  string
	final string
}

func (s *artifactStore) newPartial(name string) (*partialArtifact, error) {
	path := s.Path(name) + "." + uuid.NewString() + partialSuffix

	file, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create partial file for %s: %v", common.ErrFilesystem, name, err)
	}

	return &partialArtifact{
		fs:    s.fs,
		file:  file,
		path:  path,
		final: s.Path(name),
	}, nil
}

func (p *partialArtifact) Write(b []byte) (int, error) {
	n, err := p.file.Write(b)
	if err != nil {
		return n, fmt.Errorf("%w: cannot write %s: %v", common.ErrFilesystem, p.path, err)
	}

	return n, nil
}

// Commit closes the partial file and renames it over the final path.
func (p *partialArtifact) Commit() error {
	if err := p.file.Close(); err != nil {
		p.fs.Remove(p.path)

		return fmt.Errorf("%w: cannot close partial %s: %v", common.ErrFilesystem, p.path, err)
	}

	if err := p.fs.Rename(p.path, p.final); err != nil {
		p.fs.Remove(p.path)

		return fmt.Errorf("%w: cannot promote partial %s: %v", common.ErrFilesystem, p.path, err)
	}

	return nil
}

// Discard closes and deletes the partial file.
func (p *partialArtifact) Discard() error {
	p.file.Close()

	if err := p.fs.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: cannot remove partial %s: %v", common.ErrFilesystem, p.path, err)
	}

	return nil
}
