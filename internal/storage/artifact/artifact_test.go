package artifact

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mystichronicle/VisionNav/internal/common"
	"github.com/mystichronicle/VisionNav/internal/util"
)

const testDir = "data/yolo"

func newTestStore(t *testing.T) (*artifactStore, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewArtifactStoreWithFS(fs, testDir, 8192, log)
	require.NoError(t, store.EnsureDir())

	return store, fs
}

func listNames(t *testing.T, fs afero.Fs) []string {
	t.Helper()

	entries, err := afero.ReadDir(fs, testDir)
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

func TestEnsureDirIdempotent(t *testing.T) {
	store, fs := newTestStore(t)

	require.NoError(t, store.EnsureDir())

	exists, err := afero.DirExists(fs, testDir)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWriteArtifactCommits(t *testing.T) {
	store, fs := newTestStore(t)
	content := []byte("layer weights")

	err := store.WriteArtifact("yolov3.weights", func(w io.Writer) error {
		_, werr := w.Write(content)

		return werr
	})
	require.NoError(t, err)

	got, err := afero.ReadFile(fs, store.Path("yolov3.weights"))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.Equal(t, []string{"yolov3.weights"}, listNames(t, fs))
}

func TestWriteArtifactDiscardsOnFillError(t *testing.T) {
	store, fs := newTestStore(t)
	fillErr := fmt.Errorf("%w: connection reset", common.ErrNetwork)

	err := store.WriteArtifact("yolov3.cfg", func(w io.Writer) error {
		if _, werr := w.Write([]byte("truncated")); werr != nil {
			return werr
		}

		return fillErr
	})
	require.ErrorIs(t, err, common.ErrNetwork)

	exists, err := afero.Exists(fs, store.Path("yolov3.cfg"))
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Empty(t, listNames(t, fs))
}

func TestWriteArtifactUsesUniquePartialName(t *testing.T) {
	store, fs := newTestStore(t)

	err := store.WriteArtifact("coco.names", func(w io.Writer) error {
		names := listNames(t, fs)
		require.Len(t, names, 1)
		assert.True(t, strings.HasPrefix(names[0], "coco.names."))
		assert.True(t, strings.HasSuffix(names[0], partialSuffix))

		_, werr := w.Write([]byte("person\nbicycle\n"))

		return werr
	})
	require.NoError(t, err)
}

func TestWriteArtifactKeepsExistingFileOnFailure(t *testing.T) {
	store, fs := newTestStore(t)
	old := []byte("previous weights")
	require.NoError(t, afero.WriteFile(fs, store.Path("yolov3.weights"), old, 0o644))

	err := store.WriteArtifact("yolov3.weights", func(w io.Writer) error {
		return fmt.Errorf("%w: timeout", common.ErrNetwork)
	})
	require.Error(t, err)

	got, err := afero.ReadFile(fs, store.Path("yolov3.weights"))
	require.NoError(t, err)
	assert.Equal(t, old, got)
}

func TestVerify(t *testing.T) {
	store, fs := newTestStore(t)
	content := []byte("class names")
	require.NoError(t, afero.WriteFile(fs, store.Path("coco.names"), content, 0o644))

	scenarios := []struct {
		name   string
		file   string
		digest string
		want   bool
	}{
		{
			name:   "matching digest",
			file:   "coco.names",
			digest: util.HexDigestBytes(content),
			want:   true,
		},
		{
			name:   "mismatching digest",
			file:   "coco.names",
			digest: strings.Repeat("0", 64),
			want:   false,
		},
		{
			name:   "no digest verifies any present file",
			file:   "coco.names",
			digest: "",
			want:   true,
		},
		{
			name:   "missing file never verifies",
			file:   "yolov3.cfg",
			digest: "",
			want:   false,
		},
		{
			name:   "missing file with digest",
			file:   "yolov3.cfg",
			digest: util.HexDigestBytes(content),
			want:   false,
		},
	}

	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			ok, err := store.Verify(s.file, s.digest)
			require.NoError(t, err)
			assert.Equal(t, s.want, ok)
		})
	}
}

func TestRemove(t *testing.T) {
	store, fs := newTestStore(t)
	require.NoError(t, afero.WriteFile(fs, store.Path("yolov3.cfg"), []byte("net"), 0o644))

	require.NoError(t, store.Remove("yolov3.cfg"))

	exists, err := afero.Exists(fs, store.Path("yolov3.cfg"))
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, store.Remove("yolov3.cfg"))
}

func TestSize(t *testing.T) {
	store, fs := newTestStore(t)
	require.NoError(t, afero.WriteFile(fs, store.Path("yolov3.cfg"), []byte("12345"), 0o644))

	size, err := store.Size("yolov3.cfg")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	size, err = store.Size("missing")
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRemovePartials(t *testing.T) {
	store, fs := newTestStore(t)
	require.NoError(t, afero.WriteFile(fs, store.Path("yolov3.cfg"), []byte("keep"), 0o644))
	require.NoError(t, afero.WriteFile(fs, store.Path("yolov3.weights.a1b2.partial"), []byte("junk"), 0o644))
	require.NoError(t, afero.WriteFile(fs, store.Path("coco.names.c3d4.partial"), []byte("junk"), 0o644))

	removed, err := store.RemovePartials()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.Equal(t, []string{"yolov3.cfg"}, listNames(t, fs))
}

func TestRemovePartialsMissingDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewArtifactStoreWithFS(fs, "never/created", 8192, log)

	removed, err := store.RemovePartials()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestExists(t *testing.T) {
	store, fs := newTestStore(t)

	exists, err := store.Exists("yolov3.cfg")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, afero.WriteFile(fs, store.Path("yolov3.cfg"), []byte("net"), 0o644))

	exists, err = store.Exists("yolov3.cfg")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestVerifyLargeFileStreams(t *testing.T) {
	store, fs := newTestStore(t)

	content := []byte(strings.Repeat("weights block ", 4096))
	require.NoError(t, afero.WriteFile(fs, store.Path("yolov3.weights"), content, 0o644))

	ok, err := store.Verify("yolov3.weights", util.HexDigestBytes(content))
	require.NoError(t, err)
	assert.True(t, ok)
}
