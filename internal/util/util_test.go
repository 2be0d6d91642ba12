package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexDigest(t *testing.T) {
	scenarios := []struct {
		name      string
		input     string
		chunkSize int
		want      string
	}{
		{
			name:      "empty input",
			input:     "",
			chunkSize: 8192,
			want:      "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:      "known vector",
			input:     "hello world",
			chunkSize: 8192,
			want:      "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			name:      "chunk smaller than input",
			input:     "hello world",
			chunkSize: 3,
			want:      "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
		{
			name:      "zero chunk size falls back to default",
			input:     "abc",
			chunkSize: 0,
			want:      "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name:      "negative chunk size falls back to default",
			input:     "abc",
			chunkSize: -1,
			want:      "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			got, err := HexDigest(strings.NewReader(s.input), s.chunkSize)
			require.NoError(t, err)
			assert.Equal(t, s.want, got)
		})
	}
}

func TestHexDigestBytes(t *testing.T) {
	data := []byte("hello world")

	streamed, err := HexDigest(strings.NewReader(string(data)), 8192)
	require.NoError(t, err)

	assert.Equal(t, streamed, HexDigestBytes(data))
}
