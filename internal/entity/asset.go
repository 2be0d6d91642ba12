package entity

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/mystichronicle/VisionNav/internal/common"
)

var digestRegexp = regexp.MustCompile(`^[a-f\d]{64}$`)

// Asset represents a single model artifact the detector needs on disk.
type Asset struct {
	Name   string `yaml:"filename"`         // Destination file name inside the data directory
	URL    string `yaml:"url"`              // HTTPS source the artifact is pulled from
	Digest string `yaml:"sha256,omitempty"` // Lowercase hex SHA-256; empty disables verification
}

func (a Asset) String() string {
	return a.Name
}

// HasDigest reports whether the asset carries an expected digest.
func (a Asset) HasDigest() bool {
	return a.Digest != ""
}

// Manifest is the ordered list of assets a run processes. Order is
// significant: entries are handled strictly one after another.
type Manifest []Asset

// DefaultManifest lists the YOLOv3 artifacts the detector loads at startup.
// Upstream publishes no digests for them, so they ship unverified.
func DefaultManifest() Manifest {
	return Manifest{
		{
			Name: "yolov3.cfg",
			URL:  "https://raw.githubusercontent.com/pjreddie/darknet/master/cfg/yolov3.cfg",
		},
		{
			Name: "yolov3.weights",
			URL:  "https://github.com/patrick013/Object-Detection---Yolov3/raw/master/model/yolov3.weights",
		},
		{
			Name: "coco.names",
			URL:  "https://raw.githubusercontent.com/pjreddie/darknet/master/data/coco.names",
		},
	}
}

// ParseManifest decodes a YAML asset list, normalizes digests to lowercase
// and validates the result.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidManifest, err)
	}

	for i := range m {
		m[i].Digest = strings.ToLower(strings.TrimSpace(m[i].Digest))
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks that every entry has a plain file name, a URL and, when
// present, a well-formed SHA-256 digest, and that names do not repeat.
func (m Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m))
	for _, a := range m {
		if a.Name == "" {
			return fmt.Errorf("%w: entry with empty filename", common.ErrInvalidManifest)
		}
		if strings.ContainsAny(a.Name, `/\`) {
			return fmt.Errorf("%w: filename %q must not contain path separators", common.ErrInvalidManifest, a.Name)
		}
		if a.URL == "" {
			return fmt.Errorf("%w: %s has no url", common.ErrInvalidManifest, a.Name)
		}
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("%w: duplicate filename %q", common.ErrInvalidManifest, a.Name)
		}
		seen[a.Name] = struct{}{}

		if a.Digest != "" && !digestRegexp.MatchString(a.Digest) {
			return fmt.Errorf("%w: %s has malformed sha256 digest %q", common.ErrInvalidManifest, a.Name, a.Digest)
		}
	}

	return nil
}

// Names returns the destination file names in manifest order.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m))
	for _, a := range m {
		names = append(names, a.Name)
	}

	return names
}
