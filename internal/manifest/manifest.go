// Package manifest loads the ordered feature list the model was trained on.
package manifest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OldStager01/mlops-scoring/pkg/validation"
)

var ErrInvalidManifest = errors.New("invalid feature manifest")

// Manifest is an immutable, ordered, duplicate-free list of feature names.
type Manifest struct {
	features []string
}

// New validates names and builds a Manifest from them.
func New(features []string) (*Manifest, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no features listed", ErrInvalidManifest)
	}
	for _, f := range features {
		if err := validation.ValidateFeatureName(f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
	}
	if err := validation.ValidateUniqueNames(features); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	return &Manifest{features: append([]string(nil), features...)}, nil
}

// Load reads a manifest file. The file holds a JSON array of names; since
// JSON is a subset of YAML a plain YAML list is accepted as well.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Manifest, error) {
	var features []string
	if err := yaml.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return New(features)
}

// Features returns a copy of the names in manifest order.
func (m *Manifest) Features() []string {
	return append([]string(nil), m.features...)
}

func (m *Manifest) Len() int {
	return len(m.features)
}

// Equal reports whether names matches the manifest exactly, order included.
func (m *Manifest) Equal(names []string) bool {
	if len(names) != len(m.features) {
		return false
	}
	for i, n := range names {
		if m.features[i] != n {
			return false
		}
	}
	return true
}
