package decision

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

const DefaultThreshold = 0.5

var ErrInvalidThreshold = errors.New("invalid threshold")

// Threshold is the resolved probability cutoff and where it came from.
type Threshold struct {
	Value     float64
	Source    string
	Defaulted bool
}

// ResolveThreshold reads the cutoff from path. A missing file yields
// DefaultThreshold; any other read or parse problem is an error.
func ResolveThreshold(path string) (Threshold, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Threshold{Value: DefaultThreshold, Source: path, Defaulted: true}, nil
	}
	if err != nil {
		return Threshold{}, fmt.Errorf("%w: %v", ErrInvalidThreshold, err)
	}

	v, err := ParseThreshold(string(data))
	if err != nil {
		return Threshold{}, fmt.Errorf("%s: %w", path, err)
	}
	return Threshold{Value: v, Source: path}, nil
}

// ParseThreshold parses trimmed text as a probability in [0, 1].
func ParseThreshold(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidThreshold)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidThreshold, text)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: %v outside [0, 1]", ErrInvalidThreshold, v)
	}
	return v, nil
}
