package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/OldStager01/mlops-scoring/internal/dataset"
)

const DefaultBins = 50

type Bin struct {
	Start   float64
	End     float64
	Count   int
	Density float64
}

// Density bins probabilities over [0, 1] into equal-width buckets. The
// last bucket is closed so a probability of exactly 1 is counted.
// Density integrates to 1 over the unit interval when there is data.
func Density(probs []float64, bins int) ([]Bin, error) {
	if bins <= 0 {
		bins = DefaultBins
	}
	for _, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("probability %v outside [0, 1]", p)
		}
	}

	edges := floats.Span(make([]float64, bins+1), 0, 1)
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(1, 2)

	counts := make([]float64, bins)
	if len(probs) > 0 {
		sorted := append([]float64(nil), probs...)
		sort.Float64s(sorted)
		counts = stat.Histogram(counts, dividers, sorted, nil)
	}

	width := 1 / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Start: edges[i], End: edges[i+1], Count: int(counts[i])}
		if len(probs) > 0 {
			out[i].Density = counts[i] / (float64(len(probs)) * width)
		}
	}
	return out, nil
}

func WriteDensity(path string, bins []Bin) error {
	return dataset.WriteCSVAtomic(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"bin_start", "bin_end", "count", "density"}); err != nil {
			return err
		}
		for _, b := range bins {
			row := []string{
				strconv.FormatFloat(b.Start, 'g', -1, 64),
				strconv.FormatFloat(b.End, 'g', -1, 64),
				strconv.Itoa(b.Count),
				strconv.FormatFloat(b.Density, 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
