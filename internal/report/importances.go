// Package report writes the optional run artefacts that accompany the
// submission: top feature importances and the score distribution.
package report

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	"github.com/OldStager01/mlops-scoring/internal/dataset"
)

type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// TopImportances returns the k highest scores, descending. Ties keep the
// order of features, which is the manifest order.
func TopImportances(scores map[string]float64, features []string, k int) []Importance {
	ranked := make([]Importance, 0, len(scores))
	for _, f := range features {
		if v, ok := scores[f]; ok {
			ranked = append(ranked, Importance{Feature: f, Importance: v})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})

	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// ranking encodes as a {feature: score} object with keys in rank order.
type ranking []Importance

func (r ranking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, imp := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(imp.Feature)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(imp.Importance)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteImportances writes top as a JSON object keyed by feature name,
// highest score first.
func WriteImportances(path string, top []Importance) error {
	return dataset.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ranking(top))
	})
}
