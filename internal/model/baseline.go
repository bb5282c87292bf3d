package model

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// Constant returns the same probability for every row, like a prior-only
// dummy classifier.
type Constant struct {
	base
	probability float64
}

func (c *Constant) PredictProba(rec models.ProcessedRecord) (float64, error) {
	if err := c.checkWidth(rec); err != nil {
		return 0, err
	}
	return c.probability, nil
}

// Random yields a pseudo-random probability derived from the seed and the
// row identifier, so the same input always scores the same.
type Random struct {
	base
	seed uint64
}

func (r *Random) PredictProba(rec models.ProcessedRecord) (float64, error) {
	if err := r.checkWidth(rec); err != nil {
		return 0, err
	}

	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], r.seed)
	h.Write(buf[:])
	h.Write([]byte(rec.ID))

	// top 53 bits give a uniform float in [0,1)
	return float64(h.Sum64()>>11) / (1 << 53), nil
}
