package models

// Prediction is the scored output for a single input row.
type Prediction struct {
	ID          string  `json:"id"`
	Probability float64 `json:"probability"`
	Label       int     `json:"label"`
}

func (p Prediction) IsPositive() bool {
	return p.Label == 1
}

// CountPositives returns the number of predictions labelled 1.
func CountPositives(predictions []Prediction) int {
	n := 0
	for _, p := range predictions {
		if p.IsPositive() {
			n++
		}
	}
	return n
}

// Probabilities extracts the probability column in row order.
func Probabilities(predictions []Prediction) []float64 {
	out := make([]float64, len(predictions))
	for i, p := range predictions {
		out[i] = p.Probability
	}
	return out
}
