package dataset

import (
	"encoding/csv"
	"strconv"

	"github.com/OldStager01/mlops-scoring/pkg/models"
)

// SubmissionColumns names the columns of the submission file.
type SubmissionColumns struct {
	ID          string
	Probability string
	Label       string
}

// WriteSubmission writes one row per prediction with identifier,
// probability and label, in prediction order.
func WriteSubmission(path string, cols SubmissionColumns, predictions []models.Prediction) error {
	return WriteCSVAtomic(path, func(w *csv.Writer) error {
		if err := w.Write([]string{cols.ID, cols.Probability, cols.Label}); err != nil {
			return err
		}
		row := make([]string, 3)
		for _, p := range predictions {
			row[0] = p.ID
			row[1] = formatProbability(p.Probability)
			row[2] = strconv.Itoa(p.Label)
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteBinarySubmission writes the two-column variant where the target
// column carries the thresholded label.
func WriteBinarySubmission(path string, idColumn, targetColumn string, predictions []models.Prediction) error {
	return WriteCSVAtomic(path, func(w *csv.Writer) error {
		if err := w.Write([]string{idColumn, targetColumn}); err != nil {
			return err
		}
		row := make([]string, 2)
		for _, p := range predictions {
			row[0] = p.ID
			row[1] = strconv.Itoa(p.Label)
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func formatProbability(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}
