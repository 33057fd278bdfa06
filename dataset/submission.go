package dataset

import (
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// SubmissionRow pairs a record identifier with its predicted ring count on
// the original (un-transformed) target scale.
type SubmissionRow struct {
	ID    int     `csv:"id"`
	Rings float64 `csv:"Rings"`
}

// WriteSubmission writes one row per prediction to a delimited file.
func WriteSubmission(path string, ids []int, preds *mat.VecDense) error {
	if len(ids) != preds.Len() {
		return errors.NewDimensionError("WriteSubmission", len(ids), preds.Len(), 0)
	}

	rows := make([]SubmissionRow, len(ids))
	for i, id := range ids {
		rows[i] = SubmissionRow{ID: id, Rings: preds.AtVec(i)}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "dataset: create %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return errors.Wrapf(err, "dataset: write %s", path)
	}
	return nil
}
