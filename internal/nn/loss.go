package nn

import (
	"fmt"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// predictions and targets must be broadcast-compatible; the result is a 0-D
// tensor recorded on the tape like any other operation.
func MSELoss(predictions, targets *tensor.Tensor) *tensor.Tensor {
	mustBroadcast("MSELoss", predictions, targets)
	return predictions.Sub(targets).Square().Mean()
}

// MSEToLabel computes mean((predictions - label)²) against a constant label.
func MSEToLabel(predictions *tensor.Tensor, label float32) *tensor.Tensor {
	return predictions.AddScalar(-label).Square().Mean()
}

// L1Loss computes Mean Absolute Error loss.
//
// Loss = mean(|predictions - targets|)
func L1Loss(predictions, targets *tensor.Tensor) *tensor.Tensor {
	mustBroadcast("L1Loss", predictions, targets)
	return predictions.Sub(targets).Abs().Mean()
}

// BCEWithLogitsLoss computes the mean sigmoid cross-entropy of raw scores
// against a constant label (1 for real, 0 for fake).
func BCEWithLogitsLoss(logits *tensor.Tensor, label float32) *tensor.Tensor {
	return logits.BCEWithLogits(label)
}

func mustBroadcast(op string, a, b *tensor.Tensor) {
	if _, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape()); err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
}
