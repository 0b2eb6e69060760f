// Package classifier wraps the vision model behind a deadline-bound
// adapter. The model itself runs out of process; the adapter owns
// preprocessing to the model's fixed input resolution and translates
// transport problems into errors the control loop treats as a negative
// detection, never as a fault.
package classifier

import (
	"context"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/aquabotics/amlac/internal/vision"
)

// InputSize is the model's fixed square input resolution.
const InputSize = 224

// Verdict is the classifier's per-cycle detection result.
type Verdict struct {
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"` // in [0,1], reported as-is
}

// Classifier is the vision-model boundary. Implementations must respect
// the context deadline; an error means "no verdict this cycle".
type Classifier interface {
	Classify(ctx context.Context, frame vision.Frame) (Verdict, error)
}

// preprocess scales a frame to the model input resolution.
func preprocess(img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, InputSize, InputSize))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
