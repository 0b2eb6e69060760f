package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"net/http"
	"time"

	"github.com/aquabotics/amlac/internal/vision"
)

// HTTPClassifier sends frames to an inference sidecar and decodes its
// verdict. Every request carries the configured deadline so a wedged
// model server costs at most one timeout, never a stuck cycle.
type HTTPClassifier struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewHTTP builds a classifier speaking to the inference endpoint.
func NewHTTP(url string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Classify preprocesses the frame to the model resolution, posts it as
// JPEG, and decodes the {detected, confidence} response.
func (c *HTTPClassifier) Classify(ctx context.Context, frame vision.Frame) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, preprocess(frame.Image), nil); err != nil {
		return Verdict{}, fmt.Errorf("classifier: encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return Verdict{}, fmt.Errorf("classifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("classifier: inference server returned %s", resp.Status)
	}

	var v Verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Verdict{}, fmt.Errorf("classifier: decode verdict: %w", err)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return Verdict{}, fmt.Errorf("classifier: confidence %g out of range", v.Confidence)
	}
	return v, nil
}
