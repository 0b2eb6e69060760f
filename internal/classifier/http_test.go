package classifier

import (
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquabotics/amlac/internal/vision"
)

func testFrame() vision.Frame {
	return vision.Frame{Image: image.NewRGBA(image.Rect(0, 0, 640, 480)), Time: time.Now()}
}

func TestHTTPClassifierDecodesVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))

		// The adapter owns preprocessing: the posted image must
		// already be at the model input resolution.
		img, err := jpeg.Decode(r.Body)
		require.NoError(t, err)
		assert.Equal(t, InputSize, img.Bounds().Dx())
		assert.Equal(t, InputSize, img.Bounds().Dy())

		w.Write([]byte(`{"detected": true, "confidence": 0.91}`))
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)
	v, err := c.Classify(context.Background(), testFrame())
	require.NoError(t, err)
	assert.True(t, v.Detected)
	assert.InDelta(t, 0.91, v.Confidence, 1e-9)
}

func TestHTTPClassifierTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewHTTP(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Classify(context.Background(), testFrame())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "timeout must bound the call")
}

func TestHTTPClassifierRejectsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second).Classify(context.Background(), testFrame())
	require.Error(t, err)
}

func TestHTTPClassifierRejectsOutOfRangeConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detected": true, "confidence": 7.5}`))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second).Classify(context.Background(), testFrame())
	require.Error(t, err)
}
