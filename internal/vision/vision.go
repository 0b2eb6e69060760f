// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"
)

// Frame is one captured camera frame.
type Frame struct {
	Image image.Image
	Time  time.Time
}

// Source is anything that can supply frames over time: the camera
// pipeline, a replay directory, or a static stand-in when no camera is
// fitted.
type Source interface {
	Capture(ctx context.Context) (Frame, error)
}

type staticSource struct {
	img image.Image
}

// NewStaticSource returns a source that yields the same uniform frame on
// every capture. Used when the camera is absent so the rest of the cycle
// still runs.
func NewStaticSource(c color.Color, width, height int) Source {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	uniform := image.NewUniform(c)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, uniform.C)
		}
	}
	return &staticSource{img: img}
}

func (s *staticSource) Capture(_ context.Context) (Frame, error) {
	return Frame{Image: s.img, Time: time.Now()}, nil
}

type dirSource struct {
	paths []string
	next  int
}

// NewDirSource returns a source that replays image files (JPEG/PNG) from
// a directory in name order, wrapping around at the end.
func NewDirSource(dir string) (Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("frame source dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("frame source dir %s: no image files", dir)
	}
	sort.Strings(paths)

	return &dirSource{paths: paths}, nil
}

func (s *dirSource) Capture(_ context.Context) (Frame, error) {
	path := s.paths[s.next]
	s.next = (s.next + 1) % len(s.paths)

	f, err := os.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %s: decode: %w", path, err)
	}

	return Frame{Image: img, Time: time.Now()}, nil
}
