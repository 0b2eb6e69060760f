// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/aquabotics/amlac/internal/sensing"
)

// TiltFromAccel computes pitch and roll from a single accelerometer
// sample. The inputs can be in any consistent unit; only the ratios
// matter.
//
// Uses the usual tilt formulas:
//
//	pitch = atan2(ay, sqrt(ax² + az²))
//	roll  = atan2(-ax, az)
func TiltFromAccel(ax, ay, az float64) sensing.Orientation {
	pitchRad := math.Atan2(ay, math.Sqrt(ax*ax+az*az))
	rollRad := math.Atan2(-ax, az)

	return sensing.Orientation{
		Pitch: pitchRad * 180.0 / math.Pi,
		Roll:  rollRad * 180.0 / math.Pi,
	}
}
