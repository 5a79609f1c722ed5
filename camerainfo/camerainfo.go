// spot-camera-bridge - translate robot camera captures into standard images
//  Copyright (C) 2023, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package camerainfo

import (
	"gonum.org/v1/gonum/mat"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
	"github.com/TheCacophonyProject/spot-camera-bridge/imagedecode"
)

// PlumbBob is the 5 parameter radial/tangential distortion model.
const PlumbBob = "plumb_bob"

// Resolution of an image in pixels.
type Resolution struct {
	Width  int
	Height int
}

// CameraInfo describes how a monocular camera projects onto its image.
// K, R and P are row-major.
type CameraInfo struct {
	Header          imagedecode.Header
	Height          uint32
	Width           uint32
	DistortionModel string
	D               []float64
	K               [9]float64
	R               [9]float64
	P               [12]float64
}

// Build returns the camera description for a pinhole camera.
//
// Images are assumed to be rectified already, so D is all zero and R is the
// identity. All cameras are monocular, so P has no stereo baseline terms.
// Intrinsics are not sanity checked.
func Build(res Resolution, in capture.PinholeIntrinsics) CameraInfo {
	k := mat.NewDense(3, 3, []float64{
		in.FocalLengthX, 0, in.PrincipalPointX,
		0, in.FocalLengthY, in.PrincipalPointY,
		0, 0, 1,
	})
	r := mat.NewDiagDense(3, []float64{1, 1, 1})

	// P = K [I | 0]. Copied rather than multiplied so non-finite
	// intrinsics land in P exactly as they are in K.
	p := mat.NewDense(3, 4, nil)
	p.Slice(0, 3, 0, 3).(*mat.Dense).Copy(k)

	info := CameraInfo{
		Height:          uint32(res.Height),
		Width:           uint32(res.Width),
		DistortionModel: PlumbBob,
		D:               make([]float64, 5),
	}
	flatten(info.K[:], k)
	flatten(info.R[:], r)
	flatten(info.P[:], p)
	return info
}

func flatten(dst []float64, m mat.Matrix) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[i*cols+j] = m.At(i, j)
		}
	}
}
