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

package pixelformat

import (
	"errors"
	"fmt"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
)

var ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")

// Target describes the buffer layout a capture is decoded into.
type Target struct {
	Channels int
	BitDepth int
}

var (
	Mono8       = Target{Channels: 1, BitDepth: 8}
	Mono16      = Target{Channels: 1, BitDepth: 16}
	Colour8     = Target{Channels: 3, BitDepth: 8}
	ColourAlpha = Target{Channels: 4, BitDepth: 8}
)

// BytesPerPixel returns the number of bytes each pixel occupies.
func (t Target) BytesPerPixel() int {
	return t.Channels * t.BitDepth / 8
}

func (t Target) String() string {
	return fmt.Sprintf("%dx%dbit", t.Channels, t.BitDepth)
}

// Resolve maps a vendor pixel format onto a decode target.
//
// Greyscale and depth 16 bit formats share the Mono16 target: both are
// single channel 16 bit buffers and are decoded the same way.
func Resolve(f capture.PixelFormat) (Target, error) {
	switch f {
	case capture.PixelFormatRGBU8:
		return Colour8, nil
	case capture.PixelFormatRGBAU8:
		return ColourAlpha, nil
	case capture.PixelFormatGreyscaleU8:
		return Mono8, nil
	case capture.PixelFormatGreyscaleU16, capture.PixelFormatDepthU16:
		return Mono16, nil
	}
	return Target{}, fmt.Errorf("%w: %s (%d)", ErrUnsupportedPixelFormat, f, int32(f))
}
