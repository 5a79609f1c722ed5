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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
)

func TestResolveSupported(t *testing.T) {
	cases := map[capture.PixelFormat]Target{
		capture.PixelFormatRGBU8:        {Channels: 3, BitDepth: 8},
		capture.PixelFormatRGBAU8:       {Channels: 4, BitDepth: 8},
		capture.PixelFormatGreyscaleU8:  {Channels: 1, BitDepth: 8},
		capture.PixelFormatGreyscaleU16: {Channels: 1, BitDepth: 16},
		capture.PixelFormatDepthU16:     {Channels: 1, BitDepth: 16},
	}
	for f, want := range cases {
		got, err := Resolve(f)
		require.NoError(t, err, f.String())
		assert.Equal(t, want, got, f.String())
	}
}

func TestGreyscaleAndDepthCollapse(t *testing.T) {
	grey, err := Resolve(capture.PixelFormatGreyscaleU16)
	require.NoError(t, err)
	depth, err := Resolve(capture.PixelFormatDepthU16)
	require.NoError(t, err)
	assert.Equal(t, grey, depth)
	assert.Equal(t, 2, depth.BytesPerPixel())
}

func TestResolveUnsupported(t *testing.T) {
	for _, f := range []capture.PixelFormat{capture.PixelFormatUnknown, 2, 7, -1} {
		_, err := Resolve(f)
		assert.True(t, errors.Is(err, ErrUnsupportedPixelFormat), "format %d", f)
	}
}
