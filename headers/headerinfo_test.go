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

package headers

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
)

func TestReadHeaderInfo(t *testing.T) {
	in := `source: frontleft_depth
frame-name: frontleft
rows: 2
cols: 3
pixel-format: depth_u16
format: raw
acquisition-secs: 1600000000
acquisition-nanos: 250
focal-x: 500
focal-y: 499.5
principal-x: 320
principal-y: 240.25
data-size: 12

payload`
	reader := bufio.NewReader(strings.NewReader(in))
	h, err := ReadHeaderInfo(reader)
	require.NoError(t, err)

	assert.Equal(t, "frontleft_depth", h.Source())
	assert.Equal(t, "frontleft", h.FrameName())
	assert.Equal(t, 2, h.Rows())
	assert.Equal(t, 3, h.Cols())
	assert.Equal(t, capture.PixelFormatDepthU16, h.PixelFormat())
	assert.Equal(t, capture.FormatRaw, h.Format())
	assert.Equal(t, int64(1600000000), h.AcquisitionTime().GetSeconds())
	assert.Equal(t, int32(250), h.AcquisitionTime().GetNanos())
	assert.Equal(t, capture.PinholeIntrinsics{
		FocalLengthX:    500,
		FocalLengthY:    499.5,
		PrincipalPointX: 320,
		PrincipalPointY: 240.25,
	}, h.Intrinsics())
	assert.Equal(t, 12, h.DataSize())

	rest, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(rest))
}

func TestReadHeaderInfoUnknownTags(t *testing.T) {
	in := "source: left_fisheye_image\npixel-format: yuv\nformat: h264\n\n"
	h, err := ReadHeaderInfo(bufio.NewReader(strings.NewReader(in)))
	require.NoError(t, err)
	assert.Equal(t, capture.PixelFormatUnknown, h.PixelFormat())
	assert.Equal(t, capture.FormatUnknown, h.Format())
	assert.Equal(t, 0, h.Rows())
}

func TestReadHeaderInfoWithoutTerminator(t *testing.T) {
	_, err := ReadHeaderInfo(bufio.NewReader(strings.NewReader("source: back_depth\n")))
	assert.Equal(t, io.EOF, err)
}

func TestHeaderRoundTrip(t *testing.T) {
	resp := capture.Response{
		Source: "hand_color_image",
		Shot: capture.Capture{
			FrameName:       "hand_color_image_sensor",
			AcquisitionTime: &timestamppb.Timestamp{Seconds: 42, Nanos: 7},
			Image: capture.Image{
				Data:        []byte{0xff, 0xd8, 0x00},
				Rows:        480,
				Cols:        640,
				PixelFormat: capture.PixelFormatRGBU8,
				Format:      capture.FormatJPEG,
			},
		},
		Intrinsics: capture.PinholeIntrinsics{FocalLengthX: 552.5, FocalLengthY: 552, PrincipalPointX: 320, PrincipalPointY: 240},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHeaderInfo(&buf, &resp))
	buf.Write(resp.Shot.Image.Data)

	reader := bufio.NewReader(&buf)
	h, err := ReadHeaderInfo(reader)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)

	got := h.Response(data)
	assert.True(t, proto.Equal(resp.Shot.AcquisitionTime, got.Shot.AcquisitionTime))
	got.Shot.AcquisitionTime = resp.Shot.AcquisitionTime
	assert.Equal(t, resp, got)
	assert.Equal(t, len(data), h.DataSize())
}
