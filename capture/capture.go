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

// Package capture holds the vendor side of the translation layer: image
// captures exactly as the robot's image service returns them.
package capture

import (
	"strings"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// PixelFormat is the robot's pixel format tag. Values follow the
// vendor API enumeration.
type PixelFormat int32

const (
	PixelFormatUnknown      PixelFormat = 0
	PixelFormatGreyscaleU8  PixelFormat = 1
	PixelFormatRGBU8        PixelFormat = 3
	PixelFormatRGBAU8       PixelFormat = 4
	PixelFormatDepthU16     PixelFormat = 5
	PixelFormatGreyscaleU16 PixelFormat = 6
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatUnknown:      "unknown",
	PixelFormatGreyscaleU8:  "greyscale_u8",
	PixelFormatRGBU8:        "rgb_u8",
	PixelFormatRGBAU8:       "rgba_u8",
	PixelFormatDepthU16:     "depth_u16",
	PixelFormatGreyscaleU16: "greyscale_u16",
}

func (f PixelFormat) String() string {
	if name, ok := pixelFormatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParsePixelFormat returns PixelFormatUnknown for names it doesn't know.
func ParsePixelFormat(s string) PixelFormat {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range pixelFormatNames {
		if name == s {
			return f
		}
	}
	return PixelFormatUnknown
}

// Format is the wire encoding of an image payload.
type Format int32

const (
	FormatUnknown Format = 0
	FormatJPEG    Format = 1
	FormatRaw     Format = 2
	FormatRLE     Format = 3
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatJPEG:    "jpeg",
	FormatRaw:     "raw",
	FormatRLE:     "rle",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat returns FormatUnknown for names it doesn't know.
func ParseFormat(s string) Format {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == s {
			return f
		}
	}
	return FormatUnknown
}

// Image is the payload of a capture. Data must not be modified once the
// capture has been received.
type Image struct {
	Data        []byte
	Rows        int
	Cols        int
	PixelFormat PixelFormat
	Format      Format
}

// Capture is one image shot plus the metadata needed to place it in time
// and space.
type Capture struct {
	Image           Image
	FrameName       string
	AcquisitionTime *timestamppb.Timestamp
}

// PinholeIntrinsics are the parameters of a simple monocular camera.
type PinholeIntrinsics struct {
	FocalLengthX    float64
	FocalLengthY    float64
	PrincipalPointX float64
	PrincipalPointY float64
}

// Response is a single source's entry in a multi-camera image response.
type Response struct {
	Source     string
	Shot       Capture
	Intrinsics PinholeIntrinsics
}

// Request lists the vendor source names to capture from.
type Request struct {
	Sources []string
}
