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

package imagedecode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
	"github.com/TheCacophonyProject/spot-camera-bridge/clockskew"
	"github.com/TheCacophonyProject/spot-camera-bridge/pixelformat"
)

var (
	ErrDecodeFailure       = errors.New("decode failure")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// Encoding is the pixel layout of a StandardizedImage.
type Encoding string

const (
	BGR8   Encoding = "bgr8"
	Mono8  Encoding = "mono8"
	Mono16 Encoding = "mono16"
)

const (
	// CompressedEncoding is what every compressed capture decodes to. A
	// compressed capture is always assumed to be a colour image.
	CompressedEncoding = BGR8

	// RawEncoding is the only layout raw captures are converted to. Raw
	// captures are assumed to be single channel 16 bit (depth) data.
	RawEncoding = Mono16
)

// Header identifies where and when an image was taken.
type Header struct {
	FrameID string
	Stamp   clockskew.Time
}

// StandardizedImage is a decoded, row-major image. 16 bit data is little
// endian.
type StandardizedImage struct {
	Header   Header
	Height   int
	Width    int
	Encoding Encoding
	Step     int
	Data     []byte
}

// Decode converts a capture into a StandardizedImage, dispatching on the
// capture's wire format.
func Decode(shot capture.Capture, target pixelformat.Target, stamp clockskew.Time) (*StandardizedImage, error) {
	header := Header{
		FrameID: shot.FrameName,
		Stamp:   stamp,
	}
	switch shot.Image.Format {
	case capture.FormatJPEG:
		return decodeCompressed(header, shot.Image)
	case capture.FormatRaw:
		return decodeRaw(header, shot.Image, target)
	case capture.FormatRLE:
		return nil, fmt.Errorf("%w: RLE not implemented", ErrUnsupportedEncoding)
	}
	return nil, fmt.Errorf("%w: unknown image format %d", ErrUnsupportedEncoding, int32(shot.Image.Format))
}

func decodeCompressed(header Header, in capture.Image) (*StandardizedImage, error) {
	img, _, err := image.Decode(bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	b := img.Bounds()
	out := &StandardizedImage{
		Header:   header,
		Height:   b.Dy(),
		Width:    b.Dx(),
		Encoding: CompressedEncoding,
		Step:     b.Dx() * 3,
		Data:     make([]byte, b.Dx()*b.Dy()*3),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Data[i] = c.B
			out.Data[i+1] = c.G
			out.Data[i+2] = c.R
			i += 3
		}
	}
	return out, nil
}

func decodeRaw(header Header, in capture.Image, target pixelformat.Target) (*StandardizedImage, error) {
	if target != pixelformat.Mono16 {
		// TODO: convert raw RGB and greyscale 8 bit captures.
		return nil, fmt.Errorf("%w: raw %s data", ErrUnsupportedEncoding, target)
	}
	expected := in.Rows * in.Cols * target.BytesPerPixel()
	if in.Rows <= 0 || in.Cols <= 0 || len(in.Data) != expected {
		return nil, fmt.Errorf("%w: raw frame length (%d) not expected size (%d)", ErrDecodeFailure, len(in.Data), expected)
	}
	data := make([]byte, expected)
	copy(data, in.Data)
	return &StandardizedImage{
		Header:   header,
		Height:   in.Rows,
		Width:    in.Cols,
		Encoding: RawEncoding,
		Step:     in.Cols * target.BytesPerPixel(),
		Data:     data,
	}, nil
}

// Image returns a copy of im as an image.Image: *image.RGBA for bgr8,
// *image.Gray for mono8 and *image.Gray16 for mono16.
func (im *StandardizedImage) Image() (image.Image, error) {
	rect := image.Rect(0, 0, im.Width, im.Height)
	switch im.Encoding {
	case BGR8:
		out := image.NewRGBA(rect)
		for y := 0; y < im.Height; y++ {
			row := im.Data[y*im.Step:]
			for x := 0; x < im.Width; x++ {
				p := row[x*3:]
				out.SetRGBA(x, y, color.RGBA{R: p[2], G: p[1], B: p[0], A: 0xff})
			}
		}
		return out, nil
	case Mono8:
		out := image.NewGray(rect)
		for y := 0; y < im.Height; y++ {
			copy(out.Pix[y*out.Stride:], im.Data[y*im.Step:y*im.Step+im.Width])
		}
		return out, nil
	case Mono16:
		out := image.NewGray16(rect)
		for y := 0; y < im.Height; y++ {
			for x := 0; x < im.Width; x++ {
				idx := y*im.Step + 2*x
				out.SetGray16(x, y, color.Gray16{Y: binary.LittleEndian.Uint16(im.Data[idx : idx+2])})
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, im.Encoding)
}
