// spot-camera-bridge - translate robot camera captures into standard images
//  Copyright (C) 2020, The Cacophony Project
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
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/types/known/timestamppb"
	"gopkg.in/yaml.v1"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
)

// Header fields
const (
	Source          = "source"
	FrameName       = "frame-name"
	Rows            = "rows"
	Cols            = "cols"
	PixelFormat     = "pixel-format"
	Format          = "format"
	AcquisitionSecs = "acquisition-secs"
	AcquisitionNano = "acquisition-nanos"
	FocalLengthX    = "focal-x"
	FocalLengthY    = "focal-y"
	PrincipalX      = "principal-x"
	PrincipalY      = "principal-y"
	DataSize        = "data-size"
)

// HeaderInfo contains the capture description fields that precede the
// image payload in a capture file.
type HeaderInfo struct {
	source      string
	frameName   string
	rows        int
	cols        int
	pixelFormat capture.PixelFormat
	format      capture.Format
	acqSecs     int64
	acqNanos    int32
	intrinsics  capture.PinholeIntrinsics
	dataSize    int
}

// Source returns the vendor image source name.
func (h *HeaderInfo) Source() string {
	return h.source
}

// FrameName returns the name of the sensor frame.
func (h *HeaderInfo) FrameName() string {
	return h.frameName
}

func (h *HeaderInfo) Rows() int {
	return h.rows
}

func (h *HeaderInfo) Cols() int {
	return h.cols
}

func (h *HeaderInfo) PixelFormat() capture.PixelFormat {
	return h.pixelFormat
}

func (h *HeaderInfo) Format() capture.Format {
	return h.format
}

// AcquisitionTime returns when the robot took the image, on the robot's
// clock.
func (h *HeaderInfo) AcquisitionTime() *timestamppb.Timestamp {
	return &timestamppb.Timestamp{Seconds: h.acqSecs, Nanos: h.acqNanos}
}

func (h *HeaderInfo) Intrinsics() capture.PinholeIntrinsics {
	return h.intrinsics
}

// DataSize returns the number of payload bytes following the header, or
// 0 if the payload runs to the end of the file.
func (h *HeaderInfo) DataSize() int {
	return h.dataSize
}

// Response builds the capture response described by the header.
func (h *HeaderInfo) Response(data []byte) capture.Response {
	return capture.Response{
		Source: h.source,
		Shot: capture.Capture{
			Image: capture.Image{
				Data:        data,
				Rows:        h.rows,
				Cols:        h.cols,
				PixelFormat: h.pixelFormat,
				Format:      h.format,
			},
			FrameName:       h.frameName,
			AcquisitionTime: h.AcquisitionTime(),
		},
		Intrinsics: h.intrinsics,
	}
}

func ReadHeaderInfo(reader *bufio.Reader) (*HeaderInfo, error) {
	var buf bytes.Buffer
	for {
		line, err := reader.ReadString(byte('\n'))
		if err != nil {
			return nil, err
		}
		if strings.Trim(line, " ") == "\n" {
			break
		}
		buf.WriteString(line)
	}
	h := make(map[string]interface{})
	err := yaml.Unmarshal(buf.Bytes(), &h)
	if err != nil {
		return nil, err
	}

	return &HeaderInfo{
		source:      toStr(h[Source]),
		frameName:   toStr(h[FrameName]),
		rows:        toInt(h[Rows]),
		cols:        toInt(h[Cols]),
		pixelFormat: capture.ParsePixelFormat(toStr(h[PixelFormat])),
		format:      capture.ParseFormat(toStr(h[Format])),
		acqSecs:     int64(toInt(h[AcquisitionSecs])),
		acqNanos:    int32(toInt(h[AcquisitionNano])),
		intrinsics: capture.PinholeIntrinsics{
			FocalLengthX:    toFloat(h[FocalLengthX]),
			FocalLengthY:    toFloat(h[FocalLengthY]),
			PrincipalPointX: toFloat(h[PrincipalX]),
			PrincipalPointY: toFloat(h[PrincipalY]),
		},
		dataSize: toInt(h[DataSize]),
	}, nil
}

// WriteHeaderInfo writes the header for resp, including the blank line
// that ends it.
func WriteHeaderInfo(w io.Writer, resp *capture.Response) error {
	shot := resp.Shot
	h := map[string]interface{}{
		Source:          resp.Source,
		FrameName:       shot.FrameName,
		Rows:            shot.Image.Rows,
		Cols:            shot.Image.Cols,
		PixelFormat:     shot.Image.PixelFormat.String(),
		Format:          shot.Image.Format.String(),
		AcquisitionSecs: shot.AcquisitionTime.GetSeconds(),
		AcquisitionNano: int(shot.AcquisitionTime.GetNanos()),
		FocalLengthX:    resp.Intrinsics.FocalLengthX,
		FocalLengthY:    resp.Intrinsics.FocalLengthY,
		PrincipalX:      resp.Intrinsics.PrincipalPointX,
		PrincipalY:      resp.Intrinsics.PrincipalPointY,
		DataSize:        len(shot.Image.Data),
	}
	out, err := yaml.Marshal(h)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = fmt.Fprint(w, "\n")
	return err
}

func toInt(v interface{}) int {
	switch out := v.(type) {
	case int:
		return out
	case int64:
		return int(out)
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch out := v.(type) {
	case float64:
		return out
	case int:
		return float64(out)
	case int64:
		return float64(out)
	}
	return 0
}

func toStr(v interface{}) string {
	out, ok := v.(string)
	if !ok {
		return ""
	}
	return out
}
