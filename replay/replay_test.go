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

package replay

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
)

func testResponse(source string, data []byte) *capture.Response {
	return &capture.Response{
		Source: source,
		Shot: capture.Capture{
			FrameName:       source,
			AcquisitionTime: &timestamppb.Timestamp{Seconds: 100, Nanos: 5},
			Image: capture.Image{
				Data:        data,
				Rows:        1,
				Cols:        2,
				PixelFormat: capture.PixelFormatDepthU16,
				Format:      capture.FormatRaw,
			},
		},
		Intrinsics: capture.PinholeIntrinsics{FocalLengthX: 1, FocalLengthY: 2, PrincipalPointX: 3, PrincipalPointY: 4},
	}
}

func TestCaptureRoundTrip(t *testing.T) {
	// Payload contains a blank line to check the header reader stops at the first one.
	resp := testResponse("back_depth", []byte{'\n', '\n', 0, 1})

	var buf bytes.Buffer
	require.NoError(t, WriteCapture(&buf, resp))
	buf.WriteString("trailing")

	got, err := ReadCapture(&buf)
	require.NoError(t, err)
	assert.Equal(t, resp.Shot.Image, got.Shot.Image)
	assert.Equal(t, resp.Source, got.Source)
	assert.Equal(t, resp.Intrinsics, got.Intrinsics)
	assert.Equal(t, int64(100), got.Shot.AcquisitionTime.GetSeconds())
}

func TestReadCaptureWithoutDataSize(t *testing.T) {
	got, err := ReadCapture(bytes.NewBufferString("source: left_depth\nformat: rle\n\nabc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got.Shot.Image.Data)
	assert.Equal(t, capture.FormatRLE, got.Shot.Image.Format)
}

func TestReadCaptureTruncatedPayload(t *testing.T) {
	_, err := ReadCapture(bytes.NewBufferString("source: left_depth\ndata-size: 10\n\nabc"))
	assert.Error(t, err)
}

func writeDir(t *testing.T, responses ...*capture.Response) string {
	dir, err := ioutil.TempDir("", "replay")
	require.NoError(t, err)
	for i, resp := range responses {
		name := filepath.Join(dir, string(rune('a'+i))+Ext)
		require.NoError(t, WriteCaptureFile(name, resp))
	}
	return dir
}

func TestDirRequesterReturnsAllInNameOrder(t *testing.T) {
	dir := writeDir(t, testResponse("left_depth", []byte{1, 0, 2, 0}), testResponse("right_depth", []byte{3, 0, 4, 0}))
	defer os.RemoveAll(dir)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	responses, err := NewDirRequester(dir).GetImages(capture.Request{})
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "left_depth", responses[0].Source)
	assert.Equal(t, "right_depth", responses[1].Source)
	assert.Equal(t, []byte{3, 0, 4, 0}, responses[1].Shot.Image.Data)
}

func TestDirRequesterFiltersSources(t *testing.T) {
	dir := writeDir(t, testResponse("left_depth", []byte{1, 0, 2, 0}), testResponse("right_depth", []byte{3, 0, 4, 0}))
	defer os.RemoveAll(dir)

	responses, err := NewDirRequester(dir).GetImages(capture.Request{Sources: []string{"right_depth", "hand_depth"}})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "right_depth", responses[0].Source)
}

func TestDirRequesterMissingDir(t *testing.T) {
	_, err := NewDirRequester("/does/not/exist").GetImages(capture.Request{})
	assert.Error(t, err)
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func TestDirRequesterSkipsUnreadableFiles(t *testing.T) {
	dir := writeDir(t, testResponse("left_depth", []byte{1, 0, 2, 0}))
	defer os.RemoveAll(dir)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "bad"+Ext), []byte("no header end"), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "c"+Ext),
		[]byte("source: right_depth\ndata-size: 4\n\n\x01"), 0644))
	require.NoError(t, WriteCaptureFile(filepath.Join(dir, "d"+Ext+".temp"), testResponse("back_depth", []byte{5, 0, 6, 0})))

	logger := new(recordingLogger)
	requester := NewDirRequester(dir)
	requester.SetLogger(logger)

	responses, err := requester.GetImages(capture.Request{})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "left_depth", responses[0].Source)
	assert.Equal(t, []byte{1, 0, 2, 0}, responses[0].Shot.Image.Data)

	require.Len(t, logger.lines, 2)
	assert.Contains(t, logger.lines[0], "bad"+Ext)
	assert.Contains(t, logger.lines[1], "c"+Ext)
}
