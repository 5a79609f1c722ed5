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

// Package output writes converted batches to disk. Each image becomes a
// PNG and each batch a CBOR record file. Files are written under a
// temporary name and renamed once complete.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/TheCacophonyProject/spot-camera-bridge/converter"
	"github.com/TheCacophonyProject/spot-camera-bridge/sources"
)

const (
	tempExt   = ".temp"
	pngExt    = ".png"
	recordExt = ".cbor"
)

// Record describes one converted image in a record file. Pixel data lives
// in the matching PNG, if one was written.
type Record struct {
	RequestID       string      `cbor:"request-id"`
	Source          string      `cbor:"source"`
	FrameID         string      `cbor:"frame-id"`
	StampSec        uint32      `cbor:"stamp-sec"`
	StampNanosec    uint32      `cbor:"stamp-nanosec"`
	Height          int         `cbor:"height"`
	Width           int         `cbor:"width"`
	Encoding        string      `cbor:"encoding"`
	Step            int         `cbor:"step"`
	DistortionModel string      `cbor:"distortion-model"`
	D               []float64   `cbor:"d"`
	K               [9]float64  `cbor:"k"`
	R               [9]float64  `cbor:"r"`
	P               [12]float64 `cbor:"p"`
	PNG             string      `cbor:"png,omitempty"`
}

// Failure is a dropped capture in a record file.
type Failure struct {
	RequestID string `cbor:"request-id"`
	Source    string `cbor:"source"`
	Stage     string `cbor:"stage"`
	Error     string `cbor:"error"`
}

// Batch is the content of a record file.
type Batch struct {
	RequestID string    `cbor:"request-id"`
	Written   time.Time `cbor:"written"`
	Records   []Record  `cbor:"records"`
	Failures  []Failure `cbor:"failures,omitempty"`
}

// Writer writes converted batches into a directory.
type Writer struct {
	dir          string
	writePNG     bool
	writeRecords bool
	now          func() time.Time
}

func NewWriter(dir string, writePNG, writeRecords bool) *Writer {
	return &Writer{
		dir:          dir,
		writePNG:     writePNG,
		writeRecords: writeRecords,
		now:          time.Now,
	}
}

// WriteBatch writes res and returns the names of the files created.
func (w *Writer) WriteBatch(res *converter.Result) ([]string, error) {
	if !w.writePNG && !w.writeRecords {
		return nil, nil
	}
	now := w.now()
	prefix := now.Format("20060102.150405.000") + "." + res.RequestID

	batch := Batch{RequestID: res.RequestID, Written: now}
	var written []string
	for _, src := range sortedSources(res.Images) {
		entry := res.Images[src]
		rec := newRecord(res.RequestID, src, entry)
		if w.writePNG {
			name := filepath.Join(w.dir, fmt.Sprintf("%s.%s-%s%s", prefix, src.Type, src.Camera, pngExt))
			if err := writeFile(name, func(out io.Writer) error {
				return encodePNG(out, entry)
			}); err != nil {
				return written, err
			}
			rec.PNG = filepath.Base(name)
			written = append(written, name)
		}
		batch.Records = append(batch.Records, rec)
	}
	for _, d := range res.Diagnostics {
		batch.Failures = append(batch.Failures, Failure{
			RequestID: res.RequestID,
			Source:    d.Source,
			Stage:     string(d.Stage),
			Error:     d.Err.Error(),
		})
	}

	if w.writeRecords {
		name := filepath.Join(w.dir, prefix+recordExt)
		if err := writeFile(name, func(out io.Writer) error {
			return cbor.NewEncoder(out).Encode(batch)
		}); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

func newRecord(requestID string, src sources.Source, entry converter.Entry) Record {
	img := entry.Image
	info := entry.Info
	return Record{
		RequestID:       requestID,
		Source:          src.String(),
		FrameID:         img.Header.FrameID,
		StampSec:        img.Header.Stamp.Sec,
		StampNanosec:    img.Header.Stamp.Nanosec,
		Height:          img.Height,
		Width:           img.Width,
		Encoding:        string(img.Encoding),
		Step:            img.Step,
		DistortionModel: info.DistortionModel,
		D:               info.D,
		K:               info.K,
		R:               info.R,
		P:               info.P,
	}
}

func encodePNG(w io.Writer, entry converter.Entry) error {
	img, err := entry.Image.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func sortedSources(images converter.BatchResult) []sources.Source {
	out := make([]sources.Source, 0, len(images))
	for src := range images {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// writeFile writes name+".temp" using fill and renames it to name. The
// temp file is removed if anything fails.
func writeFile(name string, fill func(io.Writer) error) error {
	tempName := name + tempExt
	f, err := os.Create(tempName)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	err = fill(bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tempName)
		return err
	}
	_, err = renameTempFile(tempName)
	return err
}

func renameTempFile(tempName string) (string, error) {
	finalName := finalFileName(tempName)
	if finalName == tempName {
		return "", errors.New("not a temp file: " + tempName)
	}
	if err := os.Rename(tempName, finalName); err != nil {
		return "", err
	}
	return finalName, nil
}

var reTempName = regexp.MustCompile(`(.+)\.temp$`)

func finalFileName(filename string) string {
	return reTempName.ReplaceAllString(filename, `$1`)
}

// DeleteTempFiles removes partially written files left in directory.
func DeleteTempFiles(directory string) error {
	matches, _ := filepath.Glob(filepath.Join(directory, "*"+tempExt))
	for _, filename := range matches {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	return nil
}

// ReadBatch reads a record file written by WriteBatch.
func ReadBatch(filename string) (*Batch, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var batch Batch
	if err := cbor.NewDecoder(bufio.NewReader(f)).Decode(&batch); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &batch, nil
}
