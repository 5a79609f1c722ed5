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

// Package replay serves image batches from capture files on disk. A
// capture file is a YAML header ended by a blank line, followed by the raw
// image payload.
package replay

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
	"github.com/TheCacophonyProject/spot-camera-bridge/headers"
)

// Ext is the file extension of capture files.
const Ext = ".capture"

// ReadCapture reads one capture from r.
func ReadCapture(r io.Reader) (*capture.Response, error) {
	reader := bufio.NewReader(r)
	h, err := headers.ReadHeaderInfo(reader)
	if err != nil {
		return nil, fmt.Errorf("reading capture header: %w", err)
	}

	var data []byte
	if n := h.DataSize(); n > 0 {
		data = make([]byte, n)
		if _, err := io.ReadFull(reader, data); err != nil {
			return nil, fmt.Errorf("reading capture payload: %w", err)
		}
	} else {
		data, err = io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("reading capture payload: %w", err)
		}
	}

	resp := h.Response(data)
	return &resp, nil
}

// ReadCaptureFile reads the capture stored in filename.
func ReadCaptureFile(filename string) (*capture.Response, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	resp, err := ReadCapture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return resp, nil
}

// WriteCapture writes resp in capture file form.
func WriteCapture(w io.Writer, resp *capture.Response) error {
	if err := headers.WriteHeaderInfo(w, resp); err != nil {
		return err
	}
	_, err := w.Write(resp.Shot.Image.Data)
	return err
}

// WriteCaptureFile writes resp to filename.
func WriteCaptureFile(filename string, resp *capture.Response) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := WriteCapture(bw, resp); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Logger is satisfied by *log.Logger and *loglimiter.LogLimiter.
type Logger interface {
	Printf(format string, v ...interface{})
}

type stdLogger struct{}

func (stdLogger) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// DirRequester answers image requests with the capture files found in a
// directory.
type DirRequester struct {
	dir string
	log Logger
}

func NewDirRequester(dir string) *DirRequester {
	return &DirRequester{dir: dir, log: stdLogger{}}
}

// SetLogger sets where unreadable capture files are reported.
func (d *DirRequester) SetLogger(l Logger) {
	d.log = l
}

// GetImages returns every capture in the directory whose source was
// requested. An empty request returns every capture. Files are read in
// name order. A file that can't be read, such as one still being written,
// is logged and left out of the batch.
func (d *DirRequester) GetImages(req capture.Request) ([]capture.Response, error) {
	if _, err := os.Stat(d.dir); err != nil {
		return nil, err
	}
	filenames, err := filepath.Glob(filepath.Join(d.dir, "*"+Ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(filenames)

	wanted := make(map[string]bool, len(req.Sources))
	for _, s := range req.Sources {
		wanted[s] = true
	}

	var out []capture.Response
	for _, filename := range filenames {
		resp, err := ReadCaptureFile(filename)
		if err != nil {
			d.log.Printf("skipping capture file: %v", err)
			continue
		}
		if len(wanted) > 0 && !wanted[resp.Source] {
			continue
		}
		out = append(out, *resp)
	}
	return out, nil
}
