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

// Package converter turns a multi-camera image response into standardized
// images and camera descriptions. A capture that can't be converted is
// dropped from the batch and reported as a Diagnostic; it never fails the
// whole batch.
package converter

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/TheCacophonyProject/spot-camera-bridge/camerainfo"
	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
	"github.com/TheCacophonyProject/spot-camera-bridge/clockskew"
	"github.com/TheCacophonyProject/spot-camera-bridge/imagedecode"
	"github.com/TheCacophonyProject/spot-camera-bridge/pixelformat"
	"github.com/TheCacophonyProject/spot-camera-bridge/sources"
)

var (
	ErrClockSkewUnavailable    = errors.New("clock skew unavailable")
	ErrImageRequestUnavailable = errors.New("image request unavailable")
	ErrDuplicateSource         = errors.New("duplicate image source in batch")
)

// ImageRequester fetches one batch of captures. It blocks until the robot
// has responded.
type ImageRequester interface {
	GetImages(req capture.Request) ([]capture.Response, error)
}

// ClockSkewProvider returns the current offset of the robot clock from the
// local clock.
type ClockSkewProvider interface {
	ClockSkew() (*durationpb.Duration, error)
}

// ClockSkewFunc adapts a function to a ClockSkewProvider.
type ClockSkewFunc func() (*durationpb.Duration, error)

func (f ClockSkewFunc) ClockSkew() (*durationpb.Duration, error) {
	return f()
}

// StaticClockSkew always returns skew.
func StaticClockSkew(skew *durationpb.Duration) ClockSkewProvider {
	return ClockSkewFunc(func() (*durationpb.Duration, error) {
		return skew, nil
	})
}

// Logger is satisfied by *log.Logger and *loglimiter.LogLimiter.
type Logger interface {
	Printf(format string, v ...interface{})
}

type stdLogger struct{}

func (stdLogger) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Stage is the conversion step a capture failed in.
type Stage string

const (
	StagePixelFormat Stage = "pixel format"
	StageDecode      Stage = "decode"
	StageSourceName  Stage = "source name"
)

// Diagnostic records why a capture was left out of a batch.
type Diagnostic struct {
	Source string
	Stage  Stage
	Err    error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%q: %s: %v", d.Source, d.Stage, d.Err)
}

// Entry is one converted capture.
type Entry struct {
	Image *imagedecode.StandardizedImage
	Info  camerainfo.CameraInfo
}

// BatchResult holds the captures that converted, keyed by source.
type BatchResult map[sources.Source]Entry

// Result is a converted batch plus a Diagnostic for every capture that
// was dropped.
type Result struct {
	RequestID   string
	Images      BatchResult
	Diagnostics []Diagnostic
}

type partial struct {
	vendorName string
	source     sources.Source
	entry      Entry
	diag       *Diagnostic
}

func newResult() *Result {
	return &Result{
		RequestID: uuid.NewString(),
		Images:    make(BatchResult),
	}
}

func (r *Result) add(p partial) {
	if p.diag != nil {
		r.Diagnostics = append(r.Diagnostics, *p.diag)
		return
	}
	if _, exists := r.Images[p.source]; exists {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Source: p.vendorName,
			Stage:  StageSourceName,
			Err:    fmt.Errorf("%w: %s", ErrDuplicateSource, p.source),
		})
		return
	}
	r.Images[p.source] = p.entry
}

func convertOne(resp capture.Response, skew *durationpb.Duration) partial {
	p := partial{vendorName: resp.Source}
	fail := func(stage Stage, err error) partial {
		p.diag = &Diagnostic{Source: resp.Source, Stage: stage, Err: err}
		return p
	}

	target, err := pixelformat.Resolve(resp.Shot.Image.PixelFormat)
	if err != nil {
		return fail(StagePixelFormat, err)
	}
	stamp := clockskew.Correct(resp.Shot.AcquisitionTime, skew)
	img, err := imagedecode.Decode(resp.Shot, target, stamp)
	if err != nil {
		return fail(StageDecode, err)
	}

	// Compressed captures take their size from the payload, not the tags.
	info := camerainfo.Build(camerainfo.Resolution{
		Width:  img.Width,
		Height: img.Height,
	}, resp.Intrinsics)
	info.Header = img.Header

	source, err := sources.Resolve(resp.Source)
	if err != nil {
		return fail(StageSourceName, err)
	}

	p.source = source
	p.entry = Entry{Image: img, Info: info}
	return p
}

// Convert converts every response in order using one clock skew for the
// whole batch. If two responses map to the same source the first wins.
func Convert(responses []capture.Response, skew *durationpb.Duration) *Result {
	res := newResult()
	for _, resp := range responses {
		res.add(convertOne(resp, skew))
	}
	return res
}

// ConvertParallel is Convert with one goroutine per response. Results are
// merged in input order so it returns the same Result as Convert.
func ConvertParallel(responses []capture.Response, skew *durationpb.Duration) *Result {
	partials := make([]partial, len(responses))
	var wg sync.WaitGroup
	for i := range responses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			partials[i] = convertOne(responses[i], skew)
		}(i)
	}
	wg.Wait()

	res := newResult()
	for _, p := range partials {
		res.add(p)
	}
	return res
}

// Converter requests batches from the robot and converts them.
type Converter struct {
	images   ImageRequester
	clock    ClockSkewProvider
	parallel bool
	log      Logger
}

func New(images ImageRequester, clock ClockSkewProvider) *Converter {
	return &Converter{
		images: images,
		clock:  clock,
		log:    stdLogger{},
	}
}

// SetParallel chooses whether captures are converted concurrently.
func (c *Converter) SetParallel(parallel bool) {
	c.parallel = parallel
}

// SetLogger sets where diagnostics are logged. nil mutes them.
func (c *Converter) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	c.log = l
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// GetImages requests a batch and converts it. It only fails if the batch
// itself or the clock skew can't be fetched.
func (c *Converter) GetImages(req capture.Request) (*Result, error) {
	responses, err := c.images.GetImages(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageRequestUnavailable, err)
	}
	skew, err := c.clock.ClockSkew()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClockSkewUnavailable, err)
	}

	var res *Result
	if c.parallel {
		res = ConvertParallel(responses, skew)
	} else {
		res = Convert(responses, skew)
	}
	for _, d := range res.Diagnostics {
		c.log.Printf("failed to convert image from %s", d)
	}
	return res, nil
}

// RobotTimeToLocal converts a robot timestamp using the current clock skew.
func (c *Converter) RobotTimeToLocal(ts *timestamppb.Timestamp) (clockskew.Time, error) {
	skew, err := c.clock.ClockSkew()
	if err != nil {
		return clockskew.Time{}, fmt.Errorf("%w: %w", ErrClockSkewUnavailable, err)
	}
	return clockskew.Correct(ts, skew), nil
}
