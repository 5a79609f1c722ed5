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

package main

import (
	"sync"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
	"github.com/TheCacophonyProject/spot-camera-bridge/converter"
)

type batchWriter interface {
	WriteBatch(res *converter.Result) ([]string, error)
}

type failureReporter interface {
	ReportFailures(res *converter.Result) error
}

// bridge converts one batch per poll and keeps the most recent result for
// the dbus service.
type bridge struct {
	conv     *converter.Converter
	request  []string
	writer   batchWriter
	reporter failureReporter
	log      converter.Logger

	mu   sync.Mutex
	last *converter.Result
}

func (b *bridge) poll() error {
	res, err := b.conv.GetImages(capture.Request{Sources: b.request})
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.last = res
	b.mu.Unlock()

	if b.writer != nil {
		if _, err := b.writer.WriteBatch(res); err != nil {
			return err
		}
	}
	if err := b.reporter.ReportFailures(res); err != nil {
		b.log.Printf("could not report conversion failures: %v", err)
	}
	return nil
}

func (b *bridge) lastBatch() *converter.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
