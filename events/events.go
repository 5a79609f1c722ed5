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

// Package events reports conversion problems through the device event
// service.
package events

import (
	"log"
	"time"

	"github.com/TheCacophonyProject/event-reporter/eventclient"

	"github.com/TheCacophonyProject/spot-camera-bridge/converter"
)

const (
	ConversionFailedType = "spotImageConversionFailed"
	ThrottledType        = "spotImageRequestThrottled"
)

// Reporter queues events describing batches.
type Reporter struct {
	addEvent func(eventclient.Event) error
	now      func() time.Time
}

func NewReporter() *Reporter {
	return &Reporter{
		addEvent: eventclient.AddEvent,
		now:      time.Now,
	}
}

// ReportFailures queues one event listing every capture dropped from res.
// Nothing is queued if the whole batch converted.
func (r *Reporter) ReportFailures(res *converter.Result) error {
	if len(res.Diagnostics) == 0 {
		return nil
	}
	failures := make([]map[string]interface{}, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		failures = append(failures, map[string]interface{}{
			"source": d.Source,
			"stage":  string(d.Stage),
			"error":  d.Err.Error(),
		})
	}
	return r.add(ConversionFailedType, map[string]interface{}{
		"requestId": res.RequestID,
		"converted": len(res.Images),
		"failures":  failures,
	})
}

// WhenThrottled records that an image request was refused by the
// throttler.
func (r *Reporter) WhenThrottled() {
	err := r.add(ThrottledType, map[string]interface{}{
		"description": map[string]interface{}{
			"type": "throttle",
		},
	})
	if err != nil {
		log.Printf("could not record throttle event: %v", err)
	}
}

func (r *Reporter) add(eventType string, details map[string]interface{}) error {
	return r.addEvent(eventclient.Event{
		Timestamp: r.now(),
		Type:      eventType,
		Details:   details,
	})
}
