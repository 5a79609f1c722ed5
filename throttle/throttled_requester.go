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

package throttle

import (
	"errors"
	"log"
	"time"

	"github.com/juju/ratelimit"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
)

var ErrThrottled = errors.New("image request throttled")

// ImageRequester matches converter.ImageRequester.
type ImageRequester interface {
	GetImages(req capture.Request) ([]capture.Response, error)
}

// ThrottledEventListener is told each time a request is refused.
type ThrottledEventListener interface {
	WhenThrottled()
}

type nullListener struct{}

func (nullListener) WhenThrottled() {}

func NewThrottledRequester(
	requester ImageRequester,
	config *ThrottlerConfig,
	listener ThrottledEventListener,
) *ThrottledRequester {
	return NewThrottledRequesterWithClock(requester, config, listener, new(realClock))
}

func NewThrottledRequesterWithClock(
	requester ImageRequester,
	config *ThrottlerConfig,
	listener ThrottledEventListener,
	clock ratelimit.Clock,
) *ThrottledRequester {
	if listener == nil {
		listener = new(nullListener)
	}
	// The token bucket tracks the number of image *requests* available.
	return &ThrottledRequester{
		requester: requester,
		listener:  listener,
		bucket:    ratelimit.NewBucketWithClock(config.MinRefill, config.BucketSize, clock),
	}
}

// ThrottledRequester wraps an image requester so that batches are refused
// (ie get throttled) if they are requested too often. This stops a tight
// polling loop from flooding the robot's image service.
type ThrottledRequester struct {
	requester ImageRequester
	listener  ThrottledEventListener
	bucket    *ratelimit.Bucket
	throttled bool
}

func (throttler *ThrottledRequester) GetImages(req capture.Request) ([]capture.Response, error) {
	if throttler.bucket.TakeAvailable(1) == 0 {
		if !throttler.throttled {
			log.Print("image requests throttled")
			throttler.throttled = true
			throttler.listener.WhenThrottled()
		}
		return nil, ErrThrottled
	}
	if throttler.throttled {
		log.Print("image requests no longer throttled")
		throttler.throttled = false
	}
	return throttler.requester.GetImages(req)
}

// Available returns the number of requests that can be made right now.
func (throttler *ThrottledRequester) Available() int64 {
	return throttler.bucket.Available()
}

// realClock implements ratelimit.Clock in terms of standard time functions.
type realClock struct{}

// Now implements Clock.Now by calling time.Now.
func (realClock) Now() time.Time {
	return time.Now()
}

// Now implements Clock.Sleep by calling time.Sleep.
func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
