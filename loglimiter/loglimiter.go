// spot-camera-bridge - translate robot camera captures into standard images
// Copyright (C) 2023, The Cacophony Project
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

package loglimiter

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// New returns a new LogLimiter with the configured minimum log interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
		seen:     make(map[string]time.Time),
	}
}

// LogLimiter will suppress a log message if the same message was logged
// within some time interval. Messages are tracked independently, so one
// source failing every batch doesn't hide failures from other sources.
type LogLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	nowFunc  func() time.Time
	seen     map[string]time.Time
}

func (limiter *LogLimiter) Printf(format string, v ...interface{}) {
	limiter.Print(fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(s string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.nowFunc()
	if last, ok := limiter.seen[s]; ok && now.Sub(last) < limiter.interval {
		return
	}

	log.Print(s)
	limiter.seen[s] = now
	limiter.forget(now)
}

// forget drops messages old enough to be logged again anyway.
func (limiter *LogLimiter) forget(now time.Time) {
	for s, last := range limiter.seen {
		if now.Sub(last) >= limiter.interval {
			delete(limiter.seen, s)
		}
	}
}
