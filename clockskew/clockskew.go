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

// Package clockskew moves robot timestamps into the local clock domain.
package clockskew

import (
	"math"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const nanosPerSecond = int64(time.Second)

// Time is a timestamp in the consumer's clock domain. It can't hold
// negative times.
type Time struct {
	Sec     uint32
	Nanosec uint32
}

// IsZero reports whether t is the zero timestamp.
func (t Time) IsZero() bool {
	return t.Sec == 0 && t.Nanosec == 0
}

// AsTime returns t as a UTC time.Time.
func (t Time) AsTime() time.Time {
	return time.Unix(int64(t.Sec), int64(t.Nanosec)).UTC()
}

// Correct subtracts skew from a robot timestamp. Results earlier than the
// epoch are clamped to the zero Time. A nil timestamp or skew counts as zero.
func Correct(ts *timestamppb.Timestamp, skew *durationpb.Duration) Time {
	seconds := ts.GetSeconds() - skew.GetSeconds()
	nanos := int64(ts.GetNanos()) - int64(skew.GetNanos())

	// Borrow before checking the sign; the nanoseconds field is unsigned.
	// Inputs with nanos outside a second borrow or carry as many seconds as
	// they span.
	seconds += floorDiv(nanos, nanosPerSecond)
	nanos = floorMod(nanos, nanosPerSecond)

	if seconds < 0 {
		return Time{}
	}
	if seconds > math.MaxUint32 {
		return Time{Sec: math.MaxUint32, Nanosec: uint32(nanosPerSecond - 1)}
	}
	return Time{Sec: uint32(seconds), Nanosec: uint32(nanos)}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
