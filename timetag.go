// Copyright 2021-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package osc

import (
	"math"
	"strconv"
	"time"
)

const (
	// ntpDelta is the number of seconds between the NTP epoch (1900-01-01)
	// and the Unix epoch (1970-01-01).
	ntpDelta = 2208988800
	// ntpScale converts seconds to 32.32 fixed point.
	ntpScale = 1 << 32
	// immediatelyWire is the reserved wire value meaning "process now".
	immediatelyWire uint64 = 1
)

// A TimeTag schedules a bundle. It's either Immediately or a point in time,
// held as fractional seconds since the Unix epoch. On the wire, time tags are
// 64-bit NTP timestamps in 32.32 fixed point.
//
// The zero TimeTag is Immediately.
type TimeTag struct {
	seconds   float64
	scheduled bool
}

// Immediately asks the receiver to process a bundle as soon as it arrives.
// It's encoded as the reserved wire value 1.
var Immediately = TimeTag{}

// TimeTagAt returns a TimeTag for the given number of seconds since the Unix
// epoch.
func TimeTagAt(unixSeconds float64) TimeTag {
	return TimeTag{seconds: unixSeconds, scheduled: true}
}

// TimeTagOf returns a TimeTag for t.
func TimeTagOf(t time.Time) TimeTag {
	return TimeTagAt(float64(t.Unix()) + float64(t.Nanosecond())/1e9)
}

// IsImmediate reports whether the time tag is Immediately.
func (t TimeTag) IsImmediate() bool {
	return !t.scheduled
}

// Seconds returns the scheduled time in seconds since the Unix epoch. It
// returns zero for Immediately.
func (t TimeTag) Seconds() float64 {
	return t.seconds
}

// Time returns the scheduled time, or the zero time.Time for Immediately.
func (t TimeTag) Time() time.Time {
	if !t.scheduled {
		return time.Time{}
	}
	whole, frac := math.Modf(t.seconds)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9)))
}

// Equal reports whether two time tags are both Immediately or are scheduled
// for exactly the same time.
func (t TimeTag) Equal(other TimeTag) bool {
	return t.scheduled == other.scheduled && t.seconds == other.seconds
}

func (t TimeTag) String() string {
	if !t.scheduled {
		return "immediately"
	}
	return strconv.FormatFloat(t.seconds, 'f', -1, 64)
}

// wire converts the time tag to its 32.32 NTP representation.
func (t TimeTag) wire() (uint64, error) {
	if !t.scheduled {
		return immediatelyWire, nil
	}
	fixed := math.Round((t.seconds + ntpDelta) * ntpScale)
	// 1<<64 is exactly representable, so this also rejects NaN and ±Inf.
	if !(fixed >= 0 && fixed < 1<<64) {
		return 0, errorf(CodeUnsupportedValue, "time tag %v is outside the NTP timestamp range", t.seconds)
	}
	wire := uint64(fixed)
	if wire == immediatelyWire {
		return 0, errorf(CodeUnsupportedValue, "time tag %v collides with the immediate sentinel", t.seconds)
	}
	return wire, nil
}

func timeTagFromWire(wire uint64) TimeTag {
	if wire == immediatelyWire {
		return Immediately
	}
	return TimeTagAt(float64(wire)/ntpScale - ntpDelta)
}
