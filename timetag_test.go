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
	"testing"
	"testing/quick"
	"time"

	"github.com/bufbuild/osc/internal/assert"
)

func TestTimeTagWire(t *testing.T) {
	t.Parallel()
	t.Run("immediately", func(t *testing.T) {
		t.Parallel()
		var zero TimeTag
		assert.True(t, zero.IsImmediate())
		assert.True(t, zero.Equal(Immediately))
		wire, err := Immediately.wire()
		assert.Nil(t, err)
		assert.Equal(t, wire, uint64(1))
		assert.True(t, timeTagFromWire(1).IsImmediate())
		assert.Equal(t, Immediately.String(), "immediately")
	})
	t.Run("epochs", func(t *testing.T) {
		t.Parallel()
		wire, err := TimeTagAt(0).wire()
		assert.Nil(t, err)
		assert.Equal(t, wire, uint64(ntpDelta)<<32)
		wire, err = TimeTagAt(-ntpDelta).wire()
		assert.Nil(t, err)
		assert.Equal(t, wire, uint64(0))
		assert.False(t, TimeTagAt(0).IsImmediate())
	})
	t.Run("fractions", func(t *testing.T) {
		t.Parallel()
		wire, err := TimeTagAt(1.25).wire()
		assert.Nil(t, err)
		assert.Equal(t, wire>>32, uint64(ntpDelta+1))
		assert.Equal(t, wire&math.MaxUint32, uint64(1<<30))
		decoded := timeTagFromWire(wire)
		assert.Equal(t, decoded, TimeTagAt(1.25))
		assert.Equal(t, decoded.String(), "1.25")
	})
	t.Run("microseconds survive", func(t *testing.T) {
		t.Parallel()
		seconds := 1_697_000_000.123456
		wire, err := TimeTagAt(seconds).wire()
		assert.Nil(t, err)
		assert.InDelta(t, timeTagFromWire(wire).Seconds(), seconds, 1e-6)
	})
	t.Run("out of range", func(t *testing.T) {
		t.Parallel()
		for _, seconds := range []float64{-ntpDelta - 1, 1 << 32, math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := TimeTagAt(seconds).wire()
			assert.Equal(t, CodeOf(err), CodeUnsupportedValue, assert.Sprintf("seconds %v", seconds))
		}
	})
}

func TestTimeTagWireRoundTrip(t *testing.T) {
	t.Parallel()
	roundTrip := func(wire uint64) bool {
		// Stay clear of the top of the range, where float64 rounding can
		// carry past 2^64.
		wire >>= 1
		if wire == immediatelyWire {
			return true
		}
		again, err := timeTagFromWire(wire).wire()
		if err != nil {
			return false
		}
		diff := int64(again - wire)
		return diff > -1<<12 && diff < 1<<12
	}
	if err := quick.Check(roundTrip, nil /* config */); err != nil {
		t.Error(err)
	}
}

func TestTimeTagTime(t *testing.T) {
	t.Parallel()
	moment := time.Unix(1_700_000_000, 500_000_000)
	tag := TimeTagOf(moment)
	assert.Equal(t, tag.Seconds(), 1_700_000_000.5)
	assert.True(t, tag.Time().Equal(moment), assert.Sprintf("got %v", tag.Time()))
	assert.True(t, Immediately.Time().IsZero())
	assert.Zero(t, Immediately.Seconds())

	assert.True(t, TimeTagAt(1).Equal(TimeTagAt(1)))
	assert.False(t, TimeTagAt(1).Equal(TimeTagAt(1.5)))
	assert.False(t, TimeTagAt(0).Equal(Immediately))
}
