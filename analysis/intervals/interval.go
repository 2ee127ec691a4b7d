// Copyright Sift Labs, Inc. or its affiliates. All Rights Reserved.
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

package intervals

import (
	"errors"
	"fmt"
)

// ErrDivByZeroInterval is returned by Div when the divisor interval contains
// zero: no sound finite bound exists for such a division. Callers must either
// propagate the failure or fall back to Full(); they must never substitute a
// guessed bound.
var ErrDivByZeroInterval = errors.New("division by an interval containing zero")

// Interval is a closed range [Low, High] of extended integers. The sentinel
// Full() is (-inf, +inf) and Empty() is (+inf, -inf); any interval with
// Low > High behaves as empty.
type Interval struct {
	Low  Num
	High Num
}

// New returns the interval [low, high].
func New(low, high Num) Interval {
	return Interval{Low: low, High: high}
}

// FromNum returns the singleton interval [n, n].
func FromNum(n Num) Interval {
	return Interval{Low: n, High: n}
}

// FromInt64 returns the singleton interval [n, n].
func FromInt64(n int64) Interval {
	return FromNum(NumInt(n))
}

// Full returns the unbounded interval (-inf, +inf).
func Full() Interval {
	return Interval{Low: MinusInf(), High: PlusInf()}
}

// Empty returns the empty interval (+inf, -inf).
func Empty() Interval {
	return Interval{Low: PlusInf(), High: MinusInf()}
}

// IsEmpty returns true when the interval contains no value.
func (i Interval) IsEmpty() bool {
	return i.Low.Cmp(i.High) > 0
}

// IsFull returns true when both bounds are infinite.
func (i Interval) IsFull() bool {
	return !i.Low.IsFinite() && !i.High.IsFinite() && !i.IsEmpty()
}

// IsSingleton returns true when the interval holds exactly one finite value.
func (i Interval) IsSingleton() bool {
	return i.Low.IsFinite() && i.Low.Cmp(i.High) == 0
}

// Equal reports structural equality of the two intervals. All empty intervals
// are considered equal.
func (i Interval) Equal(o Interval) bool {
	if i.IsEmpty() || o.IsEmpty() {
		return i.IsEmpty() && o.IsEmpty()
	}
	return i.Low.Cmp(o.Low) == 0 && i.High.Cmp(o.High) == 0
}

// Plus returns the interval of sums. Plus never fails.
func (i Interval) Plus(o Interval) Interval {
	if i.IsEmpty() || o.IsEmpty() {
		return Empty()
	}
	return Interval{Low: i.Low.Add(o.Low), High: i.High.Add(o.High)}
}

// Minus returns the interval of differences. Minus never fails.
func (i Interval) Minus(o Interval) Interval {
	if i.IsEmpty() || o.IsEmpty() {
		return Empty()
	}
	return Interval{Low: i.Low.Sub(o.High), High: i.High.Sub(o.Low)}
}

// Times returns the interval of products. All four corner products are
// computed and the min/max taken, which handles sign changes correctly.
func (i Interval) Times(o Interval) Interval {
	if i.IsEmpty() || o.IsEmpty() {
		return Empty()
	}
	ll := i.Low.Mul(o.Low)
	lh := i.Low.Mul(o.High)
	hl := i.High.Mul(o.Low)
	hh := i.High.Mul(o.High)
	return Interval{Low: MinNum(ll, lh, hl, hh), High: MaxNum(ll, lh, hl, hh)}
}

// Div returns the interval of truncated quotients. It fails with
// ErrDivByZeroInterval when the divisor interval contains zero.
func (i Interval) Div(o Interval) (Interval, error) {
	if i.IsEmpty() || o.IsEmpty() {
		return Empty(), nil
	}
	if o.ContainsZero() {
		return Empty(), ErrDivByZeroInterval
	}
	ll := i.Low.Quo(o.Low)
	lh := i.Low.Quo(o.High)
	hl := i.High.Quo(o.Low)
	hh := i.High.Quo(o.High)
	return Interval{Low: MinNum(ll, lh, hl, hh), High: MaxNum(ll, lh, hl, hh)}, nil
}

// ContainsZero is the closed-interval inclusive test Low <= 0 <= High. The
// empty interval contains nothing.
func (i Interval) ContainsZero() bool {
	if i.IsEmpty() {
		return false
	}
	return i.Low.Sign() <= 0 && i.High.Sign() >= 0
}

// Equals is abstract "maybe" equality: abstract values stand for many
// concrete values, so the result is itself an interval over {0, 1}.
// It returns Full() when either side is unbounded, the singleton 1 when both
// sides are provably-equal singleton integers, the singleton 0 when the
// intervals are disjoint, and [0, 1] when the comparison is inconclusive.
func (i Interval) Equals(o Interval) Interval {
	if i.IsEmpty() || o.IsEmpty() {
		return Empty()
	}
	if !i.Low.IsFinite() || !i.High.IsFinite() || !o.Low.IsFinite() || !o.High.IsFinite() {
		return Full()
	}
	if i.IsSingleton() && o.IsSingleton() && i.Low.Cmp(o.Low) == 0 {
		return FromInt64(1)
	}
	if i.High.Cmp(o.Low) < 0 || o.High.Cmp(i.Low) < 0 {
		return FromInt64(0)
	}
	return New(NumInt(0), NumInt(1))
}

// Join returns the convex hull of the two intervals, the least upper bound in
// the interval lattice ordered by inclusion.
func (i Interval) Join(o Interval) Interval {
	if i.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return i
	}
	return Interval{Low: MinNum(i.Low, o.Low), High: MaxNum(i.High, o.High)}
}

// Leq is interval inclusion, the partial order consistent with Join.
func (i Interval) Leq(o Interval) bool {
	if i.IsEmpty() {
		return true
	}
	if o.IsEmpty() {
		return false
	}
	return o.Low.Cmp(i.Low) <= 0 && i.High.Cmp(o.High) <= 0
}

func (i Interval) String() string {
	if i.IsEmpty() {
		return "[]"
	}
	return fmt.Sprintf("[%v, %v]", i.Low, i.High)
}
