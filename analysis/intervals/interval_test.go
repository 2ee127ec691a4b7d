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
	"math/big"
	"testing"
)

func iv(lo, hi int64) Interval {
	return New(NumInt(lo), NumInt(hi))
}

func checkEqual(t *testing.T, got, want Interval) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNumCmp(t *testing.T) {
	if MinusInf().Cmp(NumInt(-1000000)) >= 0 {
		t.Errorf("-inf should be smaller than any finite number")
	}
	if PlusInf().Cmp(NumInt(1000000)) <= 0 {
		t.Errorf("+inf should be larger than any finite number")
	}
	if MinusInf().Cmp(PlusInf()) >= 0 {
		t.Errorf("-inf should be smaller than +inf")
	}
	if NumInt(3).Cmp(NumInt(3)) != 0 {
		t.Errorf("3 should equal 3")
	}
}

func TestNumMulZeroInfinity(t *testing.T) {
	zero := NumInt(0)
	if got := zero.Mul(PlusInf()); got.Cmp(zero) != 0 {
		t.Errorf("0 * +inf = %v, want 0", got)
	}
	if got := MinusInf().Mul(zero); got.Cmp(zero) != 0 {
		t.Errorf("-inf * 0 = %v, want 0", got)
	}
}

func TestNumBigPrecision(t *testing.T) {
	// Larger than any int64; must survive untruncated.
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	n := NumBig(huge)
	v, ok := n.Big()
	if !ok || v.Cmp(huge) != 0 {
		t.Errorf("big value was not preserved: %v", n)
	}
}

func TestPlus(t *testing.T) {
	checkEqual(t, iv(5, 5).Plus(iv(3, 3)), iv(8, 8))
	checkEqual(t, iv(1, 2).Plus(iv(10, 20)), iv(11, 22))
	checkEqual(t, Full().Plus(iv(1, 1)), Full())
}

func TestMinus(t *testing.T) {
	checkEqual(t, iv(5, 5).Minus(iv(3, 3)), iv(2, 2))
	checkEqual(t, iv(1, 2).Minus(iv(1, 2)), iv(-1, 1))
}

func TestTimes(t *testing.T) {
	checkEqual(t, iv(-2, -2).Times(iv(3, 3)), iv(-6, -6))
	checkEqual(t, iv(-1, 2).Times(iv(3, 4)), iv(-4, 8))
	checkEqual(t, iv(0, 0).Times(Full()), iv(0, 0))
}

func TestDiv(t *testing.T) {
	q, err := iv(10, 10).Div(iv(2, 2))
	if err != nil {
		t.Fatalf("10/2 failed: %v", err)
	}
	checkEqual(t, q, iv(5, 5))

	q, err = iv(10, 20).Div(iv(2, 5))
	if err != nil {
		t.Fatalf("[10,20]/[2,5] failed: %v", err)
	}
	checkEqual(t, q, iv(2, 10))
}

func TestDivByZeroInterval(t *testing.T) {
	if _, err := iv(1, 1).Div(iv(-1, 1)); err != ErrDivByZeroInterval {
		t.Errorf("dividing by [-1,1] should fail with ErrDivByZeroInterval, got %v", err)
	}
	if _, err := iv(1, 1).Div(iv(0, 0)); err != ErrDivByZeroInterval {
		t.Errorf("dividing by [0,0] should fail with ErrDivByZeroInterval, got %v", err)
	}
	if _, err := iv(1, 1).Div(iv(1, 2)); err != nil {
		t.Errorf("dividing by [1,2] should succeed, got %v", err)
	}
}

func TestContainsZero(t *testing.T) {
	if !iv(-1, 1).ContainsZero() || !iv(0, 0).ContainsZero() || !iv(0, 5).ContainsZero() {
		t.Errorf("intervals spanning zero should contain zero")
	}
	if iv(1, 5).ContainsZero() || iv(-5, -1).ContainsZero() {
		t.Errorf("intervals excluding zero should not contain zero")
	}
	if Empty().ContainsZero() {
		t.Errorf("the empty interval contains nothing")
	}
}

func TestEqualsThreeValued(t *testing.T) {
	checkEqual(t, iv(1, 1).Equals(iv(1, 1)), iv(1, 1))
	checkEqual(t, iv(1, 2).Equals(iv(3, 4)), iv(0, 0))
	checkEqual(t, iv(1, 3).Equals(iv(2, 4)), iv(0, 1))
	if got := Full().Equals(iv(1, 1)); !got.IsFull() {
		t.Errorf("comparing against an unbounded interval should give the full interval, got %v", got)
	}
}

func TestJoinHull(t *testing.T) {
	checkEqual(t, iv(1, 2).Join(iv(5, 6)), iv(1, 6))
	checkEqual(t, iv(1, 2).Join(Empty()), iv(1, 2))
	checkEqual(t, Empty().Join(iv(1, 2)), iv(1, 2))
}

func TestLeqInclusion(t *testing.T) {
	if !iv(2, 3).Leq(iv(1, 4)) {
		t.Errorf("[2,3] should be included in [1,4]")
	}
	if iv(1, 4).Leq(iv(2, 3)) {
		t.Errorf("[1,4] should not be included in [2,3]")
	}
	if !Empty().Leq(iv(1, 1)) {
		t.Errorf("the empty interval is included in everything")
	}
	if !iv(1, 1).Leq(Full()) {
		t.Errorf("everything is included in the full interval")
	}
}

func TestJoinLatticeLaws(t *testing.T) {
	elems := []Interval{Empty(), iv(0, 0), iv(-3, 5), iv(2, 10), Full()}
	for _, a := range elems {
		if !a.Equal(a.Join(a)) {
			t.Errorf("join is not idempotent on %v", a)
		}
		for _, b := range elems {
			if !a.Join(b).Equal(b.Join(a)) {
				t.Errorf("join is not commutative on %v, %v", a, b)
			}
			if !a.Leq(a.Join(b)) {
				t.Errorf("%v should be included in join(%v, %v)", a, a, b)
			}
		}
	}
}

func TestSingleton(t *testing.T) {
	if !iv(7, 7).IsSingleton() {
		t.Errorf("[7,7] should be a singleton")
	}
	if iv(7, 8).IsSingleton() || Full().IsSingleton() || Empty().IsSingleton() {
		t.Errorf("non-degenerate intervals are not singletons")
	}
}
