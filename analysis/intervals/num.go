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

// Package intervals implements exact interval arithmetic over extended
// integers: arbitrary-precision integers augmented with signed infinities.
// The contract language has arbitrary-precision arithmetic, so bounds are
// big.Int values rather than machine words.
package intervals

import (
	"fmt"
	"math/big"
)

type numKind int

const (
	numFinite numKind = iota
	numNegInf
	numPosInf
)

// Num is an extended integer: a finite big.Int, or one of the two infinities.
// The zero value of Num is the finite integer 0.
type Num struct {
	kind numKind
	v    *big.Int
}

// NumInt returns the finite extended integer n.
func NumInt(n int64) Num {
	return Num{kind: numFinite, v: big.NewInt(n)}
}

// NumBig returns the finite extended integer with value v. The value is not
// copied; callers must not mutate it afterwards.
func NumBig(v *big.Int) Num {
	return Num{kind: numFinite, v: v}
}

// PlusInf returns the positive infinity.
func PlusInf() Num {
	return Num{kind: numPosInf}
}

// MinusInf returns the negative infinity.
func MinusInf() Num {
	return Num{kind: numNegInf}
}

// IsFinite returns true for finite values.
func (n Num) IsFinite() bool {
	return n.kind == numFinite
}

// Big returns the finite value of n, and false when n is infinite.
func (n Num) Big() (*big.Int, bool) {
	if n.kind != numFinite {
		return nil, false
	}
	return n.val(), true
}

func (n Num) val() *big.Int {
	if n.v == nil {
		return big.NewInt(0)
	}
	return n.v
}

// Sign returns -1, 0 or 1 depending on the sign of n.
func (n Num) Sign() int {
	switch n.kind {
	case numNegInf:
		return -1
	case numPosInf:
		return 1
	default:
		return n.val().Sign()
	}
}

// Cmp compares n and m, returning -1, 0 or 1.
func (n Num) Cmp(m Num) int {
	switch {
	case n.kind == m.kind && n.kind != numFinite:
		return 0
	case n.kind == numNegInf || m.kind == numPosInf:
		return -1
	case n.kind == numPosInf || m.kind == numNegInf:
		return 1
	default:
		return n.val().Cmp(m.val())
	}
}

// Neg returns -n.
func (n Num) Neg() Num {
	switch n.kind {
	case numNegInf:
		return PlusInf()
	case numPosInf:
		return MinusInf()
	default:
		return Num{kind: numFinite, v: new(big.Int).Neg(n.val())}
	}
}

// Add returns n + m. Adding infinities of opposite signs is a contract
// violation and panics; interval operations never produce such operand pairs
// on non-empty intervals.
func (n Num) Add(m Num) Num {
	switch {
	case n.kind == numFinite && m.kind == numFinite:
		return Num{kind: numFinite, v: new(big.Int).Add(n.val(), m.val())}
	case n.kind == numFinite:
		return m
	case m.kind == numFinite:
		return n
	case n.kind == m.kind:
		return n
	default:
		panic("intervals: adding infinities of opposite signs")
	}
}

// Sub returns n - m.
func (n Num) Sub(m Num) Num {
	return n.Add(m.Neg())
}

// Mul returns n * m. Multiplying zero by an infinity yields zero, the standard
// convention that keeps interval corner products sound.
func (n Num) Mul(m Num) Num {
	if n.kind == numFinite && m.kind == numFinite {
		return Num{kind: numFinite, v: new(big.Int).Mul(n.val(), m.val())}
	}
	if n.Sign() == 0 || m.Sign() == 0 {
		return NumInt(0)
	}
	if n.Sign()*m.Sign() > 0 {
		return PlusInf()
	}
	return MinusInf()
}

// Quo returns the integer quotient n / m, truncated towards zero. The divisor
// must be nonzero; a finite value divided by an infinity is zero.
func (n Num) Quo(m Num) Num {
	if m.Sign() == 0 {
		panic("intervals: division by zero bound")
	}
	switch {
	case n.kind == numFinite && m.kind == numFinite:
		return Num{kind: numFinite, v: new(big.Int).Quo(n.val(), m.val())}
	case n.kind == numFinite:
		// finite / infinity
		return NumInt(0)
	case m.kind == numFinite:
		if n.Sign()*m.Sign() > 0 {
			return PlusInf()
		}
		return MinusInf()
	default:
		if n.Sign()*m.Sign() > 0 {
			return PlusInf()
		}
		return MinusInf()
	}
}

// MinNum returns the smaller of the arguments.
func MinNum(a Num, rest ...Num) Num {
	m := a
	for _, x := range rest {
		if x.Cmp(m) < 0 {
			m = x
		}
	}
	return m
}

// MaxNum returns the larger of the arguments.
func MaxNum(a Num, rest ...Num) Num {
	m := a
	for _, x := range rest {
		if x.Cmp(m) > 0 {
			m = x
		}
	}
	return m
}

func (n Num) String() string {
	switch n.kind {
	case numNegInf:
		return "-inf"
	case numPosInf:
		return "+inf"
	default:
		return fmt.Sprintf("%v", n.val())
	}
}
