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

package lang

import "math/big"

// BinOp is the closed set of binary operators of the contract language.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
)

var binOpNames = map[BinOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=", OpEq: "==", OpNe: "!=",
	OpAnd: "&&", OpOr: "||",
}

func (op BinOp) String() string {
	if s, ok := binOpNames[op]; ok {
		return s
	}
	return "?"
}

// Expression is the closed set of expression shapes the frontend can produce.
// Like Statement, the interface is sealed so type switches are exhaustive.
type Expression interface {
	isExpression()
}

// ExprID is a reference to a bound name.
type ExprID struct {
	Name string
}

// ExprNumber is an integer literal. The language has arbitrary-precision
// integers, hence the big.Int representation.
type ExprNumber struct {
	Value *big.Int
}

// ExprBinary is a binary operation.
type ExprBinary struct {
	Op    BinOp
	Left  Expression
	Right Expression
}

// ExprStaticCall is a call to a free function, e.g. now() or require(...).
type ExprStaticCall struct {
	Func string
	Args []Expression
}

// ExprMethodCall is a call to a method on a receiver expression, e.g.
// self.forward(...).
type ExprMethodCall struct {
	Recv   Expression
	Method string
	Args   []Expression
}

func (*ExprID) isExpression()         {}
func (*ExprNumber) isExpression()     {}
func (*ExprBinary) isExpression()     {}
func (*ExprStaticCall) isExpression() {}
func (*ExprMethodCall) isExpression() {}
