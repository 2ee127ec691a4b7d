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

package loader

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/siftlabs/sift/analysis/lang"
)

// The wire format of a frontend dump. Every statement and expression object
// carries a "kind" discriminator; numbers are decimal strings because the
// language has arbitrary-precision integers and float64 would silently lose
// digits.

type irProgram struct {
	Functions []irFunction `json:"functions"`
}

type irFunction struct {
	Name    string    `json:"name"`
	Origin  string    `json:"origin,omitempty"`
	Params  []string  `json:"params,omitempty"`
	Effects []string  `json:"effects,omitempty"`
	Entry   uint32    `json:"entry"`
	Blocks  []irBlock `json:"blocks"`
}

type irBlock struct {
	Idx   uint32            `json:"idx"`
	Kind  string            `json:"kind,omitempty"`
	Succs []uint32          `json:"succs,omitempty"`
	Stmts []json.RawMessage `json:"stmts,omitempty"`
}

type irLoc struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

func (l irLoc) srcLoc() lang.SrcLoc {
	return lang.SrcLoc{File: l.File, Line: l.Line, Col: l.Col}
}

// kindOf peeks at the discriminator without committing to a shape.
func kindOf(raw json.RawMessage) (string, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", err
	}
	if probe.Kind == "" {
		return "", fmt.Errorf("object has no \"kind\" field")
	}
	return probe.Kind, nil
}

// decodeStatement decodes one statement object, assigning it a fresh node id.
func decodeStatement(raw json.RawMessage, ids *lang.IDGenerator) (lang.Statement, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, fmt.Errorf("statement: %w", err)
	}
	switch kind {
	case "let":
		var s struct {
			Loc  irLoc           `json:"loc"`
			Name string          `json:"name"`
			Init json.RawMessage `json:"init"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		init, err := decodeExpression(s.Init)
		if err != nil {
			return nil, err
		}
		return &lang.StmtLet{Node: ids.Next(), Pos: s.Loc.srcLoc(), Name: s.Name, Init: init}, nil
	case "assign":
		var s struct {
			Loc    irLoc           `json:"loc"`
			Target string          `json:"target"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		value, err := decodeExpression(s.Value)
		if err != nil {
			return nil, err
		}
		return &lang.StmtAssign{Node: ids.Next(), Pos: s.Loc.srcLoc(), Target: s.Target, Value: value}, nil
	case "expr":
		var s struct {
			Loc irLoc           `json:"loc"`
			X   json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		x, err := decodeExpression(s.X)
		if err != nil {
			return nil, err
		}
		return &lang.StmtExpr{Node: ids.Next(), Pos: s.Loc.srcLoc(), X: x}, nil
	case "return":
		var s struct {
			Loc   irLoc           `json:"loc"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		var value lang.Expression
		if len(s.Value) > 0 {
			value, err = decodeExpression(s.Value)
			if err != nil {
				return nil, err
			}
		}
		return &lang.StmtReturn{Node: ids.Next(), Pos: s.Loc.srcLoc(), Value: value}, nil
	case "condition":
		var s struct {
			Loc  irLoc           `json:"loc"`
			Cond json.RawMessage `json:"cond"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		cond, err := decodeExpression(s.Cond)
		if err != nil {
			return nil, err
		}
		return &lang.StmtCondition{Node: ids.Next(), Pos: s.Loc.srcLoc(), Cond: cond}, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", kind)
	}
}

var binOps = map[string]lang.BinOp{
	"+": lang.OpAdd, "-": lang.OpSub, "*": lang.OpMul, "/": lang.OpDiv, "%": lang.OpMod,
	"<": lang.OpLt, "<=": lang.OpLe, ">": lang.OpGt, ">=": lang.OpGe,
	"==": lang.OpEq, "!=": lang.OpNe, "&&": lang.OpAnd, "||": lang.OpOr,
}

// decodeExpression decodes one expression object.
func decodeExpression(raw json.RawMessage) (lang.Expression, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("expression: missing object")
	}
	kind, err := kindOf(raw)
	if err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}
	switch kind {
	case "id":
		var e struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		return &lang.ExprID{Name: e.Name}, nil
	case "number":
		var e struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		v, ok := new(big.Int).SetString(e.Value, 10)
		if !ok {
			return nil, fmt.Errorf("number: %q is not a decimal integer", e.Value)
		}
		return &lang.ExprNumber{Value: v}, nil
	case "binary":
		var e struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		op, ok := binOps[e.Op]
		if !ok {
			return nil, fmt.Errorf("binary: unknown operator %q", e.Op)
		}
		left, err := decodeExpression(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(e.Right)
		if err != nil {
			return nil, err
		}
		return &lang.ExprBinary{Op: op, Left: left, Right: right}, nil
	case "static-call":
		var e struct {
			Func string            `json:"func"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		args, err := decodeExpressions(e.Args)
		if err != nil {
			return nil, err
		}
		return &lang.ExprStaticCall{Func: e.Func, Args: args}, nil
	case "method-call":
		var e struct {
			Recv   json.RawMessage   `json:"recv"`
			Method string            `json:"method"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		recv, err := decodeExpression(e.Recv)
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(e.Args)
		if err != nil {
			return nil, err
		}
		return &lang.ExprMethodCall{Recv: recv, Method: e.Method, Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", kind)
	}
}

func decodeExpressions(raws []json.RawMessage) ([]lang.Expression, error) {
	var exprs []lang.Expression
	for i, raw := range raws {
		e, err := decodeExpression(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}
