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

// WalkExpr calls f on e and every sub-expression of e, in pre-order.
func WalkExpr(e Expression, f func(Expression)) {
	if e == nil {
		return
	}
	f(e)
	switch x := e.(type) {
	case *ExprID, *ExprNumber:
		// leaves
	case *ExprBinary:
		WalkExpr(x.Left, f)
		WalkExpr(x.Right, f)
	case *ExprStaticCall:
		for _, a := range x.Args {
			WalkExpr(a, f)
		}
	case *ExprMethodCall:
		WalkExpr(x.Recv, f)
		for _, a := range x.Args {
			WalkExpr(a, f)
		}
	}
}

// Idents returns the names of all identifiers referenced by e, in first-use
// order without duplicates.
func Idents(e Expression) []string {
	var names []string
	seen := map[string]bool{}
	WalkExpr(e, func(sub Expression) {
		if id, ok := sub.(*ExprID); ok && !seen[id.Name] {
			seen[id.Name] = true
			names = append(names, id.Name)
		}
	})
	return names
}

// HasStaticCall returns true when e contains a call to the free function fn.
func HasStaticCall(e Expression, fn string) bool {
	found := false
	WalkExpr(e, func(sub Expression) {
		if call, ok := sub.(*ExprStaticCall); ok && call.Func == fn {
			found = true
		}
	})
	return found
}

// Calls returns every call expression (static or method) contained in e.
func Calls(e Expression) []Expression {
	var calls []Expression
	WalkExpr(e, func(sub Expression) {
		switch sub.(type) {
		case *ExprStaticCall, *ExprMethodCall:
			calls = append(calls, sub)
		}
	})
	return calls
}

// ExprOf returns the top-level expression carried by a statement, or nil when
// the statement carries none (e.g. a bare return).
func ExprOf(stmt Statement) Expression {
	switch s := stmt.(type) {
	case *StmtLet:
		return s.Init
	case *StmtAssign:
		return s.Value
	case *StmtExpr:
		return s.X
	case *StmtReturn:
		return s.Value
	case *StmtCondition:
		return s.Cond
	}
	return nil
}
