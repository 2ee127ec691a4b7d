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

package detectors

import (
	"fmt"

	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/dataflow"
	"github.com/siftlabs/sift/analysis/intervals"
	"github.com/siftlabs/sift/analysis/lang"
	"github.com/siftlabs/sift/analysis/reports"
)

// Env maps variable names to the interval of values they may hold. A missing
// name means no value has reached the variable yet (the empty interval, the
// pointwise bottom); evaluation propagates that emptiness, which keeps the
// transfer function monotone and stays silent on variables the analysis knows
// nothing about, such as parameters.
type Env = map[string]intervals.Interval

// envLattice is the pointwise lift of the interval lattice to environments.
type envLattice struct{}

func (envLattice) Bottom() Env {
	return Env{}
}

func (envLattice) Join(a, b Env) Env {
	out := make(Env, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if cur, ok := out[k]; ok {
			out[k] = cur.Join(v)
		} else {
			out[k] = v
		}
	}
	return out
}

func (envLattice) Leq(a, b Env) bool {
	for k, v := range a {
		bv, ok := b[k]
		if !ok {
			if !v.IsEmpty() {
				return false
			}
			continue
		}
		if !v.Leq(bv) {
			return false
		}
	}
	return true
}

// DivByZero flags divisions whose divisor interval provably contains zero.
// It runs a forward range analysis per function: let and assign statements
// update the environment with the interval of their right-hand side, and
// every division site is checked against the environment reaching it.
type DivByZero struct{}

// Name implements Detector.
func (*DivByZero) Name() string { return "divide-by-zero" }

// Check implements Detector.
func (d *DivByZero) Check(cu *cfg.CompilationUnit, conf *config.Config, logger *config.LogGroup) []reports.Warning {
	var warnings []reports.Warning
	cu.ForEachCfg(func(g *cfg.Cfg) {
		logger.Tracef("%s: analyzing %s", d.Name(), g.Name)
		warnings = append(warnings, d.checkCfg(cu, g, conf, logger)...)
	}, conf.IncludeStdlib)
	return warnings
}

func (d *DivByZero) checkCfg(cu *cfg.CompilationUnit, g *cfg.Cfg, conf *config.Config, logger *config.LogGroup) []reports.Warning {
	lat := envLattice{}
	res, err := solveWithin[Env](conf, cu, g, dataflow.TransferFunc[Env](rangeTransfer), lat, dataflow.Forward)
	if err != nil {
		logger.Errorf("%s: %s: %s", d.Name(), g.Name, err)
		return nil
	}

	var warnings []reports.Warning
	for _, block := range g.Blocks() {
		env := lat.Bottom()
		for _, p := range block.Preds {
			if s, ok := res.GetState(p); ok {
				env = lat.Join(env, s)
			}
		}
		for _, id := range block.Stmts {
			stmt, ok := cu.Ast.Statement(id)
			if !ok {
				continue
			}
			if e := lang.ExprOf(stmt); e != nil {
				lang.WalkExpr(e, func(sub lang.Expression) {
					bin, isBin := sub.(*lang.ExprBinary)
					if !isBin || (bin.Op != lang.OpDiv && bin.Op != lang.OpMod) {
						return
					}
					divisor := evalRange(env, bin.Right)
					if divisor.ContainsZero() && !divisor.IsFull() {
						warnings = append(warnings, reports.Warning{
							Detector: d.Name(),
							Severity: reports.High,
							Msg:      fmt.Sprintf("divisor may be zero: its value range is %v", divisor),
							Loc:      stmt.Loc(),
						})
					}
				})
			}
			env = rangeTransfer(env, block, stmt)
		}
	}
	return warnings
}

// rangeTransfer updates the environment at let and assign statements and
// leaves it unchanged everywhere else.
func rangeTransfer(in Env, _ *cfg.BasicBlock, stmt lang.Statement) Env {
	var name string
	var value lang.Expression
	switch s := stmt.(type) {
	case *lang.StmtLet:
		name, value = s.Name, s.Init
	case *lang.StmtAssign:
		name, value = s.Target, s.Value
	default:
		return in
	}
	out := make(Env, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	out[name] = evalRange(in, value)
	return out
}

// evalRange computes the interval of an expression under env. Every operator
// uses exact interval arithmetic; a division by a zero-containing interval
// falls back to the unbounded interval rather than failing the analysis.
func evalRange(env Env, e lang.Expression) intervals.Interval {
	switch x := e.(type) {
	case *lang.ExprNumber:
		return intervals.FromNum(intervals.NumBig(x.Value))
	case *lang.ExprID:
		if iv, ok := env[x.Name]; ok {
			return iv
		}
		return intervals.Empty()
	case *lang.ExprBinary:
		l := evalRange(env, x.Left)
		r := evalRange(env, x.Right)
		switch x.Op {
		case lang.OpAdd:
			return l.Plus(r)
		case lang.OpSub:
			return l.Minus(r)
		case lang.OpMul:
			return l.Times(r)
		case lang.OpDiv:
			q, err := l.Div(r)
			if err != nil {
				return intervals.Full()
			}
			return q
		case lang.OpEq:
			return l.Equals(r)
		case lang.OpLt, lang.OpLe, lang.OpGt, lang.OpGe, lang.OpNe, lang.OpAnd, lang.OpOr:
			return intervals.New(intervals.NumInt(0), intervals.NumInt(1))
		default:
			return intervals.Full()
		}
	default:
		return intervals.Full()
	}
}
