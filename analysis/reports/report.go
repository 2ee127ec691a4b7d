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

// Package reports aggregates detector findings into a diagnostics report with
// a deterministic ordering.
package reports

import (
	"fmt"
	"io"
	"sort"

	"github.com/siftlabs/sift/analysis/lang"
	"github.com/siftlabs/sift/internal/formatutil"
)

// Severity ranks how much attention a finding deserves.
type Severity int

const (
	Info Severity = iota
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	default:
		return "INFO"
	}
}

// Warning is one finding produced by a detector.
type Warning struct {
	// Detector is the name of the detector that produced the finding.
	Detector string

	// Severity ranks the finding.
	Severity Severity

	// Msg is the human-readable description.
	Msg string

	// Loc is the source location the finding refers to.
	Loc lang.SrcLoc
}

// String renders the warning as one report line. The file name comes from an
// untrusted frontend dump, so escape sequences in it are spelled out.
func (w Warning) String() string {
	return fmt.Sprintf("%s:%d:%d: [%s] %s (%s)",
		formatutil.Sanitize(w.Loc.File), w.Loc.Line, w.Loc.Col, w.Severity, w.Msg, w.Detector)
}

// Report is the aggregate of all warnings of one analysis run.
type Report struct {
	warnings []Warning
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends warnings to the report.
func (r *Report) Add(ws ...Warning) {
	r.warnings = append(r.warnings, ws...)
}

// Warnings returns the warnings sorted by file, line, column, then detector
// name, so the report is stable regardless of detector execution order.
func (r *Report) Warnings() []Warning {
	sorted := make([]Warning, len(r.warnings))
	copy(sorted, r.warnings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Loc.File != b.Loc.File {
			return a.Loc.File < b.Loc.File
		}
		if a.Loc.Line != b.Loc.Line {
			return a.Loc.Line < b.Loc.Line
		}
		if a.Loc.Col != b.Loc.Col {
			return a.Loc.Col < b.Loc.Col
		}
		return a.Detector < b.Detector
	})
	return sorted
}

// Len returns the number of warnings in the report.
func (r *Report) Len() int {
	return len(r.warnings)
}

// CountAtLeast returns the number of warnings with severity >= s.
func (r *Report) CountAtLeast(s Severity) int {
	n := 0
	for _, w := range r.warnings {
		if w.Severity >= s {
			n++
		}
	}
	return n
}

// Render writes the report to w, one warning per line, colorized when
// colorize is true and stdout is a terminal.
func (r *Report) Render(w io.Writer, colorize bool) {
	paint := func(s Severity, text string) string {
		if !colorize {
			return text
		}
		switch s {
		case Critical, High:
			return formatutil.Red(text)
		case Medium:
			return formatutil.Yellow(text)
		default:
			return formatutil.Faint(text)
		}
	}
	for _, warning := range r.Warnings() {
		fmt.Fprintln(w, paint(warning.Severity, warning.String()))
	}
	if r.Len() == 0 {
		msg := "no issues found"
		if colorize {
			msg = formatutil.Green(msg)
		}
		fmt.Fprintln(w, msg)
	}
}
