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

// Package analysis contains the driver that runs detector passes over a
// compilation unit and collects their findings into a report.
package analysis

import (
	"fmt"
	"time"

	"github.com/siftlabs/sift/analysis/cfg"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/detectors"
	"github.com/siftlabs/sift/analysis/reports"
)

// RunAnalysis runs every detector enabled by the configuration over the
// compilation unit, sequentially and in registration order, and returns the
// aggregated report. Detectors only read the unit, so a failing pass cannot
// corrupt the input of the next one.
func RunAnalysis(cu *cfg.CompilationUnit, conf *config.Config, logger *config.LogGroup) (*reports.Report, error) {
	if cu == nil {
		return nil, fmt.Errorf("no compilation unit to analyze")
	}
	numFuncs := cfg.FoldCfgs(cu, 0, func(n int, _ *cfg.Cfg) int { return n + 1 }, true)
	logger.Infof("Starting analysis of %d functions ...", numFuncs)
	report := reports.NewReport()
	start := time.Now()
	for _, d := range detectors.All() {
		if !conf.DetectorEnabled(d.Name()) {
			logger.Debugf("Skipping disabled detector %s", d.Name())
			continue
		}
		dStart := time.Now()
		warnings := d.Check(cu, conf, logger)
		logger.Infof("%-28s | %3d findings | %.2f s", d.Name(), len(warnings), time.Since(dStart).Seconds())
		for _, w := range warnings {
			report.Add(w)
		}
	}
	logger.Infof("Analysis done (%.2f s).", time.Since(start).Seconds())
	return report, nil
}
