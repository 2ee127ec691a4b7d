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

// sift: a static analyzer for smart contracts. It consumes the compiler
// frontend's IR dump and reports findings of the registered detectors.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/siftlabs/sift/analysis"
	"github.com/siftlabs/sift/analysis/config"
	"github.com/siftlabs/sift/analysis/detectors"
	"github.com/siftlabs/sift/analysis/loader"
	"github.com/siftlabs/sift/analysis/reports"
	"github.com/siftlabs/sift/internal/formatutil"
)

var (
	configPath = flag.String("config", "", "config file path")
	listFlag   = flag.Bool("list", false, "list the registered detectors and exit")
	statsFlag  = flag.Bool("stats", false, "print compilation unit statistics before analyzing")
)

const usage = ` Analyze a contract IR dump.
Usage:
    sift [options] <ir dump>
Examples:
% sift -config config.yaml contract.json
Run without a config to enable every detector with default settings.
`

func main() {
	flag.Parse()

	if *listFlag {
		for _, d := range detectors.All() {
			fmt.Println(d.Name())
		}
		return
	}

	if flag.NArg() != 1 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := doMain(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "sift: %s\n", err)
		os.Exit(1)
	}
}

func doMain(irPath string) error {
	conf := config.NewDefault()
	if *configPath != "" {
		config.SetGlobalConfig(*configPath)
		loaded, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		conf = loaded
	}
	logger := config.NewLogGroup(conf)

	logger.Infof(formatutil.Faint("Reading IR dump"))
	cu, err := loader.LoadFile(irPath, logger)
	if err != nil {
		return err
	}

	if *statsFlag {
		analysis.ComputeUnitStatistics(cu).Print(os.Stdout)
	}

	report, err := analysis.RunAnalysis(cu, conf, logger)
	if err != nil {
		return err
	}
	report.Render(os.Stdout, !conf.NoColor)

	if report.CountAtLeast(reports.High) > 0 {
		os.Exit(3)
	}
	return nil
}
