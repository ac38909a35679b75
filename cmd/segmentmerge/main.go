// Command segmentmerge merges two or more on-disk segment directories
// into one, using the merge/logging settings from a config file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/soltixdb/segmentmerge/internal/adapter"
	"github.com/soltixdb/segmentmerge/internal/config"
	"github.com/soltixdb/segmentmerge/internal/driver"
	"github.com/soltixdb/segmentmerge/internal/logging"
	"github.com/soltixdb/segmentmerge/internal/progress"
	"github.com/soltixdb/segmentmerge/internal/segment"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	inputDirs := flag.String("inputs", "", "Comma-separated list of input segment directories")
	outDir := flag.String("out", "", "Output segment directory (must not exist)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	dirs := strings.Split(*inputDirs, ",")
	if *inputDirs == "" || len(dirs) < 1 || *outDir == "" {
		logger.Fatal("usage: segmentmerge -inputs <dir1,dir2,...> -out <dir> [-config <path>]")
	}

	inputs := make([]adapter.IndexableAdapter, 0, len(dirs))
	for _, d := range dirs {
		in, err := segment.OpenAdapter(strings.TrimSpace(d))
		if err != nil {
			logger.Fatal("failed to open input segment", "dir", d, "error", err)
		}
		inputs = append(inputs, in)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("failed to create output directory", "dir", *outDir, "error", err)
	}

	spec := segment.IndexSpec{}
	result, err := driver.Build(inputs, spec, spec, &cfg.Merge, *outDir, progress.NewLoggingIndicator(logger))
	if err != nil {
		logger.Fatal("merge failed", "error", err)
	}

	logger.Info("merge finished",
		"outDir", result.OutDir,
		"rows", result.RowCount,
		"dimensions", len(result.Dimensions),
		"metrics", len(result.Metrics),
	)
}
