// Package driver implements the multi-phase merge driver: when the
// input count exceeds the configured per-phase cap, inputs are merged in
// tiers, each tier's output reopened as the next tier's input, until a
// single output remains and is promoted to the caller's directory.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/soltixdb/segmentmerge/internal/adapter"
	"github.com/soltixdb/segmentmerge/internal/config"
	mergeerrors "github.com/soltixdb/segmentmerge/internal/errors"
	"github.com/soltixdb/segmentmerge/internal/logging"
	"github.com/soltixdb/segmentmerge/internal/progress"
	"github.com/soltixdb/segmentmerge/internal/segment"
	"github.com/soltixdb/segmentmerge/internal/utils"
)

// Build runs the full merge: partitions inputs into phases bounded by
// cfg.EffectiveMaxColumnsToMerge, merges each phase with the intermediate
// spec, reopens each phase's output as the next tier's input, and
// repeats until one output remains, which is promoted to outDir using
// finalSpec. outDir must already exist and be empty.
//
// Every temporary phase directory is created under outDir, named
// ".tmp-merge-<uuid>", and removed on every exit path, success or
// failure.
func Build(inputs []adapter.IndexableAdapter, intermediateSpec, finalSpec segment.IndexSpec, cfg *config.MergeConfig, outDir string, indicator progress.Indicator) (*segment.Result, error) {
	if len(inputs) == 0 {
		return nil, mergeerrors.InvalidInput("driver.Build requires at least one input", nil)
	}
	if indicator == nil {
		indicator = progress.NoopIndicator{}
	}

	ctx := logging.WithOperationID(context.Background(), uuid.New().String())

	var tmpDirs []string
	cleanup := func() {
		for _, d := range tmpDirs {
			if err := os.RemoveAll(d); err != nil {
				logging.WarnCtx(ctx, "failed to remove temporary phase directory", "dir", d, "error", err)
			}
		}
	}
	defer cleanup()

	tier := inputs
	tierNum := 0
	for len(tier) > 1 {
		phases := partitionIntoPhases(tier, cfg.EffectiveMaxColumnsToMerge())
		tierCtx := logging.WithPhaseID(ctx, fmt.Sprintf("tier=%d", tierNum))
		logging.InfoCtx(tierCtx, "merge tier starting", "tier", tierNum, "inputs", len(tier), "phases", len(phases))

		next := make([]adapter.IndexableAdapter, 0, len(phases))
		for phaseNum, phase := range phases {
			if len(phase) == 1 {
				next = append(next, phase[0])
				continue
			}

			phaseCtx := logging.WithPhaseID(ctx, fmt.Sprintf("tier=%d/phase=%d", tierNum, phaseNum))

			phaseDir, err := newPhaseDir(outDir)
			if err != nil {
				return nil, err
			}
			tmpDirs = append(tmpDirs, phaseDir)

			if _, err := segment.BuildSegment(phase, intermediateSpec, cfg, phaseDir, indicator); err != nil {
				logging.ErrorCtx(phaseCtx, "intermediate phase failed", "error", err)
				return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "merge intermediate phase", err)
			}
			reopened, err := segment.OpenAdapter(phaseDir)
			if err != nil {
				logging.ErrorCtx(phaseCtx, "reopening phase output failed", "error", err)
				return nil, mergeerrors.Wrap(mergeerrors.KindContainerIO, "reopen intermediate phase output", err)
			}
			logging.DebugCtx(phaseCtx, "phase output reopened", "dir", phaseDir, "rows", reopened.NumRows())
			next = append(next, reopened)
		}

		tier = next
		tierNum++
	}

	result, err := segment.BuildSegment(tier, finalSpec, cfg, outDir, indicator)
	if err != nil {
		return nil, err
	}

	logging.InfoCtx(ctx, "merge complete", "tiers", tierNum, "rows", result.RowCount, "outDir", outDir)
	return result, nil
}

// partitionIntoPhases accumulates inputs into a phase until adding the
// next one would exceed cap, always keeping at least
// utils.MinInputsPerPhase inputs per phase (a cap below that floor is
// raised to it, so no input is left alone in a phase).
func partitionIntoPhases(inputs []adapter.IndexableAdapter, cap int) [][]adapter.IndexableAdapter {
	if cap <= 0 || len(inputs) <= cap {
		return [][]adapter.IndexableAdapter{inputs}
	}
	if cap < utils.MinInputsPerPhase {
		cap = utils.MinInputsPerPhase
	}

	var phases [][]adapter.IndexableAdapter
	i := 0
	for i < len(inputs) {
		end := i + cap
		if end > len(inputs) {
			end = len(inputs)
		}
		remaining := len(inputs) - end
		if remaining > 0 && remaining < utils.MinInputsPerPhase && end-i >= utils.MinInputsPerPhase {
			// Folding the remainder into its own phase would leave a
			// phase below the floor; pull it into this one instead.
			end = len(inputs)
		}
		phases = append(phases, inputs[i:end])
		i = end
	}
	return phases
}

func newPhaseDir(outDir string) (string, error) {
	dir := filepath.Join(outDir, utils.TempDirPrefix+uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", mergeerrors.Wrap(mergeerrors.KindContainerIO, "create temporary phase directory", err)
	}
	return dir, nil
}
