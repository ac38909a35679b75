package utils

import "time"

// =============================================================================
// Container (smoosh) Constants
// =============================================================================

const (
	// DefaultMaxPhysicalFileSize is the default cap in bytes on a single
	// container file before the writer rolls over to the next one.
	DefaultMaxPhysicalFileSize = 2 * 1024 * 1024 * 1024

	// ContainerDirectoryFileName is the name of the in-container directory
	// manifest entry, always written last among the container's files.
	ContainerDirectoryFileName = "meta.smoosh"

	// ContainerFileNamePattern is the printf pattern used to name
	// sequential container data files.
	ContainerFileNamePattern = "%05d.smoosh"
)

// =============================================================================
// Segment Layout Constants
// =============================================================================

const (
	// SegmentVersion is the on-disk format version written to version.bin.
	SegmentVersion int32 = 9

	// IndexFileName is the descriptor listing dimension and metric column
	// names for the segment.
	IndexFileName = "index.drd"

	// MetadataFileName holds optional per-segment metadata (rollup flag,
	// aggregator specs, query granularity, ingestion timestamp).
	MetadataFileName = "metadata.drd"

	// VersionFileName holds the 4-byte big-endian segment format version.
	VersionFileName = "version.bin"

	// FactoryFileName holds the JSON-encoded segmentizer (loader)
	// descriptor; the default is {"type":"mmap"}.
	FactoryFileName = "factory.json"
)

// =============================================================================
// Multi-Phase Driver Constants
// =============================================================================

const (
	// DefaultMaxColumnsToMerge is the per-phase input cap when the caller
	// leaves it unset; 0 means no cap, so every input is merged in a
	// single phase.
	DefaultMaxColumnsToMerge = 0

	// MinInputsPerPhase is the floor on how many adapters a merge phase
	// accumulates before the driver closes it out; a smaller cap is
	// raised to this floor.
	MinInputsPerPhase = 2

	// TempDirPrefix names the per-phase scratch directories the
	// multi-phase driver creates under the caller's output directory.
	TempDirPrefix = ".tmp-merge-"
)

// =============================================================================
// Dictionary and Bitmap Constants
// =============================================================================

const (
	// LinearScanDictionaryThreshold is the dictionary size up to which a
	// linear scan is used instead of a hash map lookup. internal/dimension's
	// Dictionary uses its own linearScanThreshold of the same value and
	// does not read this constant.
	LinearScanDictionaryThreshold = 32

	// InvalidRow is the sentinel stored in a row-number conversion buffer
	// for an input row that rollup folded into another output row.
	InvalidRow = -1
)

// =============================================================================
// Retry and Backoff Constants
// =============================================================================

const (
	// DefaultMaxRetries is a retry count for container file operations.
	// No package reads it: container reads and writes are attempted once
	// and a failure is returned as is.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is a backoff duration between retries; like
	// DefaultMaxRetries, no package reads it.
	DefaultRetryBackoff = 100 * time.Millisecond
)
