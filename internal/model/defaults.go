package model

import "time"

// Shared defaults used by the sampler, the dashboard and the CLI entrypoint.
const (
	DefaultSampleInterval = 750 * time.Millisecond

	// Window capacities in samples.
	DefaultTotalCapacity = 120
	DefaultTileCapacity  = 60
	DefaultTempCapacity  = 30

	// Buffers start full of these so charts have a stable shape at launch.
	// TempPrefill is 40°C in °F, the unit temperature series are stored in.
	LoadPrefill = 0.0
	TempPrefill = 40.0*9/5 + 32

	// DefaultTileWidth is the nominal width of one per-core tile.
	DefaultTileWidth = 320

	DefaultFailureThreshold   = 3
	DefaultTopologyCheckEvery = 40

	// Adaptive axis scaling.
	AxisSmoothing = 0.20
	AxisPadding   = 5.0
	AxisMinSpan   = 10.0
)
