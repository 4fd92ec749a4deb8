// Package metrics defines the sink interfaces used to observe sensitivity
// sweeps. Sinks record one event per evaluated scenario and, when they
// implement the optional recorder interfaces, sweep progress and the final
// summary. The factory helpers return a MultiSink automatically when multiple
// sinks are configured.
package metrics
