// Package metrics provides an observability framework for ops adapter metrics.
//
// # Design Philosophy
//
// This package implements the Null Object pattern to enable metrics collection
// without requiring explicit nil checks throughout the codebase. By default,
// all components use NoopRecorder which implements the Recorder interface with
// no-op methods that inline to nothing at compile time.
//
// # Architecture
//
// The metrics system has three components:
//
//  1. Recorder interface - Defines all metrics operations
//  2. NoopRecorder - Default implementation that does nothing (zero overhead)
//  3. PrometheusRecorder - Registers and forwards to a Prometheus registry
//
// # Usage Pattern
//
// Components receive a Recorder through dependency injection:
//
//	type Fetcher struct {
//	    recorder metrics.Recorder
//	}
//
//	func NewFetcher() *Fetcher {
//	    return &Fetcher{
//	        recorder: metrics.NoopRecorder{}, // Default: no metrics
//	    }
//	}
//
// # Activation
//
// The serve command builds a PrometheusRecorder and exposes the registry on
// /metrics; one-shot CLI commands keep the NoopRecorder. Swapping the
// implementation requires no changes in the recording call sites.
package metrics
