// Package config provides configuration structures and utilities for SAM-Radar.
// It defines the scan options (source limits, concurrency, timeouts), the
// optional integrations (proxy, cache, notifications, history database) and
// the .samradar file that carries alias overrides and a domain-priority list.
//
// A Config is built once by the surrounding application (CLI or HTTP API),
// validated, and then passed by value of pointer into the scan pipeline.
// Nothing in the pipeline mutates it.
package config
