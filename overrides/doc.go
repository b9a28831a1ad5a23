// Package overrides stores operator-set variant overrides and experiment
// kill switches in Redis.
//
// Overrides pin a single subject to a chosen arm, which is useful when QA
// or support needs to reproduce what a specific user sees. Kill switches
// disable an experiment wholesale by routing every subject to the control
// arm. Both are written with a TTL so stale operator state ages out on its
// own.
package overrides
