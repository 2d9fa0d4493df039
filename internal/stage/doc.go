// Package stage owns the stage contract.
//
// Ownership boundary:
// - the Stage interface and its embeddable defaults
// - swap strategies (how many ticks an attach/detach transition may span)
// - attach-time dependency resolution by stage type
//
// Stages are units of orchestrated, attachable behavior. The scheduler in
// internal/scheduler drives their lifecycle; nothing in this package mutates
// scheduler state directly.
package stage
