package topo

import "errors"

// Error kinds per spec.md §7. Expected outcomes (stale LSA, unroutable
// datagram) are never errors — only the four "fail at call site" /
// "fatal, abort the simulation" kinds are.
var (
	// ErrInvalidVertex: adding/removing a nil vertex.
	ErrInvalidVertex = errors.New("warp: invalid (nil) vertex")
	// ErrNotAdjacent: asked a link for a node that isn't one of its endpoints.
	ErrNotAdjacent = errors.New("warp: node is not adjacent to this link")
	// ErrInvariantViolation: logic bug, e.g. owner missing from its own graph.
	ErrInvariantViolation = errors.New("warp: routing invariant violated")
	// ErrBroadcastNextHop: next_hop called on a destination-less datagram.
	ErrBroadcastNextHop = errors.New("warp: next_hop called on a datagram with no destination")
)
