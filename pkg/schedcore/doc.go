// Package schedcore implements the core scheduling engine: computing the
// set of legal beginnings for an activity of a given duration within an
// entity's work hours (a bounded-knapsack variant), ranking those
// beginnings by how much they collide with incompatible activities, and
// searching for a placement of every unplaced activity in parallel.
//
// The package is deliberately narrow. It knows nothing about entities,
// groups, persistence, or user interfaces — those are the surrounding
// application's concern. schedcore only consumes the primitives
// defined in time.go (TimeInterval, grid-aligned minutes) and the
// Schedule/Activity-adjacent types in schedule.go, and exposes exactly the
// operations a caller needs to keep a Core in sync with changing
// participants, durations, and work hours, plus an on-demand
// autoinsertion search.
package schedcore
