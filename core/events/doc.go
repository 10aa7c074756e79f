// Package events defines the dispatcher events emitted on the event bus.
//
// Available event types:
//   - PhaseEvent: a car entered a new phase of its trip cycle
//   - CallEvent: a hall call was accepted, dropped as duplicate or rejected
package events
