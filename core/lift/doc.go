// Package lift holds the state machine of a single elevator car.
//
// A Car does not own any timer. Assign starts a trip and returns how long the
// car travels; each call to Advance completes the running phase and returns
// the next phase with its duration. The caller is expected to wait for that
// duration before advancing again:
//
//	idle -> moving -> doors_opening -> dwelling -> doors_closing -> idle
package lift
