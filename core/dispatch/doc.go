// Package dispatch assigns hall calls to the cars of an elevator bank.
//
// The Dispatcher owns every car and the queue of pending calls. Calls are
// served oldest first; for each one a CarSelector picks an idle car. The
// chosen car then runs its trip cycle on the dispatcher's clock and, once
// idle again, the queue is re-evaluated. All state changes happen under a
// single mutex so trip completions racing each other or a new call can
// never hand the same call or the same car out twice.
package dispatch
