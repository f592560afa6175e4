// Package charging implements the simple charging strategy: every vehicle is
// plugged in right after its last work slot and charges at the plug power
// until the energy it used for work has been replenished or the day ends.
//
// Vehicles are scheduled independently of each other; no station capacity
// limit is applied. The resulting ledger, its totals and the per-slot power
// profile are the inputs of the comparison against optimized scenarios.
package charging
