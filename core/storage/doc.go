// Package storage models the energy-storage device of an electric race car.
//
// A Store converts a requested power into the power the device can actually
// deliver (Request) and integrates energy, heat and temperature from the
// previous step's finalized values (Settle). Batteries and super-capacitors
// share the thermal integration and differ only in their ClampPolicy.
//
// Steps are processed in increasing index order over a closed track: index 0
// is the seed and index -1 wraps to the last point. The model never aborts on
// over-temperature or over-limit conditions; those are reported as data via
// Report.
package storage
