// Package demo is the minimal entry point exercised by the benchmarks and
// the bloat-demo binary.
package demo

// Demo is the demo entry point
type Demo struct{}

// Run does nothing; it exists to be called
func (Demo) Run() {}

// Run runs a zero Demo
func Run() {
	Demo{}.Run()
}
