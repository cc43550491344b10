//go:build bloat_demo

// Command bloat-demo links the demo entry point into a binary so its size
// can be measured.
package main

import (
	"runtime"

	"github.com/veeox/veeox/demo"
)

func main() {
	run := demo.Run
	run()
	runtime.KeepAlive(run)
}
