//go:build !bloat_demo

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "enable: -tags bloat_demo")
	os.Exit(2)
}
