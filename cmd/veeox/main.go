// Command veeox serves the veeox HTTP toolkit and reports its type names.
package main

import "github.com/veeox/veeox/internal/cli"

func main() {
	cli.Execute()
}
