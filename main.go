// The main package for the venuescout executable.
package main

import (
	"github.com/venuescout/venuescout/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
