// The main package for the xpath-scraper executable.
package main

import (
	"github.com/JakeFAU/xpath-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
