// The main package for the showcrawl executable.
package main

import (
	_ "time/tzdata"

	"github.com/JakeFAU/showcrawl/cmd"
)

func main() {
	cmd.Execute()
}
