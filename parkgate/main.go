// Command parkgate runs the parking gate controller against stimulus scripts.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/parkgate/parkgate/cmd"
)

func main() {
	atexit.Exit(cmd.Execute())
}
