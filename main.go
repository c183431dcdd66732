// Command neuroplatform runs a discrete-time, message-driven spiking
// neural network simulator from the command line.
package main

import (
	"neuroplatform/cmd"
)

func main() {
	cmd.Execute()
}
