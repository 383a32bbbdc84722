// Package main provides the entry point for the pcb-netlist command.
package main

import (
	"log"

	"pcb-netlist/cmd"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cmd.Execute()
}
