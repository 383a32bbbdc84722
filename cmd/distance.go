package cmd

import (
	"fmt"
	"math"

	"pcb-netlist/internal/artwork"

	"github.com/spf13/cobra"
)

var distanceCmd = &cobra.Command{
	Use:   "distance <project> <id> <id>",
	Short: "Print the clearance between two primitives",
	Args:  cobra.ExactArgs(3),
	RunE:  runDistance,
}

func init() {
	rootCmd.AddCommand(distanceCmd)
}

func runDistance(cmd *cobra.Command, args []string) error {
	s, err := openProject(args[0])
	if err != nil {
		return err
	}
	a, ok := s.Artwork.Get(args[1])
	if !ok {
		return fmt.Errorf("no primitive %q", args[1])
	}
	b, ok := s.Artwork.Get(args[2])
	if !ok {
		return fmt.Errorf("no primitive %q", args[2])
	}

	d := artwork.Distance(a, b)
	out := cmd.OutOrStdout()
	switch {
	case math.IsInf(d, 1):
		fmt.Fprintf(out, "%s %s: no shared layer\n", a.GeomID(), b.GeomID())
	case d <= 0:
		fmt.Fprintf(out, "%s %s: touching (%.6f)\n", a.GeomID(), b.GeomID(), d)
	default:
		fmt.Fprintf(out, "%s %s: %.6f apart\n", a.GeomID(), b.GeomID(), d)
	}
	return nil
}
