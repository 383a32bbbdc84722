package cmd

import (
	"fmt"
	"strconv"

	"pcb-netlist/internal/artwork"
	"pcb-netlist/pkg/geometry"

	"github.com/spf13/cobra"
)

var inspectNet string

var inspectCmd = &cobra.Command{
	Use:   "inspect <project> [x y]",
	Short: "Show project contents, the primitives at a point, or one net",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 3 {
			return fmt.Errorf("accepts a project and an optional x y point, received %d args", len(args))
		}
		return nil
	},
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectNet, "net", "n", "", "List the members of the named net")
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	s, err := openProject(args[0])
	if err != nil {
		return err
	}

	if inspectNet != "" {
		if err := s.RebuildConnectivity(cmd.Context(), nil); err != nil {
			return err
		}
		n := s.Artwork.NetByName(inspectNet)
		if n == nil {
			return fmt.Errorf("no net named %q", inspectNet)
		}
		fmt.Fprintf(out, "%s (%d members)\n", n, n.Len())
		for k := artwork.Kind(0); k < artwork.NumKinds; k++ {
			elems := n.ElementsOfKind(k)
			if len(elems) == 0 {
				continue
			}
			fmt.Fprintf(out, "  %s (%d)\n", k, len(elems))
			for _, e := range elems {
				g, _ := s.Artwork.Get(e.ID)
				fmt.Fprintf(out, "    %v\n", g)
			}
		}
		return nil
	}

	if len(args) == 3 {
		x, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("x: %w", err)
		}
		y, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("y: %w", err)
		}
		p := geometry.Point2D{X: x, Y: y}
		hits := s.Artwork.HitTestAll(p)
		if len(hits) == 0 {
			fmt.Fprintf(out, "nothing at (%g, %g)\n", x, y)
			return nil
		}
		top := s.Artwork.HitTest(p)
		for _, g := range hits {
			mark := " "
			if g == top {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %v\n", mark, g)
		}
		return nil
	}

	fmt.Fprintf(out, "%s\n", s.ProjectName)
	fmt.Fprintf(out, "layers: %v\n", s.Stackup.Names())
	counts := s.Artwork.CountByKind()
	for k := artwork.Kind(0); k < artwork.NumKinds; k++ {
		fmt.Fprintf(out, "  %-8s %d\n", k, counts[k])
	}
	return nil
}
