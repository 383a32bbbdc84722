package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"time"

	"pcb-netlist/internal/app"
	"pcb-netlist/internal/config"
	"pcb-netlist/internal/netlist"

	"github.com/spf13/cobra"
)

var (
	rebuildIndex    string
	rebuildCellSize float64
	rebuildWorkers  int
	rebuildJSON     bool
	rebuildCancelAt int
	rebuildSave     string
	rebuildWatch    bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <project>",
	Short: "Build the nets of a project",
	Long: `Build groups every primitive of the project into nets and prints them.
With --watch the project is rebuilt whenever the file changes; a rebuild
still in flight is cancelled first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)

	rebuildCmd.Flags().StringVar(&rebuildIndex, "index", "", "Spatial index: rtree, grid or brute (default from config)")
	rebuildCmd.Flags().Float64Var(&rebuildCellSize, "cell-size", 0, "Grid cell size (default from config)")
	rebuildCmd.Flags().IntVarP(&rebuildWorkers, "workers", "w", 0, "Worker goroutines (default from config)")
	rebuildCmd.Flags().BoolVar(&rebuildJSON, "json", false, "Print nets as JSON")
	rebuildCmd.Flags().IntVar(&rebuildCancelAt, "cancel-at", 0, "Cancel after this many primitives (for testing)")
	rebuildCmd.Flags().StringVarP(&rebuildSave, "save", "o", "", "Save the project with net names to this path")
	rebuildCmd.Flags().BoolVar(&rebuildWatch, "watch", false, "Rebuild when the project file changes")
}

// applyFlags overrides the connectivity config with any flags given.
func applyFlags(c *config.Connectivity) error {
	if rebuildIndex != "" {
		c.Index = rebuildIndex
	}
	if rebuildCellSize > 0 {
		c.CellSize = rebuildCellSize
	}
	if rebuildWorkers > 0 {
		c.Workers = rebuildWorkers
	}
	cfg := config.Config{Connectivity: *c}
	if err := cfg.Validate(); err != nil {
		return err
	}
	*c = cfg.Connectivity
	return nil
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if rebuildWatch {
		return watchRebuild(ctx, cmd.OutOrStdout(), args[0])
	}
	return rebuildOnce(ctx, cmd.OutOrStdout(), args[0])
}

func rebuildOnce(ctx context.Context, out io.Writer, path string) error {
	s, err := openProject(path)
	if err != nil {
		return err
	}
	if err := applyFlags(&s.Config.Connectivity); err != nil {
		return err
	}

	var progress netlist.ProgressFunc
	if rebuildCancelAt > 0 {
		progress = func(current, total int) error {
			if current >= rebuildCancelAt {
				return netlist.Cancel
			}
			return nil
		}
	}

	if err := s.RebuildConnectivity(ctx, progress); err != nil {
		return err
	}
	if err := printNets(out, s); err != nil {
		return err
	}
	if rebuildSave != "" {
		return s.SaveProject(rebuildSave)
	}
	return nil
}

func watchRebuild(ctx context.Context, out io.Writer, path string) error {
	w, err := app.NewFileWatcher(path, 250*time.Millisecond)
	if err != nil {
		return err
	}
	changes := make(chan struct{}, 1)
	w.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	w.Start()
	defer w.Stop()
	log.Printf("Watch: %s", w.Path())

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- rebuildOnce(runCtx, out, path) }()

		select {
		case err := <-done:
			cancel()
			if err != nil {
				log.Printf("Watch: rebuild failed: %v", err)
			}
			select {
			case <-changes:
			case <-ctx.Done():
				return nil
			}
		case <-changes:
			cancel()
			if err := <-done; errors.Is(err, netlist.ErrCancelled) {
				log.Printf("Watch: %s changed, restarting rebuild", path)
			}
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		}
	}
}

type netReport struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Class   string   `json:"class,omitempty"`
	Members []string `json:"members"`
}

type rebuildReport struct {
	Project string        `json:"project"`
	Nets    []netReport   `json:"nets"`
	Stats   netlist.Stats `json:"stats"`
}

func printNets(out io.Writer, s *app.State) error {
	part := s.Artwork.Partition()
	report := rebuildReport{Project: s.ProjectName, Stats: part.Stats}
	for _, n := range part.Nets() {
		members := n.Members()
		sort.Strings(members)
		report.Nets = append(report.Nets, netReport{ID: n.ID, Name: n.Name, Class: n.Class, Members: members})
	}

	if rebuildJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "%s: %d nets from %d primitives\n", report.Project, len(report.Nets), part.Stats.Primitives)
	fmt.Fprintf(out, "candidates %d, layer-pruned %d, already joined %d, intersections %d, %s\n",
		part.Stats.Candidates, part.Stats.LayerPruned, part.Stats.AlreadyJoined,
		part.Stats.Intersections, part.Stats.Elapsed.Round(time.Microsecond))
	for _, n := range report.Nets {
		fmt.Fprintf(out, "  %-12s %v\n", n.Name, n.Members)
	}
	return nil
}
