// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"pcb-netlist/internal/artwork"
	"pcb-netlist/internal/board"
	"pcb-netlist/internal/config"
	"pcb-netlist/internal/features"
	"pcb-netlist/internal/netlist"
	"pcb-netlist/internal/project"
)

// State holds the application state: the loaded project, its stackup and
// artwork, and the configuration.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	ProjectName string
	Modified    bool

	Config  *config.Config
	Stackup *board.Stackup
	Artwork *features.Artwork

	// Net names from the project file, applied after the first rebuild
	pendingNames []project.NetName

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventModified
	EventArtworkChanged
	EventStackupChanged
	EventNetlistRebuilt
	EventRebuildCancelled
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state with an empty two-layer board.
// A nil cfg selects the defaults.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &State{
		Config:    cfg,
		Artwork:   features.NewArtwork(),
		listeners: make(map[EventType][]EventListener),
	}
	s.setStackup(board.TwoLayer())
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// setStackup makes st the current stackup. Changes to a stackup that has
// since been replaced are ignored.
func (s *State) setStackup(st *board.Stackup) {
	st.OnChange(func(c board.Change) {
		s.mu.RLock()
		current := s.Stackup == st
		s.mu.RUnlock()
		if !current {
			return
		}
		s.Emit(EventStackupChanged, c)
		s.SetModified(true)
	})
	s.mu.Lock()
	s.Stackup = st
	s.mu.Unlock()
}

// LoadProject loads a project from the specified path, replacing the
// current stackup and artwork.
func (s *State) LoadProject(path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}
	st, err := proj.Stackup()
	if err != nil {
		return fmt.Errorf("project %s: %w", path, err)
	}
	geoms, err := proj.Resolve(st)
	if err != nil {
		return fmt.Errorf("project %s: %w", path, err)
	}

	art := features.NewArtwork()
	if err := art.AddAll(geoms); err != nil {
		return fmt.Errorf("project %s: %w", path, err)
	}

	s.setStackup(st)
	s.mu.Lock()
	s.ProjectPath = path
	s.ProjectName = proj.Name
	s.Modified = false
	s.Artwork = art
	s.pendingNames = proj.NetNames
	s.mu.Unlock()

	log.Printf("Project: loaded %s (%d layers, %d primitives)", path, st.Len(), len(geoms))
	s.Emit(EventProjectLoaded, path)
	return nil
}

// SaveProject saves the stackup, artwork and user net names to path.
func (s *State) SaveProject(path string) error {
	s.mu.RLock()
	name, st, art := s.ProjectName, s.Stackup, s.Artwork
	pending := s.pendingNames
	s.mu.RUnlock()

	proj, err := project.FromArtwork(name, st, art.All(), art.Nets())
	if err != nil {
		return err
	}
	if art.Partition() == nil {
		// Never rebuilt; keep the names we were given.
		proj.NetNames = pending
	}
	if err := proj.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}

// AddGeom adds a primitive to the artwork.
func (s *State) AddGeom(g artwork.Geom) error {
	if err := s.artwork().Add(g); err != nil {
		return err
	}
	s.Emit(EventArtworkChanged, g.GeomID())
	s.SetModified(true)
	return nil
}

// RemoveGeom removes a primitive from the artwork.
func (s *State) RemoveGeom(id string) bool {
	if !s.artwork().Remove(id) {
		return false
	}
	s.Emit(EventArtworkChanged, id)
	s.SetModified(true)
	return true
}

func (s *State) artwork() *features.Artwork {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Artwork
}

// Builder returns a net builder configured from the current config.
func (s *State) Builder() *netlist.Builder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return netlist.NewBuilder(s.Config.Connectivity)
}

// RebuildConnectivity recomputes the nets. progress may be nil. On
// cancellation the previous nets stay in place and EventRebuildCancelled
// is emitted; on success EventNetlistRebuilt carries the new partition.
func (s *State) RebuildConnectivity(ctx context.Context, progress netlist.ProgressFunc) error {
	s.mu.RLock()
	cfg := *s.Config
	art := s.Artwork
	s.mu.RUnlock()

	if cfg.Log.Verbose {
		progress = logProgress(progress, cfg.Connectivity.ProgressEvery)
	}

	err := art.RebuildConnectivity(ctx, netlist.NewBuilder(cfg.Connectivity), progress)
	if errors.Is(err, netlist.ErrCancelled) {
		s.Emit(EventRebuildCancelled, err)
		return err
	}
	if err != nil {
		return err
	}

	s.applyPendingNames(art)
	s.Emit(EventNetlistRebuilt, art.Partition())
	return nil
}

func (s *State) applyPendingNames(art *features.Artwork) {
	s.mu.Lock()
	pending := s.pendingNames
	s.pendingNames = nil
	s.mu.Unlock()

	for _, nn := range pending {
		if err := art.NameNetOf(nn.Member, nn.Name, nn.Class); err != nil {
			log.Printf("Project: net name %q not applied: %v", nn.Name, err)
		}
	}
}

// logProgress wraps progress with a log line every n primitives.
func logProgress(progress netlist.ProgressFunc, every int) netlist.ProgressFunc {
	if every < 1 {
		every = 1
	}
	return func(current, total int) error {
		if current%every == 0 || current == total {
			log.Printf("Connectivity: %d/%d primitives", current, total)
		}
		if progress != nil {
			return progress(current, total)
		}
		return nil
	}
}
