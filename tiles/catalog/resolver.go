package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gridfall/server/internal/physics"
	"gridfall/server/tiles"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

// Entry is a resolved tile definition: the designer name, the assigned tile
// id and the collision mask applied to the grid.
type Entry struct {
	ID   int
	Name string
	Mask physics.EdgeMask
}

// Resolver parses designer-authored tile catalogs into an ordered entry
// list. Later sources append after earlier ones; ids follow file order
// starting at 1, matching the registration order of the tile manager.
type Resolver struct {
	mu      sync.RWMutex
	sources []source
	entries []Entry
	byName  map[string]int
}

// DefaultPaths returns the canonical catalog locations relative to the
// server module root.
func DefaultPaths() []string {
	return []string{filepath.Join("config", "tiles", "definitions.json")}
}

// Load constructs a Resolver backed by catalog file paths. Missing files
// are skipped so a bare checkout still starts.
func Load(paths ...string) (*Resolver, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return newResolver(sources...)
}

func newResolver(sources ...source) (*Resolver, error) {
	r := &Resolver{sources: append([]source(nil), sources...)}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses all catalog sources.
func (r *Resolver) Reload() error {
	if r == nil {
		return nil
	}
	var entries []Entry
	byName := make(map[string]int)

	for _, src := range r.sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("catalog: failed loading %s: %w", src.Path(), err)
		}
		documents, err := decodeEntries(data)
		if err != nil {
			return fmt.Errorf("catalog: failed parsing %s: %w", src.Path(), err)
		}
		for _, doc := range documents {
			name := strings.TrimSpace(doc.Name)
			if name == "" {
				return fmt.Errorf("catalog: entry missing name in %s", src.Path())
			}
			if _, dup := byName[name]; dup {
				return fmt.Errorf("catalog: duplicate tile %q in %s", name, src.Path())
			}
			entry := Entry{
				ID:   len(entries) + 1,
				Name: name,
				Mask: physics.EdgeMask{
					North: doc.Edges.North,
					East:  doc.Edges.East,
					South: doc.Edges.South,
					West:  doc.Edges.West,
				},
			}
			byName[name] = entry.ID
			entries = append(entries, entry)
		}
	}

	r.mu.Lock()
	r.entries = entries
	r.byName = byName
	r.mu.Unlock()
	return nil
}

// Entries returns the resolved tile definitions in id order.
func (r *Resolver) Entries() []Entry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries...)
}

// Lookup resolves a tile id by designer name.
func (r *Resolver) Lookup(name string) (int, bool) {
	if r == nil {
		return 0, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Apply registers every resolved tile with a fresh manager. The resulting
// ids match the Entry ids, so level data referencing catalog ids stays
// valid.
func (r *Resolver) Apply(tileSize int) (*tiles.Manager, error) {
	manager, err := tiles.NewManager(tileSize)
	if err != nil {
		return nil, err
	}
	for _, entry := range r.Entries() {
		maskIndex := manager.RegisterMask(entry.Mask)
		id, err := manager.RegisterTile(entry.Name, maskIndex)
		if err != nil {
			return nil, err
		}
		if id != entry.ID {
			return nil, fmt.Errorf("catalog: tile %q registered as id %d, catalog says %d", entry.Name, id, entry.ID)
		}
	}
	return manager, nil
}

func decodeEntries(data []byte) ([]EntryDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var entries []EntryDocument
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
