package plan

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/planpilot/planpilot/internal/errors"
)

// Paths describes where the plan files live. Either Unified is set (one file
// where every record declares its type), or all three split paths are set
// (one file per item type; the in-file type field is ignored).
type Paths struct {
	Epics   string `yaml:"epics,omitempty"`
	Stories string `yaml:"stories,omitempty"`
	Tasks   string `yaml:"tasks,omitempty"`
	Unified string `yaml:"unified,omitempty"`
}

// Split reports whether the paths describe the three-file layout
func (p Paths) Split() bool {
	return p.Unified == ""
}

// Validate checks that the paths describe exactly one of the two layouts
func (p Paths) Validate() error {
	if p.Unified != "" {
		if p.Epics != "" || p.Stories != "" || p.Tasks != "" {
			return fmt.Errorf("unified plan path cannot be combined with split paths")
		}
		return nil
	}
	if p.Epics == "" || p.Stories == "" || p.Tasks == "" {
		return fmt.Errorf("split layout requires epics, stories, and tasks paths")
	}
	return nil
}

// Repository defines the interface for loading Plan files.
// This interface enables dependency injection and makes testing easier.
type Repository interface {
	// Load reads and constructs a Plan from the configured paths
	Load(paths Paths) (*Plan, error)
}

// FileRepository implements Repository for file-based plans
type FileRepository struct{}

// NewFileRepository creates a new file-based plan repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads a Plan from YAML files. Any I/O, parse, or structural failure is
// wrapped into a single plan-load error carrying the failing file and reason.
func (r *FileRepository) Load(paths Paths) (*Plan, error) {
	if err := paths.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodePlanStructure, "invalid plan paths", err)
	}

	if !paths.Split() {
		items, err := readItemFile(paths.Unified)
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			if !item.Type.Valid() {
				return nil, errors.New(errors.ErrCodePlanStructure,
					fmt.Sprintf("load plan from %s: record %d (%s) has invalid type %q", paths.Unified, i, item.ID, string(item.Type)))
			}
		}
		return construct(paths.Unified, items)
	}

	var all []Item
	for _, role := range []struct {
		path string
		t    ItemType
	}{
		{paths.Epics, TypeEpic},
		{paths.Stories, TypeStory},
		{paths.Tasks, TypeTask},
	} {
		items, err := readItemFile(role.path)
		if err != nil {
			return nil, err
		}
		// The file role is authoritative; a type declared in the record
		// is ignored in split mode.
		for i := range items {
			items[i].Type = role.t
		}
		all = append(all, items...)
	}

	return construct(paths.Epics, all)
}

// readItemFile reads one YAML file holding a sequence of item records
func readItemFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewPlanNotFoundError(path)
		}
		return nil, errors.NewPlanLoadError(path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var items []Item
	if err := dec.Decode(&items); err != nil {
		if err == io.EOF {
			// Empty file loads as an empty slice
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodePlanParse, fmt.Sprintf("parse plan file %s", path), err)
	}

	return items, nil
}

func construct(path string, items []Item) (*Plan, error) {
	p, err := NewPlan(items)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePlanStructure, fmt.Sprintf("plan loaded from %s is malformed", path), err)
	}
	return p, nil
}

// Default instance for package-level functions
var defaultRepository = NewFileRepository()

// Load reads a Plan using the default repository.
// This is a convenience wrapper for callers that do not inject one.
func Load(paths Paths) (*Plan, error) {
	return defaultRepository.Load(paths)
}

// Compile-time verification that FileRepository implements Repository
var _ Repository = (*FileRepository)(nil)
