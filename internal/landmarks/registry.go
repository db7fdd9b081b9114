// Package landmarks holds the per-region tables of anatomical landmarks that
// must be pinned, in order, on a radiograph.
//
// A Registry is built once at startup (from the embedded table, optionally
// extended by a YAML file) and is read-only afterwards, so it can be shared
// freely between sessions and goroutines.
package landmarks

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Region selects which landmark list applies to a session.
type Region string

// Built-in regions.
const (
	Spinal Region = "Spinal"
	Neck   Region = "Neck"
)

var (
	ErrUnknownRegion     = errors.New("unknown region")
	ErrEmptyRegion       = errors.New("region has no landmarks")
	ErrDuplicateLandmark = errors.New("duplicate landmark name")
	ErrNoRegions         = errors.New("registry has no regions")
)

//go:embed regions.yaml
var builtinYAML []byte

// Registry maps each region to its ordered landmark names. The order is the
// required pinning order.
type Registry struct {
	order   []Region
	entries map[Region][]string
}

type registryFile struct {
	Regions []struct {
		Name      string   `yaml:"name"`
		Landmarks []string `yaml:"landmarks"`
	} `yaml:"regions"`
}

// Builtin returns the registry compiled into the binary (Spinal, Neck).
func Builtin() *Registry {
	reg, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("landmarks: invalid builtin table: %v", err))
	}
	return reg
}

// Parse builds a registry from YAML of the form
//
//	regions:
//	  - name: Spinal
//	    landmarks: [L1 Spinous Process, ...]
func Parse(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse landmark registry: %w", err)
	}
	reg := &Registry{entries: make(map[Region][]string)}
	for _, r := range f.Regions {
		if err := reg.set(Region(r.Name), r.Landmarks); err != nil {
			return nil, err
		}
	}
	if len(reg.order) == 0 {
		return nil, ErrNoRegions
	}
	return reg, nil
}

// Load returns the builtin registry extended by the regions declared in the
// YAML file at path. A region already present is replaced in place; new
// regions are appended after the builtins.
func Load(path string) (*Registry, error) {
	reg := Builtin()
	if path == "" {
		return reg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read landmark registry: %w", err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, err
	}
	for _, region := range extra.order {
		if err := reg.set(region, extra.entries[region]); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (r *Registry) set(region Region, names []string) error {
	if region == "" {
		return fmt.Errorf("%w: empty region name", ErrUnknownRegion)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyRegion, region)
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %q in %s", ErrDuplicateLandmark, n, region)
		}
		seen[n] = struct{}{}
	}
	if _, ok := r.entries[region]; !ok {
		r.order = append(r.order, region)
	}
	r.entries[region] = append([]string(nil), names...)
	return nil
}

// Regions lists the regions in declaration order.
func (r *Registry) Regions() []Region {
	return append([]Region(nil), r.order...)
}

// Default is the first declared region.
func (r *Registry) Default() Region {
	return r.order[0]
}

// Has reports whether region is known.
func (r *Registry) Has(region Region) bool {
	_, ok := r.entries[region]
	return ok
}

// Names returns a copy of the ordered landmark names for region.
func (r *Registry) Names(region Region) ([]string, error) {
	names, ok := r.entries[region]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	return append([]string(nil), names...), nil
}

// Count is the number of landmarks required for region, or 0 if unknown.
func (r *Registry) Count(region Region) int {
	return len(r.entries[region])
}

// Name returns the landmark at index i of region.
func (r *Registry) Name(region Region, i int) (string, bool) {
	names := r.entries[region]
	if i < 0 || i >= len(names) {
		return "", false
	}
	return names[i], true
}
