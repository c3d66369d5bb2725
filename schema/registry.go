package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dogmatiq/propertykit/fault"
)

// Registry is a collection of interfaces, keyed by name.
//
// The zero value is an empty registry. A Registry is not safe for concurrent
// mutation.
type Registry struct {
	interfaces map[string]*Interface
}

// Add adds an interface to the registry.
//
// It returns an error matching [fault.ErrInvalidArgument] if an interface with
// the same name and an equal or greater version is already registered. A newer
// version replaces an older one.
func (r *Registry) Add(i *Interface) error {
	if x, ok := r.interfaces[i.Name]; ok {
		if x.Major > i.Major || (x.Major == i.Major && x.Minor >= i.Minor) {
			return fault.InvalidArgument(
				"interface %q v%d.%d conflicts with registered v%d.%d",
				i.Name, i.Major, i.Minor, x.Major, x.Minor,
			)
		}
	}

	if r.interfaces == nil {
		r.interfaces = map[string]*Interface{}
	}

	r.interfaces[i.Name] = i
	return nil
}

// Lookup returns the interface with the given name.
func (r *Registry) Lookup(name string) (*Interface, bool) {
	i, ok := r.interfaces[name]
	return i, ok
}

// Len returns the number of registered interfaces.
func (r *Registry) Len() int {
	return len(r.interfaces)
}

// Names returns the names of the registered interfaces in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.interfaces))
	for n := range r.interfaces {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// LoadDir decodes every ".json", ".yaml" and ".yml" file in dir and adds the
// resulting interfaces to the registry. Sub-directories are not searched.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("unable to read interface directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}

		if err := r.loadFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) loadFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("unable to open interface definition: %w", err)
	}
	defer f.Close()

	i, err := Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(name), err)
	}

	return r.Add(i)
}
