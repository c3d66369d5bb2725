// Package purge reconciles the properties held in a [property.Store] with the
// properties published during a session.
//
// At the start of each session a device announces the full set of properties
// it holds, so that the other party can discard any it no longer has. During
// the session a [Tracker] records the properties that have been published, and
// anything not seen by the end of the session can be purged from the store.
package purge

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/dogmatiq/propertykit/property"
	"github.com/dogmatiq/propertykit/schema"
)

// Key identifies a property.
type Key struct {
	Interface string
	Path      string
}

func (k Key) String() string {
	return k.Interface + k.Path
}

// Filter selects the interfaces whose properties are subject to purging.
type Filter func(iface string) bool

// All is a [Filter] that accepts every interface.
func All(string) bool {
	return true
}

// DeviceOwned returns a [Filter] that accepts the property interfaces in r
// that are owned by the device.
func DeviceOwned(r *schema.Registry) Filter {
	return owned(r, schema.DeviceOwned)
}

// ServerOwned returns a [Filter] that accepts the property interfaces in r
// that are owned by the server.
func ServerOwned(r *schema.Registry) Filter {
	return owned(r, schema.ServerOwned)
}

func owned(r *schema.Registry, o schema.Ownership) Filter {
	return func(name string) bool {
		i, ok := r.Lookup(name)
		return ok && i.IsProperties() && i.Ownership == o
	}
}

// List returns the keys of the properties in s that are accepted by filter,
// ordered by interface name and then path.
func List(ctx context.Context, s *property.Store, filter Filter) ([]Key, error) {
	var keys []Key

	if err := s.Range(
		ctx,
		func(_ context.Context, p property.Property) (bool, error) {
			if filter(p.Interface) {
				keys = append(keys, Key{p.Interface, p.Path})
			}
			return true, nil
		},
	); err != nil {
		return nil, err
	}

	slices.SortFunc(keys, func(a, b Key) int {
		if c := cmp.Compare(a.Interface, b.Interface); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})

	return keys, nil
}

// Encode returns the textual form of a list of property keys, as sent to
// announce the properties held by the device. Each key is rendered as the
// interface name immediately followed by the path, and keys are separated by
// semicolons.
func Encode(keys []Key) string {
	var b strings.Builder

	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k.Interface)
		b.WriteString(k.Path)
	}

	return b.String()
}
