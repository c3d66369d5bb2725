package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/dogmatiq/propertykit/endpoint"
	"github.com/dogmatiq/propertykit/fault"
	. "github.com/dogmatiq/propertykit/schema"
	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	t.Run("it decodes a JSON interface definition", func(t *testing.T) {
		i, err := Decode(strings.NewReader(`{
			"interface_name": "org.example.Sensors",
			"version_major": 1,
			"version_minor": 2,
			"type": "properties",
			"ownership": "device",
			"mappings": [
				{ "endpoint": "/%{sensor_id}/name", "type": "string", "allow_unset": true }
			]
		}`))
		if err != nil {
			t.Fatal(err)
		}

		want := &Interface{
			Name:        "org.example.Sensors",
			Major:       1,
			Minor:       2,
			Type:        Properties,
			Ownership:   DeviceOwned,
			Aggregation: Individual,
			Mappings: []Mapping{
				{
					Endpoint:    "/%{sensor_id}/name",
					Type:        String,
					Reliability: Unreliable,
					AllowUnset:  true,
				},
			},
		}

		if diff := cmp.Diff(want, i); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("it decodes a YAML interface definition", func(t *testing.T) {
		i, err := Decode(strings.NewReader(`
interface_name: org.example.Readings
version_major: 2
type: datastream
ownership: server
aggregation: object
mappings:
  - endpoint: /%{sensor_id}/value
    type: doublearray
    reliability: unique
    explicit_timestamp: true
`))
		if err != nil {
			t.Fatal(err)
		}

		if i.Ownership != ServerOwned || i.Aggregation != Object || i.Type != Datastream {
			t.Fatalf("unexpected interface: %+v", i)
		}

		m := i.Mappings[0]
		if m.Type != DoubleArray || !m.Type.IsArray() || m.Reliability != Unique || !m.ExplicitTimestamp {
			t.Fatalf("unexpected mapping: %+v", m)
		}
	})

	cases := []struct {
		Name string
		Doc  string
	}{
		{"empty document", ``},
		{"missing name", `{"version_major": 1, "type": "properties", "ownership": "device", "mappings": [{"endpoint": "/a", "type": "string"}]}`},
		{"zero version", `{"interface_name": "a", "type": "properties", "ownership": "device", "mappings": [{"endpoint": "/a", "type": "string"}]}`},
		{"unknown type", `{"interface_name": "a", "version_major": 1, "type": "stream", "ownership": "device", "mappings": [{"endpoint": "/a", "type": "string"}]}`},
		{"unknown ownership", `{"interface_name": "a", "version_major": 1, "type": "properties", "ownership": "nobody", "mappings": [{"endpoint": "/a", "type": "string"}]}`},
		{"missing mappings", `{"interface_name": "a", "version_major": 1, "type": "properties", "ownership": "device"}`},
		{"malformed endpoint", `{"interface_name": "a", "version_major": 1, "type": "properties", "ownership": "device", "mappings": [{"endpoint": "a", "type": "string"}]}`},
		{"unknown mapping type", `{"interface_name": "a", "version_major": 1, "type": "properties", "ownership": "device", "mappings": [{"endpoint": "/a", "type": "float"}]}`},
	}

	for _, c := range cases {
		t.Run("it rejects a definition with "+c.Name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(c.Doc))
			if !errors.Is(err, fault.ErrInvalidArgument) {
				t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrInvalidArgument)
			}
		})
	}
}

func TestInterface_FindMapping(t *testing.T) {
	i := &Interface{
		Name: "org.example.Sensors",
		Mappings: []Mapping{
			{Endpoint: "/%{sensor_id}/name", Type: String},
			{Endpoint: "/%{sensor_id}/double_endpoint", Type: Double},
		},
	}

	t.Run("it returns the first matching mapping", func(t *testing.T) {
		m, ok, err := i.FindMapping(nil, "/sensor7/double_endpoint")
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected a mapping to match")
		}
		if m.Type != Double {
			t.Fatalf("unexpected mapping: %+v", m)
		}
		if n := m.ParameterCount(); n != 1 {
			t.Fatalf("unexpected parameter count: got %d, want 1", n)
		}
	})

	t.Run("it reports no match for an unknown path", func(t *testing.T) {
		_, ok, err := i.FindMapping(nil, "/sensor7/other")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("did not expect a mapping to match")
		}
	})

	t.Run("it uses the supplied validator", func(t *testing.T) {
		v, err := endpoint.NewValidator(endpoint.WithParameterGrammar(`^[0-9]+$`))
		if err != nil {
			t.Fatal(err)
		}

		_, ok, err := i.FindMapping(v, "/7/name")
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected a mapping to match")
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Run("it loads interface definitions from a directory", func(t *testing.T) {
		var r Registry
		if err := r.LoadDir("testdata"); err != nil {
			t.Fatal(err)
		}

		want := []string{
			"org.example.Readings",
			"org.example.Sensors",
			"org.example.Settings",
		}

		if diff := cmp.Diff(want, r.Names()); diff != "" {
			t.Fatal(diff)
		}

		i, ok := r.Lookup("org.example.Settings")
		if !ok {
			t.Fatal("expected interface to be registered")
		}
		if i.Ownership != ServerOwned || i.Minor != 1 {
			t.Fatalf("unexpected interface: %+v", i)
		}
	})

	t.Run("it replaces older versions", func(t *testing.T) {
		var r Registry
		if err := r.Add(&Interface{Name: "a", Major: 1}); err != nil {
			t.Fatal(err)
		}
		if err := r.Add(&Interface{Name: "a", Major: 1, Minor: 1}); err != nil {
			t.Fatal(err)
		}

		i, _ := r.Lookup("a")
		if i.Minor != 1 {
			t.Fatalf("unexpected version: %d.%d", i.Major, i.Minor)
		}
		if r.Len() != 1 {
			t.Fatalf("unexpected length: %d", r.Len())
		}
	})

	t.Run("it refuses to downgrade an interface", func(t *testing.T) {
		var r Registry
		if err := r.Add(&Interface{Name: "a", Major: 2}); err != nil {
			t.Fatal(err)
		}

		err := r.Add(&Interface{Name: "a", Major: 1, Minor: 9})
		if !errors.Is(err, fault.ErrInvalidArgument) {
			t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrInvalidArgument)
		}
	})

	t.Run("it reports unknown interfaces", func(t *testing.T) {
		var r Registry
		if _, ok := r.Lookup("a"); ok {
			t.Fatal("did not expect interface to be registered")
		}
	})
}
