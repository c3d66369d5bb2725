package endpoint_test

import (
	"errors"
	"testing"

	. "github.com/dogmatiq/propertykit/endpoint"
	"github.com/dogmatiq/propertykit/fault"
	"github.com/google/go-cmp/cmp"
)

func TestTemplate(t *testing.T) {
	tmpl := MustParse("/%{sensor_id}/readings/%{axis}")

	t.Run("it reports the parameters", func(t *testing.T) {
		if n := tmpl.ParameterCount(); n != 2 {
			t.Fatalf("unexpected parameter count: got %d, want 2", n)
		}

		if diff := cmp.Diff([]string{"sensor_id", "axis"}, tmpl.Parameters()); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("it expands to a path that validates against the template", func(t *testing.T) {
		path, err := tmpl.Expand(map[string]string{
			"sensor_id": "s1",
			"axis":      "x",
		})
		if err != nil {
			t.Fatal(err)
		}

		if path != "/s1/readings/x" {
			t.Fatalf("unexpected path: %q", path)
		}

		ok, err := Validate(tmpl.String(), path)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected expanded path to validate")
		}
	})

	t.Run("it refuses to expand invalid parameter values", func(t *testing.T) {
		_, err := tmpl.Expand(map[string]string{
			"sensor_id": "s/1",
			"axis":      "x",
		})
		if !errors.Is(err, fault.ErrInvalidArgument) {
			t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrInvalidArgument)
		}
	})

	t.Run("it refuses to expand with missing parameter values", func(t *testing.T) {
		_, err := tmpl.Expand(map[string]string{"sensor_id": "s1"})
		if !errors.Is(err, fault.ErrInvalidArgument) {
			t.Fatalf("unexpected error: got %v, want %v", err, fault.ErrInvalidArgument)
		}
	})

	t.Run("it rejects malformed templates", func(t *testing.T) {
		for _, s := range []string{"", "a/b", "/"} {
			if _, err := Parse(s); !errors.Is(err, fault.ErrInvalidArgument) {
				t.Errorf("Parse(%q): unexpected error: got %v, want %v", s, err, fault.ErrInvalidArgument)
			}
		}
	})
}
