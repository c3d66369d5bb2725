package schema

import (
	"errors"
	"fmt"
	"io"

	"github.com/dogmatiq/propertykit/endpoint"
	"github.com/dogmatiq/propertykit/fault"
	"gopkg.in/yaml.v3"
)

// Decode reads a single interface definition from r.
//
// The definition may be JSON or YAML. Omitted aggregation defaults to
// [Individual] and omitted reliability defaults to [Unreliable].
func Decode(r io.Reader) (*Interface, error) {
	dec := yaml.NewDecoder(r)

	var i Interface
	if err := dec.Decode(&i); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fault.InvalidArgument("interface definition is empty")
		}
		return nil, fmt.Errorf("%w: unable to decode interface definition: %w", fault.ErrInvalidArgument, err)
	}

	if i.Aggregation == 0 {
		i.Aggregation = Individual
	}

	if err := i.validate(); err != nil {
		return nil, err
	}

	return &i, nil
}

func (i *Interface) validate() error {
	if i.Name == "" {
		return fault.InvalidArgument("interface definition has no name")
	}

	if i.Major == 0 && i.Minor == 0 {
		return fault.InvalidArgument("interface %q has version 0.0", i.Name)
	}

	if i.Type == 0 {
		return fault.InvalidArgument("interface %q has no type", i.Name)
	}

	if i.Ownership == 0 {
		return fault.InvalidArgument("interface %q has no ownership", i.Name)
	}

	if len(i.Mappings) == 0 {
		return fault.InvalidArgument("interface %q has no mappings", i.Name)
	}

	for _, m := range i.Mappings {
		if _, err := endpoint.Parse(m.Endpoint); err != nil {
			return fmt.Errorf("interface %q: %w", i.Name, err)
		}

		if m.Type == 0 {
			return fault.InvalidArgument("interface %q: mapping %q has no type", i.Name, m.Endpoint)
		}
	}

	return nil
}
