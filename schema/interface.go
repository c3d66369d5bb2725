// Package schema describes the interfaces that a device exchanges with the
// server, and the mappings that define the paths within each interface.
package schema

import (
	"github.com/dogmatiq/propertykit/endpoint"
)

// Interface is a versioned, named collection of mappings.
type Interface struct {
	Name        string        `yaml:"interface_name"`
	Major       int           `yaml:"version_major"`
	Minor       int           `yaml:"version_minor"`
	Type        InterfaceType `yaml:"type"`
	Ownership   Ownership     `yaml:"ownership"`
	Aggregation Aggregation   `yaml:"aggregation"`
	Description string        `yaml:"description"`
	Mappings    []Mapping     `yaml:"mappings"`
}

// Mapping associates an endpoint template with the type of value that may be
// written to paths that match it.
type Mapping struct {
	Endpoint          string      `yaml:"endpoint"`
	Type              MappingType `yaml:"type"`
	Reliability       Reliability `yaml:"reliability"`
	ExplicitTimestamp bool        `yaml:"explicit_timestamp"`
	AllowUnset        bool        `yaml:"allow_unset"`
	Description       string      `yaml:"description"`
}

// ParameterCount returns the number of parameters in the mapping's endpoint
// template. It returns zero if the template is malformed.
func (m Mapping) ParameterCount() int {
	t, err := endpoint.Parse(m.Endpoint)
	if err != nil {
		return 0
	}
	return t.ParameterCount()
}

// FindMapping returns the first mapping of the interface whose endpoint
// template matches path.
//
// If v is nil the default [endpoint.Validator] is used.
func (i *Interface) FindMapping(v *endpoint.Validator, path string) (Mapping, bool, error) {
	for _, m := range i.Mappings {
		var (
			ok  bool
			err error
		)

		if v == nil {
			ok, err = endpoint.Validate(m.Endpoint, path)
		} else {
			ok, err = v.Validate(m.Endpoint, path)
		}

		if err != nil {
			return Mapping{}, false, err
		}

		if ok {
			return m, true, nil
		}
	}

	return Mapping{}, false, nil
}

// IsProperties returns true if the interface carries properties.
func (i *Interface) IsProperties() bool {
	return i.Type == Properties
}
