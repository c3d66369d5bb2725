package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// InterfaceType is the kind of data that an interface carries.
type InterfaceType int

const (
	// Datastream is an interface that carries a stream of timestamped
	// values.
	Datastream InterfaceType = iota + 1

	// Properties is an interface that carries stateful, retained values.
	Properties
)

// Ownership identifies the party that is permitted to write values on an
// interface.
type Ownership int

const (
	// DeviceOwned interfaces are written by the device.
	DeviceOwned Ownership = iota + 1

	// ServerOwned interfaces are written by the server.
	ServerOwned
)

// Aggregation describes whether the mappings of an interface are published
// individually or as a single object.
type Aggregation int

const (
	// Individual aggregation publishes each mapping separately.
	Individual Aggregation = iota + 1

	// Object aggregation publishes all mappings together.
	Object
)

// Reliability is the delivery guarantee of a mapping.
type Reliability int

const (
	// Unreliable delivery is at most once.
	Unreliable Reliability = iota

	// Guaranteed delivery is at least once.
	Guaranteed

	// Unique delivery is exactly once.
	Unique
)

// MappingType is the type of the value held by a mapping.
type MappingType int

// The mapping types, in the order of their numeric identifiers.
const (
	Integer MappingType = iota + 1
	LongInteger
	Double
	String
	BinaryBlob
	Boolean
	DateTime
	IntegerArray
	LongIntegerArray
	DoubleArray
	StringArray
	BinaryBlobArray
	BooleanArray
	DateTimeArray
)

var (
	interfaceTypeNames = []string{"", "datastream", "properties"}
	ownershipNames     = []string{"", "device", "server"}
	aggregationNames   = []string{"", "individual", "object"}
	reliabilityNames   = []string{"unreliable", "guaranteed", "unique"}
	mappingTypeNames   = []string{
		"",
		"integer",
		"longinteger",
		"double",
		"string",
		"binaryblob",
		"boolean",
		"datetime",
		"integerarray",
		"longintegerarray",
		"doublearray",
		"stringarray",
		"binaryblobarray",
		"booleanarray",
		"datetimearray",
	}
)

func (t InterfaceType) String() string { return name(interfaceTypeNames, int(t)) }
func (o Ownership) String() string     { return name(ownershipNames, int(o)) }
func (a Aggregation) String() string   { return name(aggregationNames, int(a)) }
func (r Reliability) String() string   { return name(reliabilityNames, int(r)) }
func (t MappingType) String() string   { return name(mappingTypeNames, int(t)) }

// IsArray returns true if the mapping type holds a sequence of values.
func (t MappingType) IsArray() bool {
	return t >= IntegerArray && t <= DateTimeArray
}

// UnmarshalText parses the interface type from its textual representation.
func (t *InterfaceType) UnmarshalText(text []byte) error {
	return parse(interfaceTypeNames, "interface type", text, (*int)(t))
}

// UnmarshalText parses the ownership from its textual representation.
func (o *Ownership) UnmarshalText(text []byte) error {
	return parse(ownershipNames, "ownership", text, (*int)(o))
}

// UnmarshalText parses the aggregation from its textual representation.
func (a *Aggregation) UnmarshalText(text []byte) error {
	return parse(aggregationNames, "aggregation", text, (*int)(a))
}

// UnmarshalText parses the reliability from its textual representation.
func (r *Reliability) UnmarshalText(text []byte) error {
	return parse(reliabilityNames, "reliability", text, (*int)(r))
}

// UnmarshalText parses the mapping type from its textual representation.
func (t *MappingType) UnmarshalText(text []byte) error {
	return parse(mappingTypeNames, "mapping type", text, (*int)(t))
}

// The UnmarshalYAML methods decode scalar nodes via UnmarshalText.
func (t *InterfaceType) UnmarshalYAML(n *yaml.Node) error { return unmarshalYAML(n, t) }
func (o *Ownership) UnmarshalYAML(n *yaml.Node) error     { return unmarshalYAML(n, o) }
func (a *Aggregation) UnmarshalYAML(n *yaml.Node) error   { return unmarshalYAML(n, a) }
func (r *Reliability) UnmarshalYAML(n *yaml.Node) error   { return unmarshalYAML(n, r) }
func (t *MappingType) UnmarshalYAML(n *yaml.Node) error   { return unmarshalYAML(n, t) }

type textUnmarshaler interface {
	UnmarshalText([]byte) error
}

func unmarshalYAML(n *yaml.Node, v textUnmarshaler) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return v.UnmarshalText([]byte(s))
}

func name(names []string, v int) string {
	if v >= 0 && v < len(names) && names[v] != "" {
		return names[v]
	}
	return fmt.Sprintf("<unknown %d>", v)
}

func parse(names []string, kind string, text []byte, out *int) error {
	for i, n := range names {
		if n != "" && n == string(text) {
			*out = i
			return nil
		}
	}
	return fmt.Errorf("unrecognized %s: %q", kind, text)
}
