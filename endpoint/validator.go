package endpoint

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/list"
)

// DefaultParameterGrammar is the pattern that a path segment must match to be
// accepted in place of a template parameter.
const DefaultParameterGrammar = `^[A-Za-z_][A-Za-z0-9_]*$`

var (
	defaultGrammar   = regexp.MustCompile(DefaultParameterGrammar)
	defaultValidator = &Validator{grammar: defaultGrammar}
)

// Validate reports whether path is an instance of template, using the default
// [Validator].
func Validate(template, path string) (bool, error) {
	return defaultValidator.Validate(template, path)
}

// Validator checks runtime paths against endpoint templates.
//
// A Validator is immutable and may be shared.
type Validator struct {
	grammar *regexp.Regexp
	limit   int
}

// Option is a functional option that changes the behavior of [NewValidator].
type Option func(*validatorOptions)

type validatorOptions struct {
	pattern string
	limit   int
}

// WithParameterGrammar is an [Option] that replaces the pattern that path
// segments must match to satisfy a parameter. The pattern should be anchored.
func WithParameterGrammar(pattern string) Option {
	return func(o *validatorOptions) {
		o.pattern = pattern
	}
}

// WithSegmentLimit is an [Option] that limits the number of segments that
// are held while splitting a path or template.
//
// Inputs with more segments cause [Validator.Validate] to fail with an
// internal error that also matches [fault.ErrOutOfMemory].
func WithSegmentLimit(n int) Option {
	return func(o *validatorOptions) {
		o.limit = n
	}
}

// NewValidator returns a new [Validator].
//
// It returns an error matching [fault.ErrInternal] if the parameter grammar
// cannot be compiled.
func NewValidator(options ...Option) (*Validator, error) {
	opts := validatorOptions{
		pattern: DefaultParameterGrammar,
	}

	for _, opt := range options {
		opt(&opts)
	}

	if opts.limit < 0 {
		return nil, fault.InvalidArgument("segment limit must not be negative")
	}

	v := &Validator{
		grammar: defaultGrammar,
		limit:   opts.limit,
	}

	if opts.pattern != DefaultParameterGrammar {
		g, err := regexp.Compile(opts.pattern)
		if err != nil {
			return nil, fault.Internal(err, "unable to compile parameter grammar")
		}
		v.grammar = g
	}

	return v, nil
}

// Validate reports whether path is an instance of template.
//
// A path that is empty or does not begin with a separator never matches,
// whatever the template. Otherwise a malformed template is an error matching
// [fault.ErrInvalidArgument]. Failures of the validator itself are reported as errors
// matching [fault.ErrInternal], and must not be confused with a false result.
func (v *Validator) Validate(template, path string) (bool, error) {
	if path == "" || path[0] != Separator {
		return false, nil
	}

	if template == "" || template[0] != Separator {
		return false, fault.InvalidArgument("endpoint template %q must begin with '/'", template)
	}

	templateSegments, err := v.split(template)
	defer templateSegments.Destroy()
	if err != nil {
		return false, fault.Internal(err, "unable to split endpoint template")
	}

	if templateSegments.IsEmpty() {
		return false, fault.InvalidArgument("endpoint template %q has no segments", template)
	}

	pathSegments, err := v.split(path)
	defer pathSegments.Destroy()
	if err != nil {
		return false, fault.Internal(err, "unable to split path")
	}

	if pathSegments.Len() != templateSegments.Len() {
		return false, nil
	}

	ti, err := templateSegments.Iterator()
	if err != nil {
		return false, fault.Internal(err, "unable to iterate endpoint template segments")
	}

	pi, err := pathSegments.Iterator()
	if err != nil {
		return false, fault.Internal(err, "unable to iterate path segments")
	}

	for {
		if !v.match(ti.Item(), pi.Item()) {
			return false, nil
		}

		// The lists have the same length, so advancing one tells us when both
		// are exhausted.
		if err := ti.Advance(); err != nil {
			return true, nil
		}

		if err := pi.Advance(); err != nil {
			return false, fault.Internal(err, "path segments exhausted before template segments")
		}
	}
}

// match returns true if the path segment p satisfies the template segment t.
func (v *Validator) match(t, p []byte) bool {
	if bytes.HasPrefix(t, []byte(ParameterMarker)) {
		return v.grammar.Match(p)
	}
	return bytes.Equal(t, p)
}

// split copies s into a private buffer and returns a list of its non-empty
// segments, each of which is a view into that buffer.
//
// The returned list is always non-nil so that it may be destroyed
// unconditionally.
func (v *Validator) split(s string) (*list.List, error) {
	segments := &list.List{}
	if v.limit != 0 {
		segments = list.NewBounded(v.limit)
	}

	buf := []byte(s)

	for len(buf) != 0 {
		i := bytes.IndexByte(buf, Separator)
		if i == -1 {
			i = len(buf)
		}

		if i != 0 {
			if err := segments.Append(buf[:i:i]); err != nil {
				return segments, fmt.Errorf("unable to hold segment %d: %w", segments.Len()+1, err)
			}
		}

		if i == len(buf) {
			break
		}
		buf = buf[i+1:]
	}

	return segments, nil
}
