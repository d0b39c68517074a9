package inputspec

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Input is a configuration node validated against a Spec, with typed access
// to attributes, content and children.
type Input struct {
	Tag string

	spec     *Spec
	params   map[string]string
	value    string
	children []*Input
}

// Param returns the named attribute value, with a presence flag. Defaults
// declared on the spec count as present.
func (in *Input) Param(name string) (string, bool) {
	value, ok := in.params[name]
	return value, ok
}

// ParamOr returns the named attribute, or fallback when absent.
func (in *Input) ParamOr(name, fallback string) string {
	if value, ok := in.params[name]; ok {
		return value
	}

	return fallback
}

// Value returns the node's text content, whitespace-trimmed.
func (in *Input) Value() string {
	return in.value
}

// Int parses the content as an integer.
func (in *Input) Int() (int, error) {
	value, err := strconv.Atoi(in.value)
	return value, errors.Wrapf(err, "not an integer: %q", in.value)
}

// Float parses the content as a float.
func (in *Input) Float() (float64, error) {
	value, err := strconv.ParseFloat(in.value, 64)
	return value, errors.Wrapf(err, "not a float: %q", in.value)
}

// Bool parses the content as a boolean.
func (in *Input) Bool() (bool, error) {
	value, err := strconv.ParseBool(in.value)
	return value, errors.Wrapf(err, "not a boolean: %q", in.value)
}

// List splits comma-separated content into trimmed, non-empty entries.
func (in *Input) List() []string {
	entries := []string{}
	for _, entry := range strings.Split(in.value, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}

	return entries
}

// Child returns the first parsed child with the given name, or nil.
func (in *Input) Child(name string) *Input {
	for _, child := range in.children {
		if child.Tag == name {
			return child
		}
	}

	return nil
}

// Children returns every parsed child with the given name, in document order.
func (in *Input) Children(name string) []*Input {
	matches := []*Input{}
	for _, child := range in.children {
		if child.Tag == name {
			matches = append(matches, child)
		}
	}

	return matches
}

// ChildValue returns the content of the named child, or fallback when the
// child is absent.
func (in *Input) ChildValue(name, fallback string) string {
	if child := in.Child(name); child != nil {
		return child.Value()
	}

	return fallback
}
