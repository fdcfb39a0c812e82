package schema

import (
	"fmt"
	"sort"

	"github.com/restcontract/users-contract-tests/servicedef"
)

// Registry holds one compiled Validator per scenario name.
type Registry struct {
	validators map[string]*Validator
}

// NewRegistry compiles every schema in documents.
func NewRegistry(documents map[string]interface{}) (*Registry, error) {
	r := &Registry{validators: make(map[string]*Validator, len(documents))}
	for name, doc := range documents {
		v, err := Compile(name, doc)
		if err != nil {
			return nil, err
		}
		r.validators[name] = v
	}
	return r, nil
}

// LoadRegistry reads a document mapping scenario names to JSON Schemas (JSON, or YAML by file
// extension) and compiles all of them.
func LoadRegistry(path string) (*Registry, error) {
	var documents map[string]interface{}
	if err := servicedef.ReadDocument(path, &documents); err != nil {
		return nil, err
	}
	return NewRegistry(documents)
}

// Get returns the validator for a scenario.
func (r *Registry) Get(name string) (*Validator, bool) {
	v, ok := r.validators[name]
	return v, ok
}

// Names returns the names of all schemas in the registry, sorted.
func (r *Registry) Names() []string {
	ret := make([]string, 0, len(r.validators))
	for name := range r.validators {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// RequireAll returns an error naming the first of names that has no schema.
func (r *Registry) RequireAll(names ...string) error {
	for _, name := range names {
		if _, ok := r.validators[name]; !ok {
			return fmt.Errorf("no response schema defined for %q", name)
		}
	}
	return nil
}
