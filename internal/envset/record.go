// Package envset assembles the environment handed to the delegate: the
// static options from the workflow definition with secret references
// resolved against the host's secret store. A record is built exactly once
// per run and never mutated afterwards.
package envset

import (
	"fmt"
	"regexp"
	"sort"
)

var secretRef = regexp.MustCompile(`^\$\{\{\s*secrets\.([A-Za-z_][A-Za-z0-9_]*)\s*\}\}$`)

// Record is the fully populated option set for one run. The zero value is
// not usable; records come from Assemble.
type Record struct {
	values  map[string]string
	secrets map[string]struct{}
}

// Assemble resolves the delegate environment from the definition into a
// complete record. Values of the form `${{ secrets.NAME }}` are looked up in
// the secret source; a missing secret or an otherwise empty option aborts
// assembly so the delegate never sees a partial record.
func Assemble(delegateEnv map[string]string, secrets SecretSource) (Record, error) {
	rec := Record{
		values:  make(map[string]string, len(delegateEnv)),
		secrets: make(map[string]struct{}),
	}

	for name, value := range delegateEnv {
		if m := secretRef.FindStringSubmatch(value); m != nil {
			resolved, err := secrets.Secret(m[1])
			if err != nil {
				return Record{}, fmt.Errorf("resolve option %s: %w", name, err)
			}
			rec.values[name] = resolved
			rec.secrets[name] = struct{}{}
			continue
		}
		rec.values[name] = value
	}

	for name, value := range rec.values {
		if value == "" {
			return Record{}, fmt.Errorf("option %s is empty", name)
		}
	}

	return rec, nil
}

// Value returns the option value for name, or the empty string.
func (r Record) Value(name string) string {
	return r.values[name]
}

// Len returns the number of options in the record.
func (r Record) Len() int {
	return len(r.values)
}

// Names returns the option names in sorted order.
func (r Record) Names() []string {
	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Environ returns the record as NAME=value pairs in sorted order, ready for
// process invocation.
func (r Record) Environ() []string {
	env := make([]string, 0, len(r.values))
	for _, name := range r.Names() {
		env = append(env, name+"="+r.values[name])
	}
	return env
}

// Redacted returns a copy of the record with secret-derived values masked,
// for display and logging.
func (r Record) Redacted() map[string]string {
	out := make(map[string]string, len(r.values))
	for name, value := range r.values {
		if _, ok := r.secrets[name]; ok {
			out[name] = "***"
			continue
		}
		out[name] = value
	}
	return out
}
