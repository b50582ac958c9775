package workflow

import "strings"

// Access is a permission level granted for one capability.
type Access string

const (
	AccessNone  Access = "none"
	AccessRead  Access = "read"
	AccessWrite Access = "write"
)

// Permissions is the immutable capability grant for one run. It is built
// once from the definition and passed explicitly wherever a capability is
// exercised; nothing reads it ambiently.
type Permissions struct {
	grants map[string]Access
}

// NewPermissions builds a permission set from the raw definition mapping.
func NewPermissions(raw map[string]string) Permissions {
	grants := make(map[string]Access, len(raw))
	for scope, level := range raw {
		grants[strings.TrimSpace(scope)] = Access(strings.TrimSpace(level))
	}
	return Permissions{grants: grants}
}

// Allows reports whether the set grants at least the requested access for
// the scope. Write implies read; an absent scope grants nothing.
func (p Permissions) Allows(scope string, want Access) bool {
	got, ok := p.grants[scope]
	if !ok {
		return false
	}
	switch want {
	case AccessRead:
		return got == AccessRead || got == AccessWrite
	case AccessWrite:
		return got == AccessWrite
	case AccessNone:
		return true
	default:
		return false
	}
}

// Scopes returns the granted scope names, for logging.
func (p Permissions) Scopes() []string {
	out := make([]string, 0, len(p.grants))
	for scope := range p.grants {
		out = append(out, scope)
	}
	return out
}
