package command

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotPermitted is returned when a command's verb is outside the allowlist.
var ErrNotPermitted = errors.New("command not permitted")

// Policy is an opt-in allowlist of leading keywords. The zero value permits
// every command.
type Policy struct {
	allowed map[string]struct{}
}

// NewPolicy builds a policy from verbs such as SELECT or INSERT.
// No verbs means unrestricted pass-through.
func NewPolicy(verbs []string) Policy {
	p := Policy{}
	for _, v := range verbs {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if p.allowed == nil {
			p.allowed = make(map[string]struct{})
		}
		p.allowed[v] = struct{}{}
	}
	return p
}

// Restricted reports whether the policy filters anything.
func (p Policy) Restricted() bool {
	return len(p.allowed) > 0
}

// Check returns ErrNotPermitted when cmd's verb is not allowed.
func (p Policy) Check(cmd Command) error {
	if !p.Restricted() {
		return nil
	}
	verb := cmd.Verb()
	if _, ok := p.allowed[verb]; ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotPermitted, verb)
}
