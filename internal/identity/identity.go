// Package identity resolves who the receiving session belongs to.
package identity

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultAdminGroups is used when no admin groups are configured.
var DefaultAdminGroups = []string{"sudo"}

// ErrResolution is wrapped by every ResolutionError.
var ErrResolution = errors.New("identity resolution failed")

// ResolutionError reports that the OS could not tell us who we are.
// A receiver must not start without an identity.
type ResolutionError struct {
	Op  string // "user" or "groups"
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve current %s: %v", e.Op, e.Err)
}

func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolution, e.Err}
}

// Provider looks up the identity of the running process.
type Provider interface {
	CurrentUserName() (string, error)
	CurrentGroupNames() ([]string, error)
}

// Context holds the facts recipient matching is evaluated against.
// It is resolved once at startup and never refreshed, so group changes made
// while a receiver runs are not observed until it restarts.
type Context struct {
	User        string
	Groups      []string
	AdminGroups []string
	IsAdmin     bool
}

// NewContext builds a Context and derives IsAdmin.
func NewContext(user string, groups, adminGroups []string) Context {
	if len(adminGroups) == 0 {
		adminGroups = DefaultAdminGroups
	}
	c := Context{
		User:        user,
		Groups:      slices.Clone(groups),
		AdminGroups: slices.Clone(adminGroups),
	}
	for _, g := range c.AdminGroups {
		if c.InGroup(g) {
			c.IsAdmin = true
			break
		}
	}
	return c
}

// InGroup reports whether the user is a member of group.
func (c Context) InGroup(group string) bool {
	return slices.Contains(c.Groups, group)
}

// Resolve queries p for the current user and groups.
func Resolve(p Provider, adminGroups []string) (Context, error) {
	user, err := p.CurrentUserName()
	if err != nil {
		return Context{}, &ResolutionError{Op: "user", Err: err}
	}
	groups, err := p.CurrentGroupNames()
	if err != nil {
		return Context{}, &ResolutionError{Op: "groups", Err: err}
	}
	return NewContext(user, groups, adminGroups), nil
}
