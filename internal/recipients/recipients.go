// Package recipients describes who a notification is addressed to and
// decides whether a receiving session is one of them.
package recipients

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/llehouerou/notibus/internal/identity"
)

// Type selects how the member list is interpreted.
type Type string

const (
	TypeEveryone   Type = "everyone"
	TypeAdminsOnly Type = "admins_only"
	TypeUsers      Type = "users"
	TypeGroups     Type = "groups"
)

// Valid reports whether t is one of the four known types.
func (t Type) Valid() bool {
	switch t {
	case TypeEveryone, TypeAdminsOnly, TypeUsers, TypeGroups:
		return true
	}
	return false
}

// Recipients is the audience of a notification.
// List is only consulted for TypeUsers and TypeGroups.
type Recipients struct {
	Type Type
	List []string
}

// Everyone addresses every receiving session.
func Everyone() Recipients {
	return Recipients{Type: TypeEveryone, List: []string{}}
}

// AdminsOnly addresses sessions whose user belongs to an admin group.
func AdminsOnly() Recipients {
	return Recipients{Type: TypeAdminsOnly, List: []string{}}
}

// Users addresses sessions owned by one of the named users.
func Users(names []string) Recipients {
	return Recipients{Type: TypeUsers, List: cloneList(names)}
}

// Groups addresses sessions whose user belongs to one of the named groups.
func Groups(names []string) Recipients {
	return Recipients{Type: TypeGroups, List: cloneList(names)}
}

func cloneList(names []string) []string {
	if names == nil {
		return []string{}
	}
	return slices.Clone(names)
}

// Matches reports whether the session described by id is addressed.
// Unknown types never match.
func (r Recipients) Matches(id identity.Context) bool {
	switch r.Type {
	case TypeEveryone:
		return true
	case TypeAdminsOnly:
		return id.IsAdmin
	case TypeUsers:
		return slices.Contains(r.List, id.User)
	case TypeGroups:
		for _, g := range r.List {
			if id.InGroup(g) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// wireRecipients is the JSON shape carried in the signal's last field.
type wireRecipients struct {
	Type Type     `json:"type"`
	List []string `json:"list"`
}

// Encode returns the wire form, e.g. {"type":"groups","list":["developers"]}.
func (r Recipients) Encode() string {
	data, err := json.Marshal(wireRecipients{Type: r.Type, List: cloneList(r.List)})
	if err != nil {
		// Only strings are marshaled; this cannot happen.
		return Everyone().Encode()
	}
	return string(data)
}

// ErrInvalid is returned by Parse for text that is not a valid encoding.
var ErrInvalid = errors.New("invalid recipients encoding")

// Parse strictly decodes the wire form produced by Encode. Both "type" and
// "list" must be present and non-null, and type must be a known value.
func Parse(text string) (Recipients, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return Recipients{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if fields == nil {
		return Recipients{}, fmt.Errorf("%w: null", ErrInvalid)
	}

	rawType, ok := fields["type"]
	if !ok || isNull(rawType) {
		return Recipients{}, fmt.Errorf("%w: missing type", ErrInvalid)
	}
	rawList, ok := fields["list"]
	if !ok || isNull(rawList) {
		return Recipients{}, fmt.Errorf("%w: missing list", ErrInvalid)
	}

	var t Type
	if err := json.Unmarshal(rawType, &t); err != nil {
		return Recipients{}, fmt.Errorf("%w: type: %w", ErrInvalid, err)
	}
	if !t.Valid() {
		return Recipients{}, fmt.Errorf("%w: unknown type %q", ErrInvalid, t)
	}
	var list []string
	if err := json.Unmarshal(rawList, &list); err != nil {
		return Recipients{}, fmt.Errorf("%w: list: %w", ErrInvalid, err)
	}

	return Recipients{Type: t, List: cloneList(list)}, nil
}

// Decode is Parse with a fallback: anything it cannot fully understand
// decodes to Everyone(). A corrupted recipient field widens the audience
// instead of silencing the notification, while Matches fails closed for
// unknown types. The two layers deliberately disagree.
func Decode(text string) Recipients {
	r, err := Parse(text)
	if err != nil {
		return Everyone()
	}
	return r
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (r Recipients) String() string {
	switch r.Type {
	case TypeEveryone:
		return "everyone"
	case TypeAdminsOnly:
		return "admins only"
	case TypeUsers:
		return "users: " + strings.Join(r.List, ", ")
	case TypeGroups:
		return "groups: " + strings.Join(r.List, ", ")
	default:
		return "unknown (" + string(r.Type) + ")"
	}
}
