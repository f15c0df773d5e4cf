package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	user      string
	groups    []string
	userErr   error
	groupsErr error
}

func (f fakeProvider) CurrentUserName() (string, error)     { return f.user, f.userErr }
func (f fakeProvider) CurrentGroupNames() ([]string, error) { return f.groups, f.groupsErr }

func TestNewContextAdmin(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		admins []string
		want   bool
	}{
		{"member of default admin group", []string{"sudo", "staff"}, nil, true},
		{"not a member of default admin group", []string{"staff"}, nil, false},
		{"no groups", nil, []string{"sudo"}, false},
		{"custom admin groups", []string{"wheel"}, []string{"sudo", "wheel"}, true},
		{"custom admin groups exclude sudo", []string{"sudo"}, []string{"wheel"}, false},
		{"case sensitive", []string{"Sudo"}, []string{"sudo"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext("alice", tt.groups, tt.admins)
			assert.Equal(t, tt.want, c.IsAdmin)
		})
	}
}

func TestNewContextDefaultsAdminGroups(t *testing.T) {
	c := NewContext("alice", nil, nil)
	assert.Equal(t, []string{"sudo"}, c.AdminGroups)
}

func TestNewContextCopiesSlices(t *testing.T) {
	groups := []string{"sudo"}
	c := NewContext("alice", groups, nil)
	groups[0] = "staff"

	assert.True(t, c.InGroup("sudo"))
	assert.False(t, c.InGroup("staff"))
}

func TestResolve(t *testing.T) {
	c, err := Resolve(fakeProvider{user: "alice", groups: []string{"developers", "sudo"}}, []string{"sudo"})
	require.NoError(t, err)

	assert.Equal(t, "alice", c.User)
	assert.Equal(t, []string{"developers", "sudo"}, c.Groups)
	assert.True(t, c.IsAdmin)
}

func TestResolveErrors(t *testing.T) {
	boom := errors.New("passwd unavailable")

	tests := []struct {
		name     string
		provider fakeProvider
		op       string
	}{
		{"user lookup fails", fakeProvider{userErr: boom}, "user"},
		{"group lookup fails", fakeProvider{user: "alice", groupsErr: boom}, "groups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.provider, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrResolution)
			assert.ErrorIs(t, err, boom)

			var resErr *ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, tt.op, resErr.Op)
		})
	}
}

func TestOSProvider(t *testing.T) {
	var p OSProvider

	name, err := p.CurrentUserName()
	if err != nil {
		t.Skipf("no user database entry for this uid: %v", err)
	}
	assert.NotEmpty(t, name)

	groups, err := p.CurrentGroupNames()
	require.NoError(t, err)
	assert.NotEmpty(t, groups, "effective group is always reported")
}
