package identity

import (
	"os"
	"os/user"
	"strconv"
)

// OSProvider resolves identity from the operating system user database.
type OSProvider struct{}

// CurrentUserName returns the login name of the real user id.
func (OSProvider) CurrentUserName() (string, error) {
	u, err := user.LookupId(strconv.Itoa(os.Getuid()))
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// CurrentGroupNames returns the names of the process's supplementary groups
// plus its effective group. Groups without a name are reported by id.
func (OSProvider) CurrentGroupNames() ([]string, error) {
	gids, err := os.Getgroups()
	if err != nil {
		return nil, err
	}
	gids = append(gids, os.Getegid())

	seen := make(map[int]bool, len(gids))
	names := make([]string, 0, len(gids))
	for _, gid := range gids {
		if seen[gid] {
			continue
		}
		seen[gid] = true

		id := strconv.Itoa(gid)
		g, err := user.LookupGroupId(id)
		if err != nil {
			names = append(names, id)
			continue
		}
		names = append(names, g.Name)
	}
	return names, nil
}
