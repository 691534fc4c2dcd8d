package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorityOf(t *testing.T) {
	assert.Equal(t, 0, AuthorityOf(RoleAdmin))
	assert.Equal(t, 1, AuthorityOf(RoleClerk))
	assert.Equal(t, 3, AuthorityOf(RoleUnderSecretary))
	assert.Equal(t, 7, AuthorityOf(RoleSecretary))
	assert.Equal(t, 0, AuthorityOf(Role("Peon")))
}

func TestAuthorityAtLeast(t *testing.T) {
	assert.True(t, AuthorityAtLeast(RoleSecretary, RoleClerk))
	assert.True(t, AuthorityAtLeast(RoleClerk, RoleClerk))
	assert.False(t, AuthorityAtLeast(RoleClerk, RoleUnderSecretary))
	assert.False(t, AuthorityAtLeast(RoleAdmin, RoleClerk))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("Under Secretary")
	assert.True(t, ok)
	assert.Equal(t, RoleUnderSecretary, r)

	r, ok = ParseRole("under secretary")
	assert.False(t, ok)
	assert.Equal(t, 0, AuthorityOf(r))

	for i, role := range Roles() {
		assert.True(t, role.Valid())
		if i > 0 {
			assert.True(t, AuthorityOf(role) > AuthorityOf(Roles()[i-1]))
		}
	}
}
