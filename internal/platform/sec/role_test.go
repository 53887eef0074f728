// Copyright (c) 2026 Coverdesk. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coverdesk/coverdesk/internal/platform/sec"
)

/*
TestRole_Valid enumerates the accepted portal roles.
*/
func TestRole_Valid(t *testing.T) {
	assert.True(t, sec.RoleCustomer.Valid())
	assert.True(t, sec.RoleAgent.Valid())
	assert.True(t, sec.RoleAdmin.Valid())

	assert.False(t, sec.Role("").Valid())
	assert.False(t, sec.Role("superuser").Valid())
	assert.False(t, sec.Role("Admin").Valid()) // case sensitive
}

/*
TestRole_In covers the membership check used by every route guard.
*/
func TestRole_In(t *testing.T) {
	staff := []sec.Role{sec.RoleAgent, sec.RoleAdmin}

	assert.True(t, sec.RoleAdmin.In(staff...))
	assert.True(t, sec.RoleAgent.In(staff...))
	assert.False(t, sec.RoleCustomer.In(staff...))

	// An empty or unknown role is never authorized, even against a set
	// that happens to contain the same raw string.
	assert.False(t, sec.Role("").In(staff...))
	assert.False(t, sec.Role("").In(sec.Role("")))
	assert.False(t, sec.Role("superuser").In(sec.Role("superuser")))

	// An empty allowed set admits nobody.
	assert.False(t, sec.RoleAdmin.In())
}

func TestDefaultRole(t *testing.T) {
	assert.Equal(t, sec.RoleCustomer, sec.DefaultRole)
}
