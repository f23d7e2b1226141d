package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedRoles(t *testing.T) {
	db := setupTestDB(t, "roles", &Role{})

	assert.NoError(t, SeedRoles(db))

	var names []string
	assert.NoError(t, db.Model(&Role{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{RoleAdmin, RoleLabManager, RoleLabStaff, RoleDoctor, RoleClinicStaff}, names)
}

func TestSeedRoles_Idempotent(t *testing.T) {
	db := setupTestDB(t, "roles_idempotent", &Role{})

	assert.NoError(t, SeedRoles(db))
	assert.NoError(t, SeedRoles(db))

	var count int64
	db.Model(&Role{}).Count(&count)
	assert.Equal(t, int64(5), count)
}
