package model

import (
	"fmt"

	"gorm.io/gorm"
)

type Role struct {
	gorm.Model
	ID   uint32 `gorm:"primary_key;auto_increment" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

// Role names used across the application. Status transitions on lab scripts
// are restricted to the first three.
const (
	RoleAdmin       = "ADMIN"
	RoleLabManager  = "LAB_MANAGER"
	RoleLabStaff    = "LAB_STAFF"
	RoleDoctor      = "DOCTOR"
	RoleClinicStaff = "CLINIC_STAFF"
)

func SeedRoles(db *gorm.DB) error {
	roles := []Role{
		{Name: RoleAdmin},
		{Name: RoleLabManager},
		{Name: RoleLabStaff},
		{Name: RoleDoctor},
		{Name: RoleClinicStaff},
	}

	for _, role := range roles {
		var existingRole Role
		// Check if the role already exists.
		err := db.Where("name = ?", role.Name).First(&existingRole).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}
	return nil
}
