package model

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	RoleAdmin = "Admin"
	RoleStaff = "Staff"
)

type Role struct {
	gorm.Model
	ID   uint32 `gorm:"primary_key;auto_increment" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

// SeedRoles creates the dashboard roles that do not exist yet.
func SeedRoles(db *gorm.DB) error {
	roles := []Role{
		{Name: RoleAdmin},
		{Name: RoleStaff},
	}

	for _, role := range roles {
		var existingRole Role
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

// RoleByName looks up a seeded role.
func RoleByName(db *gorm.DB, name string) (Role, error) {
	var role Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		return Role{}, fmt.Errorf("role %s: %w", name, err)
	}
	return role, nil
}
