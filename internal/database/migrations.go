package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pitcrewhq/pitcrew/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	// The join table carries a role column, so gorm has to know about the
	// custom model before migrating the association.
	if err := db.SetupJoinTable(&models.Group{}, "Members", &models.GroupMember{}); err != nil {
		return fmt.Errorf("setup group_members join table: %w", err)
	}
	if err := db.SetupJoinTable(&models.User{}, "Groups", &models.GroupMember{}); err != nil {
		return fmt.Errorf("setup group_members join table: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Invitation{},
		&models.Task{},
		&models.Member{},
		&models.AuditLog{},
	)
}
