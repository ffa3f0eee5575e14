package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/pitcrewhq/pitcrew/internal/models"
	apperrors "github.com/pitcrewhq/pitcrew/pkg/errors"
)

var (
	// ErrGroupNotFound indicates the requested group does not exist.
	ErrGroupNotFound = apperrors.New("GROUP_NOT_FOUND", "Group not found", http.StatusNotFound)
	// ErrGroupOwnerMissing signals a group without an owner membership row.
	ErrGroupOwnerMissing = apperrors.New("GROUP_OWNER_MISSING", "Group has no owner", http.StatusInternalServerError)
)

// CreateGroupInput captures new group metadata.
type CreateGroupInput struct {
	Name         string
	Description  string
	CreatorEmail string
}

// GroupService handles group lifecycle and membership management.
type GroupService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(db *gorm.DB, auditService *AuditService) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("group service: db is required")
	}
	return &GroupService{
		db:           db,
		auditService: auditService,
	}, nil
}

// Create registers a new group and its creator in one transaction. The
// creator user is resolved lazily and stored as the owner membership row, so
// a group can never be observed without an owner.
func (s *GroupService) Create(ctx context.Context, input CreateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("group name is required")
	}
	creatorEmail := normaliseEmail(input.CreatorEmail)
	if creatorEmail == "" {
		return nil, apperrors.NewBadRequest("creator email is required")
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return fmt.Errorf("group service: create group: %w", err)
		}

		creator, err := getOrCreateUser(ctx, tx, creatorEmail, "")
		if err != nil {
			return err
		}

		membership := models.GroupMember{
			GroupID: group.ID,
			UserID:  creator.ID,
			Role:    models.GroupRoleOwner,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("group service: add owner membership: %w", err)
		}

		group.Members = []models.User{*creator}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "group.create",
		Resource: group.ID,
		Result:   "success",
		Metadata: map[string]any{
			"name":    group.Name,
			"creator": creatorEmail,
		},
	})

	return group, nil
}

// List returns all groups with membership preloaded, oldest first.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	ctx = ensureContext(ctx)

	var groups []models.Group
	if err := s.db.WithContext(ctx).
		Preload("Members").
		Order("created_at ASC").
		Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("group service: list groups: %w", err)
	}

	return groups, nil
}

// GetByID loads a group with its members.
func (s *GroupService) GetByID(ctx context.Context, id string) (*models.Group, error) {
	ctx = ensureContext(ctx)

	var group models.Group
	err := s.db.WithContext(ctx).
		Preload("Members").
		First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("group service: get group: %w", err)
	}

	return &group, nil
}

// AddMember attaches a user to a group if not already present. Re-adding an
// existing member is a no-op, which keeps invitation acceptance idempotent
// from the membership side.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) error {
	return s.addMember(ensureContext(ctx), s.db, groupID, userID)
}

func (s *GroupService) addMember(ctx context.Context, db *gorm.DB, groupID, userID string) error {
	if strings.TrimSpace(groupID) == "" || strings.TrimSpace(userID) == "" {
		return apperrors.NewBadRequest("group id and user id are required")
	}

	var existing int64
	if err := db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("group service: check membership: %w", err)
	}
	if existing > 0 {
		return nil
	}

	membership := models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    models.GroupRoleMember,
	}
	if err := db.WithContext(ctx).Create(&membership).Error; err != nil {
		return fmt.Errorf("group service: append member: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "group.add_member",
		Resource: groupID,
		Result:   "success",
		Metadata: map[string]any{"user_id": userID},
	})

	return nil
}

// Owner returns the user who created the group, identified by the owner role
// on the membership row rather than by insertion order.
func (s *GroupService) Owner(ctx context.Context, groupID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var membership models.GroupMember
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND role = ?", groupID, models.GroupRoleOwner).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupOwnerMissing
	}
	if err != nil {
		return nil, fmt.Errorf("group service: find owner: %w", err)
	}

	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", membership.UserID).Error; err != nil {
		return nil, fmt.Errorf("group service: load owner: %w", err)
	}

	return &owner, nil
}

// ListMembers returns the users assigned to a group.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	group, err := s.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return group.Members, nil
}
