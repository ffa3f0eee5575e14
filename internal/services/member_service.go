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

// ErrMemberNotFound indicates the contact does not exist or belongs to another user.
var ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "Member not found", http.StatusNotFound)

// MemberInput carries the editable fields of a directory contact.
type MemberInput struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=40"`
	Organization string `json:"organization" validate:"max=120"`
}

// MemberService manages each user's private contact directory.
type MemberService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewMemberService constructs a MemberService.
func NewMemberService(db *gorm.DB, auditService *AuditService) (*MemberService, error) {
	if db == nil {
		return nil, errors.New("member service: db is required")
	}
	return &MemberService{db: db, auditService: auditService}, nil
}

// List returns the user's contacts ordered by name.
func (s *MemberService) List(ctx context.Context, userID string) ([]models.Member, error) {
	ctx = ensureContext(ctx)

	var members []models.Member
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("member service: list members: %w", err)
	}

	return members, nil
}

// Get fetches a single contact owned by the user.
func (s *MemberService) Get(ctx context.Context, userID, id string) (*models.Member, error) {
	ctx = ensureContext(ctx)

	var member models.Member
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("member service: find member: %w", err)
	}

	return &member, nil
}

// Create adds a contact to the user's directory.
func (s *MemberService) Create(ctx context.Context, userID string, input MemberInput) (*models.Member, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	member := models.Member{
		Name:         name,
		Email:        normaliseEmail(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Organization: strings.TrimSpace(input.Organization),
		UserID:       userID,
	}

	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, fmt.Errorf("member service: create member: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "member.create",
		Resource: member.ID,
		Result:   "success",
	})

	return &member, nil
}

// Update replaces the editable fields of a contact.
func (s *MemberService) Update(ctx context.Context, userID, id string, input MemberInput) (*models.Member, error) {
	ctx = ensureContext(ctx)

	member, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}

	updates := map[string]any{
		"name":         name,
		"email":        normaliseEmail(input.Email),
		"phone":        strings.TrimSpace(input.Phone),
		"organization": strings.TrimSpace(input.Organization),
	}
	if err := s.db.WithContext(ctx).Model(member).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("member service: update member: %w", err)
	}

	member.Name = name
	member.Email = updates["email"].(string)
	member.Phone = updates["phone"].(string)
	member.Organization = updates["organization"].(string)

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "member.update",
		Resource: member.ID,
		Result:   "success",
	})

	return member, nil
}

// Delete removes a contact from the user's directory.
func (s *MemberService) Delete(ctx context.Context, userID, id string) error {
	ctx = ensureContext(ctx)

	member, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(member).Error; err != nil {
		return fmt.Errorf("member service: delete member: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "member.delete",
		Resource: member.ID,
		Result:   "success",
	})

	return nil
}
