package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pitcrewhq/pitcrew/internal/models"
	"github.com/pitcrewhq/pitcrew/pkg/crypto"
	apperrors "github.com/pitcrewhq/pitcrew/pkg/errors"
	"github.com/pitcrewhq/pitcrew/pkg/metrics"
)

const defaultInviteTokenBytes = 24

// ErrInvitationNotFound indicates no invitation matches the provided token.
var ErrInvitationNotFound = apperrors.New("INVITATION_NOT_FOUND", "Invitation not found", http.StatusNotFound)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteBaseURL configures the base URL used to create accept hyperlinks.
func WithInviteBaseURL(url string) InviteOption {
	return func(s *InviteService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithInviteAcceptPath overrides the path segment prepended to the token in accept links.
func WithInviteAcceptPath(path string) InviteOption {
	return func(s *InviteService) {
		if path != "" {
			s.acceptPath = path
		}
	}
}

// WithInviteTokenSize adjusts the random token length in bytes.
func WithInviteTokenSize(size int) InviteOption {
	return func(s *InviteService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithAcceptanceResend controls re-accepting an already accepted token. When
// enabled the owner notification is sent again on every accept, matching the
// historical behaviour; when disabled (the default) re-acceptance is a no-op.
func WithAcceptanceResend(enabled bool) InviteOption {
	return func(s *InviteService) {
		s.resendAcceptance = enabled
	}
}

// InviteService manages the invitation workflow: issuing single-use tokens
// and redeeming them into group membership.
type InviteService struct {
	db               *gorm.DB
	groups           *GroupService
	notifier         Notifier
	auditService     *AuditService
	baseURL          string
	acceptPath       string
	tokenLength      int
	resendAcceptance bool
	now              func() time.Time
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(db *gorm.DB, groups *GroupService, notifier Notifier, auditService *AuditService, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}
	if groups == nil {
		return nil, errors.New("invite service: group service is required")
	}

	service := &InviteService{
		db:           db,
		groups:       groups,
		notifier:     notifier,
		auditService: auditService,
		acceptPath:   "/invites/accept/",
		tokenLength:  defaultInviteTokenBytes,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Invite creates a pending invitation for the email and mails the accept link.
// Delivery is best effort; the invitation exists whether or not the mail went
// out. A token collision surfaces as a constraint violation, never silently.
func (s *InviteService) Invite(ctx context.Context, groupID, email string) (*models.Invitation, string, string, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	if email == "" {
		return nil, "", "", apperrors.NewBadRequest("email is required")
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, "", "", err
	}

	rawToken, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return nil, "", "", fmt.Errorf("invite service: generate token: %w", err)
	}

	invitation := models.Invitation{
		GroupID:   group.ID,
		Email:     email,
		Status:    models.InvitationStatusPending,
		TokenHash: tokenHash(rawToken),
	}

	if err := s.db.WithContext(ctx).Create(&invitation).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, "", "", apperrors.New("INVITATION_TOKEN_COLLISION", "Invitation token already exists", http.StatusConflict).WithInternal(err)
		}
		return nil, "", "", fmt.Errorf("invite service: create invitation: %w", err)
	}

	metrics.InvitesIssued.Inc()

	link := s.acceptLink(rawToken)
	s.notifyInvitee(ctx, group, email, link)

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "invite.create",
		Resource: invitation.ID,
		Result:   "success",
		Metadata: map[string]any{
			"group_id": group.ID,
			"email":    email,
		},
	})

	invitation.Group = group
	return &invitation, rawToken, link, nil
}

// Accept redeems a token: the invitation flips to accepted, the user is
// resolved (created on first touch) and joins the group, and the group owner
// is notified. When userEmail is empty the invitation's own address is used.
// An unknown token yields ErrInvitationNotFound with no writes.
func (s *InviteService) Accept(ctx context.Context, token, userEmail string) (*models.Group, string, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, "", apperrors.NewBadRequest("token is required")
	}

	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash(token)).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvitationNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("invite service: find invitation: %w", err)
	}

	resolvedEmail := normaliseEmail(userEmail)
	if resolvedEmail == "" {
		resolvedEmail = invitation.Email
	}

	if invitation.Accepted() && !s.resendAcceptance {
		// Already redeemed: hand back the group without touching anything.
		group, err := s.groups.GetByID(ctx, invitation.GroupID)
		if err != nil {
			return nil, "", err
		}
		return group, resolvedEmail, nil
	}

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now().UTC()
		if err := tx.Model(&invitation).Updates(map[string]any{
			"status":      models.InvitationStatusAccepted,
			"accepted_at": now,
		}).Error; err != nil {
			return fmt.Errorf("invite service: mark accepted: %w", err)
		}
		invitation.Status = models.InvitationStatusAccepted
		invitation.AcceptedAt = &now

		resolved, err := getOrCreateUser(ctx, tx, resolvedEmail, "")
		if err != nil {
			return err
		}
		user = resolved

		return s.groups.addMember(ctx, tx, invitation.GroupID, user.ID)
	})
	if err != nil {
		return nil, "", err
	}

	metrics.InvitesAccepted.Inc()

	group, err := s.groups.GetByID(ctx, invitation.GroupID)
	if err != nil {
		return nil, "", err
	}

	s.notifyOwner(ctx, group, user)

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "invite.accept",
		Resource: invitation.ID,
		Result:   "success",
		Metadata: map[string]any{
			"group_id": group.ID,
			"email":    user.Email,
		},
	})

	return group, user.Email, nil
}

// InfoByToken loads an invitation and its group for the public landing page.
func (s *InviteService) InfoByToken(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Preload("Group").
		Where("token_hash = ?", tokenHash(strings.TrimSpace(token))).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invite service: find invitation: %w", err)
	}

	return &invitation, nil
}

// ListForGroup returns the invitations issued for a group, newest first.
func (s *InviteService) ListForGroup(ctx context.Context, groupID string) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	var invitations []models.Invitation
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("invite service: list invitations: %w", err)
	}

	return invitations, nil
}

func (s *InviteService) acceptLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return s.baseURL + s.acceptPath + token
}

func (s *InviteService) notifyInvitee(ctx context.Context, group *models.Group, email, link string) {
	if s.notifier == nil {
		return
	}
	subject := fmt.Sprintf("You're invited to join group '%s'", group.Name)
	html := fmt.Sprintf(
		"<p>Hello,</p>"+
			"<p>You were invited to join the group <b>%s</b>.</p>"+
			"<p>Description: %s</p>"+
			"<p>To accept, click here: <a href='%s'>%s</a></p>",
		group.Name, group.Description, link, link,
	)
	plain := fmt.Sprintf("You were invited to join the group %q. To accept, open: %s", group.Name, link)
	s.notifier.Send(ctx, email, subject, html, plain)
}

func (s *InviteService) notifyOwner(ctx context.Context, group *models.Group, joined *models.User) {
	if s.notifier == nil {
		return
	}

	owner, err := s.groups.Owner(ctx, group.ID)
	if err != nil {
		return
	}

	ownerName := owner.FullName
	if ownerName == "" {
		ownerName = owner.Email
	}

	subject := fmt.Sprintf("%s accepted your invitation to '%s'", joined.Email, group.Name)
	html := fmt.Sprintf(
		"<p>Hello %s,</p>"+
			"<p><b>%s</b> has accepted your invitation to join <b>%s</b>.</p>",
		ownerName, joined.Email, group.Name,
	)
	plain := fmt.Sprintf("%s has accepted your invitation to join %q.", joined.Email, group.Name)
	s.notifier.Send(ctx, owner.Email, subject, html, plain)
}

func tokenHash(token string) string {
	checksum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(checksum[:])
}
