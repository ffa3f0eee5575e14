package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pitcrewhq/pitcrew/internal/middleware"
	"github.com/pitcrewhq/pitcrew/internal/models"
	"github.com/pitcrewhq/pitcrew/internal/services"
	"github.com/pitcrewhq/pitcrew/pkg/response"
)

type InviteHandler struct {
	invites *services.InviteService
	tasks   *services.TaskService
}

func NewInviteHandler(invites *services.InviteService, tasks *services.TaskService) *InviteHandler {
	return &InviteHandler{invites: invites, tasks: tasks}
}

type createInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type acceptInviteRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type inviteCreatedResponse struct {
	Invitation *models.Invitation `json:"invitation"`
	Token      string             `json:"token"`
	Link       string             `json:"link"`
}

type inviteInfoResponse struct {
	Email            string     `json:"email"`
	Status           string     `json:"status"`
	GroupName        string     `json:"group_name"`
	GroupDescription string     `json:"group_description,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
}

type acceptInviteResponse struct {
	Group *models.Group `json:"group"`
	Email string        `json:"email"`
	Tasks []models.Task `json:"tasks"`
}

// POST /api/groups/:id/invites
func (h *InviteHandler) Create(c *gin.Context) {
	var body createInviteRequest
	if !bindAndValidate(c, &body) {
		return
	}

	invitation, token, link, err := h.invites.Invite(requestContext(c), c.Param("id"), body.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, inviteCreatedResponse{
		Invitation: invitation,
		Token:      token,
		Link:       link,
	})
}

// GET /api/groups/:id/invites
func (h *InviteHandler) ListForGroup(c *gin.Context) {
	invitations, err := h.invites.ListForGroup(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invitations)
}

// GET /invites/:token
//
// Public: shown to recipients before they decide to accept, so the payload
// carries no identifiers beyond what the invite email already contains.
func (h *InviteHandler) Info(c *gin.Context) {
	invitation, err := h.invites.InfoByToken(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	info := inviteInfoResponse{
		Email:      invitation.Email,
		Status:     invitation.Status,
		CreatedAt:  invitation.CreatedAt,
		AcceptedAt: invitation.AcceptedAt,
	}
	if invitation.Group != nil {
		info.GroupName = invitation.Group.Name
		info.GroupDescription = invitation.Group.Description
	}

	response.Success(c, http.StatusOK, info)
}

// POST /invites/:token/accept
//
// Public: the token is the credential. The optional body email overrides the
// invitation address; an authenticated caller's identity wins over both.
func (h *InviteHandler) Accept(c *gin.Context) {
	var body acceptInviteRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &body) {
			return
		}
	}

	email := body.Email
	if authed := c.GetString(middleware.CtxUserEmailKey); authed != "" {
		email = authed
	}

	ctx := requestContext(c)
	group, resolvedEmail, err := h.invites.Accept(ctx, c.Param("token"), email)
	if err != nil {
		response.Error(c, err)
		return
	}

	tasks, err := h.tasks.ListForAssignee(ctx, resolvedEmail)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, acceptInviteResponse{
		Group: group,
		Email: resolvedEmail,
		Tasks: tasks,
	})
}
