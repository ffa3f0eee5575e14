package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitcrewhq/pitcrew/internal/middleware"
	"github.com/pitcrewhq/pitcrew/internal/services"
	appErrors "github.com/pitcrewhq/pitcrew/pkg/errors"
	"github.com/pitcrewhq/pitcrew/pkg/response"
)

type GroupHandler struct {
	groups *services.GroupService
}

type createGroupRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Description  string `json:"description" validate:"omitempty,max=500"`
	CreatorEmail string `json:"creator_email" validate:"omitempty,email"`
}

func NewGroupHandler(db *gorm.DB) (*GroupHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	groups, err := services.NewGroupService(db, audit)
	if err != nil {
		return nil, err
	}
	return &GroupHandler{groups: groups}, nil
}

// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var body createGroupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	// The creator defaults to the authenticated caller; an explicit
	// creator_email lets trusted clients create groups on behalf of others.
	creator := body.CreatorEmail
	if creator == "" {
		creator = c.GetString(middleware.CtxUserEmailKey)
	}
	if creator == "" {
		response.Error(c, appErrors.NewBadRequest("creator email is required"))
		return
	}

	group, err := h.groups.Create(requestContext(c), services.CreateGroupInput{
		Name:         body.Name,
		Description:  body.Description,
		CreatorEmail: creator,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, group)
}

// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, groups)
}

// GET /api/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, group)
}

// GET /api/groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	members, err := h.groups.ListMembers(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}
