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

type MemberHandler struct {
	members *services.MemberService
}

type memberRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,max=40"`
	Organization string `json:"organization" validate:"omitempty,max=120"`
}

func NewMemberHandler(db *gorm.DB) (*MemberHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	members, err := services.NewMemberService(db, audit)
	if err != nil {
		return nil, err
	}
	return &MemberHandler{members: members}, nil
}

func (h *MemberHandler) callerID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

// GET /api/members
func (h *MemberHandler) List(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	members, err := h.members.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}

// GET /api/members/:id
func (h *MemberHandler) Get(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	member, err := h.members.Get(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, member)
}

// POST /api/members
func (h *MemberHandler) Create(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var body memberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	member, err := h.members.Create(requestContext(c), userID, services.MemberInput{
		Name:         body.Name,
		Email:        body.Email,
		Phone:        body.Phone,
		Organization: body.Organization,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, member)
}

// PUT /api/members/:id
func (h *MemberHandler) Update(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var body memberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	member, err := h.members.Update(requestContext(c), userID, c.Param("id"), services.MemberInput{
		Name:         body.Name,
		Email:        body.Email,
		Phone:        body.Phone,
		Organization: body.Organization,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, member)
}

// DELETE /api/members/:id
func (h *MemberHandler) Delete(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	if err := h.members.Delete(requestContext(c), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
