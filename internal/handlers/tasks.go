package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pitcrewhq/pitcrew/internal/middleware"
	"github.com/pitcrewhq/pitcrew/internal/services"
	appErrors "github.com/pitcrewhq/pitcrew/pkg/errors"
	"github.com/pitcrewhq/pitcrew/pkg/response"
)

type TaskHandler struct {
	tasks *services.TaskService
}

type createTaskRequest struct {
	Title         string     `json:"title" validate:"required,min=1,max=200"`
	Description   string     `json:"description" validate:"omitempty,max=2000"`
	AssigneeEmail string     `json:"assignee_email" validate:"omitempty,email"`
	DueDate       *time.Time `json:"due_date"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done"`
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// POST /api/groups/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var body createTaskRequest
	if !bindAndValidate(c, &body) {
		return
	}

	task, err := h.tasks.Create(requestContext(c), c.Param("id"), services.CreateTaskInput{
		Title:         body.Title,
		Description:   body.Description,
		AssigneeEmail: body.AssigneeEmail,
		DueDate:       body.DueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, task)
}

// GET /api/groups/:id/tasks
func (h *TaskHandler) ListForGroup(c *gin.Context) {
	tasks, err := h.tasks.ListForGroup(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tasks)
}

// GET /api/tasks/assigned
func (h *TaskHandler) ListAssigned(c *gin.Context) {
	email := c.GetString(middleware.CtxUserEmailKey)
	if email == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tasks, err := h.tasks.ListForAssignee(requestContext(c), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tasks)
}

// PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var body updateTaskStatusRequest
	if !bindAndValidate(c, &body) {
		return
	}

	task, err := h.tasks.UpdateStatus(requestContext(c), c.Param("id"), body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}
