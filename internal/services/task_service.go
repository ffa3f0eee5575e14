package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pitcrewhq/pitcrew/internal/models"
	apperrors "github.com/pitcrewhq/pitcrew/pkg/errors"
)

// ErrTaskNotFound is returned when a task lookup misses.
var ErrTaskNotFound = apperrors.New("TASK_NOT_FOUND", "Task not found", http.StatusNotFound)

// CreateTaskInput captures the fields accepted when creating a task.
type CreateTaskInput struct {
	Title         string     `json:"title" validate:"required,min=1,max=200"`
	Description   string     `json:"description" validate:"max=2000"`
	AssigneeEmail string     `json:"assignee_email" validate:"omitempty,email"`
	DueDate       *time.Time `json:"due_date"`
}

// TaskService manages tasks within groups.
type TaskService struct {
	db           *gorm.DB
	groups       *GroupService
	notifier     Notifier
	auditService *AuditService
}

// NewTaskService constructs a TaskService.
func NewTaskService(db *gorm.DB, groups *GroupService, notifier Notifier, auditService *AuditService) (*TaskService, error) {
	if db == nil {
		return nil, errors.New("task service: db is required")
	}
	if groups == nil {
		return nil, errors.New("task service: group service is required")
	}

	return &TaskService{
		db:           db,
		groups:       groups,
		notifier:     notifier,
		auditService: auditService,
	}, nil
}

// Create persists a task for the group and, when an assignee is named, mails
// them exactly once. The assignee does not have to be a member of the group;
// the address is recorded as given and the user row is created on first touch.
func (s *TaskService) Create(ctx context.Context, groupID string, input CreateTaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		GroupID:     group.ID,
		Status:      models.TaskStatusTodo,
		DueDate:     input.DueDate,
	}

	assignee := normaliseEmail(input.AssigneeEmail)
	if assignee != "" {
		if _, err := getOrCreateUser(ctx, s.db, assignee, ""); err != nil {
			return nil, err
		}
		task.AssigneeEmail = &assignee
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("task service: create task: %w", err)
	}

	if assignee != "" {
		s.notifyAssignee(ctx, group, &task, assignee)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "task.create",
		Resource: task.ID,
		Result:   "success",
		Metadata: map[string]any{
			"group_id": group.ID,
			"title":    task.Title,
		},
	})

	task.Group = group
	return &task, nil
}

// GetByID fetches a single task.
func (s *TaskService) GetByID(ctx context.Context, id string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task service: find task: %w", err)
	}

	return &task, nil
}

// ListForGroup returns the group's tasks in creation order.
func (s *TaskService) ListForGroup(ctx context.Context, groupID string) ([]models.Task, error) {
	ctx = ensureContext(ctx)

	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task service: list tasks: %w", err)
	}

	return tasks, nil
}

// ListForAssignee returns the tasks assigned to an email address, most recent first.
func (s *TaskService) ListForAssignee(ctx context.Context, email string) ([]models.Task, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	var tasks []models.Task
	if err := s.db.WithContext(ctx).
		Where("assignee_email = ?", email).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task service: list tasks for assignee: %w", err)
	}

	return tasks, nil
}

// UpdateStatus moves a task into a new workflow status.
func (s *TaskService) UpdateStatus(ctx context.Context, id, status string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
	default:
		return nil, apperrors.NewBadRequest("invalid task status")
	}

	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(task).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("task service: update status: %w", err)
	}
	task.Status = status

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "task.update_status",
		Resource: task.ID,
		Result:   "success",
		Metadata: map[string]any{"status": status},
	})

	return task, nil
}

func (s *TaskService) notifyAssignee(ctx context.Context, group *models.Group, task *models.Task, email string) {
	if s.notifier == nil {
		return
	}

	subject := fmt.Sprintf("New task in '%s': %s", group.Name, task.Title)
	due := "none"
	if task.DueDate != nil {
		due = task.DueDate.Format("2006-01-02")
	}
	html := fmt.Sprintf(
		"<p>Hello,</p>"+
			"<p>A new task was assigned to you in the group <b>%s</b>:</p>"+
			"<p><b>%s</b></p>"+
			"<p>%s</p>"+
			"<p>Due date: %s</p>",
		group.Name, task.Title, task.Description, due,
	)
	plain := fmt.Sprintf("A new task was assigned to you in the group %q: %s (due: %s)", group.Name, task.Title, due)
	s.notifier.Send(ctx, email, subject, html, plain)
}
