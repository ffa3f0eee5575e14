package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pitcrewhq/pitcrew/internal/handlers/testutil"
	"github.com/pitcrewhq/pitcrew/internal/models"
)

type groupPayload struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Members     []models.User `json:"members"`
}

func createGroup(t *testing.T, env *testutil.Env, token, name string) groupPayload {
	t.Helper()

	w := env.Request(http.MethodPost, "/api/groups", map[string]string{
		"name":        name,
		"description": "Track-side operations",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	var group groupPayload
	testutil.DecodeInto(t, resp.Data, &group)
	require.NotEmpty(t, group.ID)
	return group
}

func TestGroupEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Register("lead@x.com", "supersecret1", "Avery Lead")

	// Creation requires authentication.
	w := env.Request(http.MethodPost, "/api/groups", map[string]string{"name": "Pit Crew"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	group := createGroup(t, env, token, "Pit Crew")
	require.Len(t, group.Members, 1)
	require.Equal(t, "lead@x.com", group.Members[0].Email)

	w = env.Request(http.MethodGet, "/api/groups", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.DecodeResponse(t, w)
	var groups []groupPayload
	testutil.DecodeInto(t, resp.Data, &groups)
	require.Len(t, groups, 1)

	w = env.Request(http.MethodGet, "/api/groups/"+group.ID+"/members", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Request(http.MethodGet, "/api/groups/nope", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestInviteFlowOverHTTP(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Register("lead@x.com", "supersecret1", "Avery Lead")
	group := createGroup(t, env, token, "Pit Crew")

	// Issue the invitation.
	w := env.Request(http.MethodPost, "/api/groups/"+group.ID+"/invites", map[string]string{
		"email": "new@x.com",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	var created struct {
		Token string `json:"token"`
		Link  string `json:"link"`
	}
	testutil.DecodeInto(t, resp.Data, &created)
	require.NotEmpty(t, created.Token)
	require.True(t, strings.HasSuffix(created.Link, created.Token))

	// The invitee got exactly one email carrying the accept link.
	var inviteMail []testutil.Notification
	for _, msg := range env.Notifier.Messages() {
		if msg.To == "new@x.com" {
			inviteMail = append(inviteMail, msg)
		}
	}
	require.Len(t, inviteMail, 1)
	require.Contains(t, inviteMail[0].HTML, created.Link)

	// The public landing page works without credentials.
	w = env.Request(http.MethodGet, "/invites/"+created.Token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "Pit Crew")

	// Accepting without a body falls back to the invited address.
	w = env.Request(http.MethodPost, "/invites/"+created.Token+"/accept", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp = testutil.DecodeResponse(t, w)
	var accepted struct {
		Group groupPayload  `json:"group"`
		Email string        `json:"email"`
		Tasks []models.Task `json:"tasks"`
	}
	testutil.DecodeInto(t, resp.Data, &accepted)
	require.Equal(t, group.ID, accepted.Group.ID)
	require.Equal(t, "new@x.com", accepted.Email)
	require.Len(t, accepted.Group.Members, 2)
	require.Empty(t, accepted.Tasks)

	// An unknown token is a 404.
	w = env.Request(http.MethodPost, "/invites/bogus/accept", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Register("lead@x.com", "supersecret1", "Avery Lead")
	group := createGroup(t, env, token, "Pit Crew")

	w := env.Request(http.MethodPost, "/api/groups/"+group.ID+"/tasks", map[string]string{
		"title":          "Check oil",
		"assignee_email": "new@x.com",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	var task models.Task
	testutil.DecodeInto(t, resp.Data, &task)
	require.Equal(t, models.TaskStatusTodo, task.Status)

	// The assignee was told about the task, naming group and title.
	messages := env.Notifier.Messages()
	require.NotEmpty(t, messages)
	last := messages[len(messages)-1]
	require.Equal(t, "new@x.com", last.To)
	require.Contains(t, last.Subject, "Pit Crew")
	require.Contains(t, last.Subject, "Check oil")

	w = env.Request(http.MethodGet, "/api/groups/"+group.ID+"/tasks", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []models.Task
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &tasks)
	require.Len(t, tasks, 1)

	w = env.Request(http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]string{
		"status": "done",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]string{
		"status": "paused",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemberDirectoryEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Register("lead@x.com", "supersecret1", "Avery Lead")

	w := env.Request(http.MethodPost, "/api/members", map[string]string{
		"name":         "Dana Driver",
		"email":        "dana@x.com",
		"organization": "Apex Racing",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var member models.Member
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &member)

	w = env.Request(http.MethodGet, "/api/members", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	// Another account sees an empty directory and cannot touch the record.
	otherToken := env.Register("other@x.com", "supersecret1", "")

	w = env.Request(http.MethodGet, "/api/members", nil, otherToken)
	require.Equal(t, http.StatusOK, w.Code)
	var others []models.Member
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &others)
	require.Empty(t, others)

	w = env.Request(http.MethodDelete, "/api/members/"+member.ID, nil, otherToken)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.Request(http.MethodDelete, "/api/members/"+member.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")
}
