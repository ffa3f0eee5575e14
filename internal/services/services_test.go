package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pitcrewhq/pitcrew/internal/database/testutil"
)

type sentMessage struct {
	To      string
	Subject string
	HTML    string
	Plain   string
}

// recordingNotifier captures every notification for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []sentMessage
	fail     bool
}

func (n *recordingNotifier) Send(_ context.Context, to, subject, htmlBody, plainBody string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, sentMessage{To: to, Subject: subject, HTML: htmlBody, Plain: plainBody})
	return !n.fail
}

func (n *recordingNotifier) sent() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentMessage, len(n.messages))
	copy(out, n.messages)
	return out
}

func (n *recordingNotifier) sentTo(to string) []sentMessage {
	var out []sentMessage
	for _, msg := range n.sent() {
		if strings.EqualFold(msg.To, to) {
			out = append(out, msg)
		}
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	users    *UserService
	groups   *GroupService
	invites  *InviteService
	tasks    *TaskService
	members  *MemberService
	audit    *AuditService
	notifier *recordingNotifier
	now      time.Time
}

func newTestEnv(t *testing.T, opts ...InviteOption) *testEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	audit, err := NewAuditService(db)
	require.NoError(t, err)

	users, err := NewUserService(db)
	require.NoError(t, err)

	groups, err := NewGroupService(db, audit)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	inviteOpts := append([]InviteOption{
		WithInviteBaseURL("https://pitcrew.test"),
		WithInviteClock(func() time.Time { return now }),
	}, opts...)
	invites, err := NewInviteService(db, groups, notifier, audit, inviteOpts...)
	require.NoError(t, err)

	tasks, err := NewTaskService(db, groups, notifier, audit)
	require.NoError(t, err)

	members, err := NewMemberService(db, audit)
	require.NoError(t, err)

	return &testEnv{
		db:       db,
		users:    users,
		groups:   groups,
		invites:  invites,
		tasks:    tasks,
		members:  members,
		audit:    audit,
		notifier: notifier,
		now:      now,
	}
}
