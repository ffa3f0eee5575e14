package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemberServiceCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner, err := env.users.GetOrCreate(ctx, "lead@x.com", "Avery Lead")
	require.NoError(t, err)

	created, err := env.members.Create(ctx, owner.ID, MemberInput{
		Name:         "Dana Driver",
		Email:        "Dana@X.com",
		Phone:        "+44 1234 5678",
		Organization: "Apex Racing",
	})
	require.NoError(t, err)
	require.Equal(t, "dana@x.com", created.Email)

	listed, err := env.members.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	updated, err := env.members.Update(ctx, owner.ID, created.ID, MemberInput{
		Name:  "Dana D.",
		Phone: "+44 9999 0000",
	})
	require.NoError(t, err)
	require.Equal(t, "Dana D.", updated.Name)
	require.Equal(t, "+44 9999 0000", updated.Phone)
	require.Empty(t, updated.Organization)

	require.NoError(t, env.members.Delete(ctx, owner.ID, created.ID))

	_, err = env.members.Get(ctx, owner.ID, created.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberServiceScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, err := env.users.GetOrCreate(ctx, "alice@x.com", "")
	require.NoError(t, err)
	bob, err := env.users.GetOrCreate(ctx, "bob@x.com", "")
	require.NoError(t, err)

	contact, err := env.members.Create(ctx, alice.ID, MemberInput{Name: "Shared Friend"})
	require.NoError(t, err)

	// Other users cannot see, edit or delete someone else's contacts.
	_, err = env.members.Get(ctx, bob.ID, contact.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = env.members.Update(ctx, bob.ID, contact.ID, MemberInput{Name: "Hijacked"})
	require.ErrorIs(t, err, ErrMemberNotFound)

	require.ErrorIs(t, env.members.Delete(ctx, bob.ID, contact.ID), ErrMemberNotFound)

	bobList, err := env.members.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, bobList)
}
