package contact_test

import (
	"context"
	"testing"

	"github.com/example/storefront/internal/contact"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*contact.Service, *mocks.MockContactStore, *mocks.MockPublisher) {
	t.Helper()
	cs := mocks.NewMockContactStore()
	pub := mocks.NewMockPublisher()
	return contact.NewService(cs, pub), cs, pub
}

func submit(t *testing.T, svc *contact.Service, userID, email string) *contact.Message {
	t.Helper()
	m, err := svc.Submit(context.Background(), userID, "Ada", email, "Broken charger", "It stopped working after a week.")
	require.NoError(t, err)
	return m
}

func TestSubmit_StoresMessageAndPublishes(t *testing.T) {
	svc, _, pub := newTestService(t)

	m := submit(t, svc, "", "ada@example.com")

	assert.Equal(t, contact.StatusNew, m.Status)
	assert.Empty(t, m.UserID)
	require.Len(t, pub.Published, 1)
	assert.Equal(t, events.TypeContactReceived, pub.Published[0].Event.Type)
}

func TestSubmit_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "", "Ada", "ada@example.com", "", "body")
	assert.ErrorIs(t, err, contact.ErrMissingFields)

	_, err = svc.Submit(context.Background(), "", "", "", "subject", "body")
	assert.ErrorIs(t, err, contact.ErrMissingFields)
}

func TestSubmit_SavedEvenIfPublishFails(t *testing.T) {
	svc, cs, pub := newTestService(t)
	pub.PublishErr = assert.AnError

	m := submit(t, svc, "", "ada@example.com")

	stored, err := cs.GetMessage(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, stored.ID)
}

func TestGetThread_OwnerByUserID(t *testing.T) {
	svc, _, _ := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	thread, err := svc.GetThread(context.Background(), contact.Principal{UserID: "user-1"}, m.ID)

	require.NoError(t, err)
	assert.Equal(t, m.ID, thread.Message.ID)
}

func TestGetThread_GuestByEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	m := submit(t, svc, "", "ada@example.com")

	_, err := svc.GetThread(context.Background(), contact.Principal{Email: "ada@example.com"}, m.ID)
	assert.NoError(t, err)

	_, err = svc.GetThread(context.Background(), contact.Principal{Email: "mallory@example.com"}, m.ID)
	assert.ErrorIs(t, err, contact.ErrNotOwner)
}

func TestGetThread_StrangerDenied(t *testing.T) {
	svc, _, _ := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	_, err := svc.GetThread(context.Background(), contact.Principal{UserID: "user-2"}, m.ID)
	assert.ErrorIs(t, err, contact.ErrNotOwner)

	// Email matching does not bypass ownership of a registered user's
	// message.
	_, err = svc.GetThread(context.Background(), contact.Principal{Email: "ada@example.com"}, m.ID)
	assert.ErrorIs(t, err, contact.ErrNotOwner)
}

func TestGetThread_AdminReadsEverythingAndMarksRead(t *testing.T) {
	svc, cs, _ := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	thread, err := svc.GetThread(context.Background(), contact.Principal{UserID: "staff", Admin: true}, m.ID)

	require.NoError(t, err)
	assert.Equal(t, contact.StatusRead, thread.Message.Status)

	stored, _ := cs.GetMessage(context.Background(), m.ID)
	assert.Equal(t, contact.StatusRead, stored.Status)
}

func TestGetThread_OwnerReadDoesNotMarkRead(t *testing.T) {
	svc, cs, _ := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	_, err := svc.GetThread(context.Background(), contact.Principal{UserID: "user-1"}, m.ID)
	require.NoError(t, err)

	stored, _ := cs.GetMessage(context.Background(), m.ID)
	assert.Equal(t, contact.StatusNew, stored.Status)
}

func TestGetThread_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetThread(context.Background(), contact.Principal{Admin: true}, "missing")
	assert.ErrorIs(t, err, contact.ErrMessageNotFound)
}

func TestListFor(t *testing.T) {
	svc, _, _ := newTestService(t)
	submit(t, svc, "user-1", "ada@example.com")
	submit(t, svc, "user-2", "bob@example.com")
	submit(t, svc, "", "guest@example.com")

	all, err := svc.ListFor(context.Background(), contact.Principal{Admin: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.ListFor(context.Background(), contact.Principal{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := svc.ListFor(context.Background(), contact.Principal{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostReply_AdminFlipsStatusAndPublishes(t *testing.T) {
	svc, cs, pub := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	r, err := svc.PostReply(context.Background(), contact.Principal{UserID: "staff", Admin: true}, m.ID, "We shipped a replacement.")

	require.NoError(t, err)
	assert.Equal(t, contact.RoleAdmin, r.SenderRole)

	stored, _ := cs.GetMessage(context.Background(), m.ID)
	assert.Equal(t, contact.StatusReplied, stored.Status)

	// Submit event plus reply event.
	types := pub.EventTypes()
	require.Len(t, types, 2)
	assert.Equal(t, events.TypeContactReplied, types[1])
}

func TestPostReply_UserKeepsStatus(t *testing.T) {
	svc, cs, _ := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	r, err := svc.PostReply(context.Background(), contact.Principal{UserID: "user-1"}, m.ID, "Any update?")

	require.NoError(t, err)
	assert.Equal(t, contact.RoleUser, r.SenderRole)

	stored, _ := cs.GetMessage(context.Background(), m.ID)
	assert.Equal(t, contact.StatusNew, stored.Status)
}

func TestPostReply_StrangerDenied(t *testing.T) {
	svc, _, _ := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	_, err := svc.PostReply(context.Background(), contact.Principal{UserID: "user-2"}, m.ID, "hi")
	assert.ErrorIs(t, err, contact.ErrNotOwner)
}

func TestPostReply_EmptyBody(t *testing.T) {
	svc, _, _ := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	_, err := svc.PostReply(context.Background(), contact.Principal{UserID: "user-1"}, m.ID, "")
	assert.ErrorIs(t, err, contact.ErrEmptyReply)
}

func TestThreadOrdering(t *testing.T) {
	svc, _, _ := newTestService(t)
	m := submit(t, svc, "user-1", "ada@example.com")

	_, err := svc.PostReply(context.Background(), contact.Principal{UserID: "user-1"}, m.ID, "first")
	require.NoError(t, err)
	_, err = svc.PostReply(context.Background(), contact.Principal{UserID: "staff", Admin: true}, m.ID, "second")
	require.NoError(t, err)

	thread, err := svc.GetThread(context.Background(), contact.Principal{UserID: "user-1"}, m.ID)
	require.NoError(t, err)
	require.Len(t, thread.Replies, 2)
	assert.Equal(t, "first", thread.Replies[0].Body)
	assert.Equal(t, "second", thread.Replies[1].Body)
}
