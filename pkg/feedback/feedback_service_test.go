package feedback

import (
	"context"
	"errors"
	"testing"

	"smart-kitchen/domain"
	"smart-kitchen/internal/utils/testdb"
	"smart-kitchen/pkg/content"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendMail(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return m.err
}

func TestSubmit_StoresAndForwards(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	svc := NewFeedbackService(content.NewContentRepository(testdb.New(t)), mailer, "support@example.com")
	userID := uuid.NewString()
	rating := 4

	res, err := svc.Submit(ctx, domain.SubmitFeedbackRequest{Content: " Recipes <b>rock</b> ", Rating: &rating}, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFeedbackCategory, res.Category)
	assert.Equal(t, "Recipes <b>rock</b>", res.Content)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "support@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, userID)
	assert.Contains(t, mailer.sent[0].body, "&lt;b&gt;rock&lt;/b&gt;")
	assert.Contains(t, mailer.sent[0].body, "4/5")

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ID, list[0].ID)
	require.NotNil(t, list[0].Rating)
	assert.Equal(t, 4, *list[0].Rating)
}

func TestSubmit_MailFailureIsNotReturned(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := NewFeedbackService(content.NewContentRepository(testdb.New(t)), mailer, "support@example.com")

	_, err := svc.Submit(context.Background(), domain.SubmitFeedbackRequest{Content: "hi", Category: "Bug"}, uuid.NewString())
	assert.NoError(t, err)
	assert.Len(t, mailer.sent, 1)
}

func TestSubmit_NoMailerConfigured(t *testing.T) {
	svc := NewFeedbackService(content.NewContentRepository(testdb.New(t)), nil, "")

	res, err := svc.Submit(context.Background(), domain.SubmitFeedbackRequest{Content: "hi", Category: "Bug"}, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, "bug", res.Category)
}

func TestSubmit_Rejects(t *testing.T) {
	svc := NewFeedbackService(content.NewContentRepository(testdb.New(t)), nil, "")

	_, err := svc.Submit(context.Background(), domain.SubmitFeedbackRequest{Content: "   "}, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrEmptyFeedback)

	_, err = svc.Submit(context.Background(), domain.SubmitFeedbackRequest{Content: "hi"}, "nope")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestList_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedbackService(content.NewContentRepository(testdb.New(t)), nil, "")

	_, err := svc.Submit(ctx, domain.SubmitFeedbackRequest{Content: "mine"}, uuid.NewString())
	require.NoError(t, err)

	list, err := svc.List(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, list)
}
