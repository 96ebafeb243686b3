package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqdesk/internal/ai"
	"faqdesk/internal/model"
	"faqdesk/internal/proposal"
)

type fakeSessionStore struct {
	sessions map[uint]*model.Session
	lastURL  map[uint]string
}

func newFakeSessionStore(sessions ...*model.Session) *fakeSessionStore {
	store := &fakeSessionStore{
		sessions: make(map[uint]*model.Session),
		lastURL:  make(map[uint]string),
	}
	for _, s := range sessions {
		store.sessions[s.ID] = s
	}
	return store
}

func (s *fakeSessionStore) Create(session *model.Session) error {
	session.ID = uint(len(s.sessions) + 1)
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeSessionStore) ListByUserID(userID uint) ([]model.Session, error) {
	var out []model.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (s *fakeSessionStore) GetByIDAndUserID(sessionID, userID uint) (*model.Session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, nil
	}
	return sess, nil
}

func (s *fakeSessionStore) DeleteByIDAndUserID(sessionID, userID uint) error {
	delete(s.sessions, sessionID)
	return nil
}

func (s *fakeSessionStore) SetLastUploadURL(sessionID uint, url string) error {
	s.lastURL[sessionID] = url
	if sess, ok := s.sessions[sessionID]; ok {
		sess.LastUploadURL = url
	}
	return nil
}

type fakeTurnStore struct {
	turns []*model.Turn
}

func (s *fakeTurnStore) Create(turn *model.Turn) error {
	turn.ID = uint(len(s.turns) + 1)
	s.turns = append(s.turns, turn)
	return nil
}

func (s *fakeTurnStore) ListBySessionID(sessionID uint, limit int) ([]model.Turn, error) {
	var out []model.Turn
	for _, turn := range s.turns {
		if turn.SessionID == sessionID {
			out = append(out, *turn)
		}
	}
	return out, nil
}

func (s *fakeTurnStore) SetAssetPreviewURL(turnID, sessionID uint, url string) (int64, error) {
	for _, turn := range s.turns {
		if turn.ID == turnID && turn.SessionID == sessionID {
			turn.AssetPreviewURL = url
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeTurnStore) DeleteBySessionID(sessionID uint) error {
	kept := s.turns[:0]
	for _, turn := range s.turns {
		if turn.SessionID != sessionID {
			kept = append(kept, turn)
		}
	}
	s.turns = kept
	return nil
}

type fakeProposalStore struct {
	pending map[uint]proposal.Proposal
	deletes int
}

func newFakeProposalStore() *fakeProposalStore {
	return &fakeProposalStore{pending: make(map[uint]proposal.Proposal)}
}

func (s *fakeProposalStore) Get(ctx context.Context, sessionID uint) (proposal.Proposal, bool, error) {
	p, ok := s.pending[sessionID]
	return p, ok, nil
}

func (s *fakeProposalStore) Set(ctx context.Context, sessionID uint, p proposal.Proposal) error {
	s.pending[sessionID] = p
	return nil
}

func (s *fakeProposalStore) Delete(ctx context.Context, sessionID uint) error {
	delete(s.pending, sessionID)
	s.deletes++
	return nil
}

type fakeFaqLister struct {
	faqs []model.Faq
}

func (f *fakeFaqLister) List(ctx context.Context) ([]model.Faq, error) {
	return f.faqs, nil
}

type fakeActivityRenderer struct {
	text string
}

func (f *fakeActivityRenderer) RenderText(ctx context.Context) (string, error) {
	return f.text, nil
}

type fakeApplier struct {
	applied []proposal.Proposal
	message string
}

func (f *fakeApplier) Apply(ctx context.Context, p proposal.Proposal, actor string) (string, error) {
	f.applied = append(f.applied, p)
	return f.message, nil
}

type scriptedLLM struct {
	reply    string
	messages []ai.ChatMessage
}

func (l *scriptedLLM) Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	l.messages = messages
	return l.reply, nil
}

type chatFixture struct {
	sessions  *fakeSessionStore
	turns     *fakeTurnStore
	proposals *fakeProposalStore
	applier   *fakeApplier
	llm       *scriptedLLM
	svc       *ChatService
}

func newChatFixture(reply string) *chatFixture {
	f := &chatFixture{
		sessions:  newFakeSessionStore(&model.Session{ID: 1, UserID: 7, Title: "Help desk"}),
		turns:     &fakeTurnStore{},
		proposals: newFakeProposalStore(),
		applier:   &fakeApplier{message: "Deleted FAQ \"Old\"."},
		llm:       &scriptedLLM{reply: reply},
	}
	f.svc = NewChatService(
		f.sessions,
		f.turns,
		f.proposals,
		&fakeFaqLister{faqs: []model.Faq{{ID: "faq-1", Question: "Q", Answer: "A", Category: "General"}}},
		&fakeActivityRenderer{text: "2026-08-31T10:00:00Z add faq-1 by alex"},
		f.applier,
		f.llm,
		ai.ChatConfig{Model: "test-model"},
		20,
		30,
	)
	return f
}

func TestSendTurnPersistsBothTurns(t *testing.T) {
	f := newChatFixture("Printers live on the second floor.")

	res, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "Where are the printers?"})
	require.NoError(t, err)

	assert.Equal(t, model.SenderUser, res.UserTurn.Sender)
	assert.Equal(t, model.SenderAssistant, res.AssistantTurn.Sender)
	assert.Equal(t, "Printers live on the second floor.", res.AssistantTurn.Text)
	assert.Nil(t, res.Proposal)
	require.Len(t, f.turns.turns, 2)
}

func TestSendTurnEmptyTextRejected(t *testing.T) {
	f := newChatFixture("ignored")

	_, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "   "})
	assert.ErrorIs(t, err, ErrMessageEmpty)
}

func TestSendTurnStoresPendingProposal(t *testing.T) {
	f := newChatFixture(`I suggest removing it.
[SUGGEST_FAQ_PROPOSAL]{"action":"delete","id":"faq-1","reason":"duplicate"}[/SUGGEST_FAQ_PROPOSAL]`)

	res, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "Remove the duplicate FAQ"})
	require.NoError(t, err)
	require.NotNil(t, res.Proposal)
	assert.Equal(t, proposal.ActionDelete, res.Proposal.Action())
	assert.NotEmpty(t, res.ProposalText)

	stored, ok, err := f.proposals.Get(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.Proposal, stored)
	assert.Empty(t, f.applier.applied)
}

func TestSendTurnSupersedesPendingProposalWithoutApplying(t *testing.T) {
	f := newChatFixture("Just an answer, no new suggestion.")
	require.NoError(t, f.proposals.Set(context.Background(), 1, proposal.Delete{ID: "faq-1"}))

	res, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "Actually, tell me about wifi"})
	require.NoError(t, err)
	assert.Nil(t, res.Proposal)

	_, ok, err := f.proposals.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok, "pending proposal should be discarded by the new turn")
	assert.Empty(t, f.applier.applied, "superseded proposal must never be applied")
}

func TestSendTurnMalformedSuggestionYieldsNotice(t *testing.T) {
	f := newChatFixture(`[SUGGEST_FAQ_PROPOSAL]{"action":"add","question":[/SUGGEST_FAQ_PROPOSAL]`)

	res, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "Add a FAQ about badges"})
	require.NoError(t, err)
	assert.Nil(t, res.Proposal)
	assert.NotEmpty(t, res.ProposalError)

	_, ok, _ := f.proposals.Get(context.Background(), 1)
	assert.False(t, ok)
	require.Len(t, f.turns.turns, 2, "both turns persist even when the suggestion is discarded")
}

func TestSendTurnSideActionRendersActivityLog(t *testing.T) {
	f := newChatFixture(`[CUSTOM_ACTION_REQUEST]{"action":"view_faq_log"}[/CUSTOM_ACTION_REQUEST]`)

	res, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "Show me the change log"})
	require.NoError(t, err)
	assert.True(t, res.SideAction)
	assert.Contains(t, res.ActivityLog, "add faq-1 by alex")
	assert.Nil(t, res.Proposal)
}

func TestRecordUploadBackfillsOwnTurn(t *testing.T) {
	f := newChatFixture("ok")
	turn := &model.Turn{SessionID: 1, UserID: 7, Sender: model.SenderUser, Text: "uploading"}
	require.NoError(t, f.turns.Create(turn))

	url := "http://minio/faqdesk-assets/receipt.pdf"
	require.NoError(t, f.svc.RecordUpload(context.Background(), 7, 1, turn.ID, url))
	assert.Equal(t, url, f.turns.turns[0].AssetPreviewURL)
	assert.Equal(t, url, f.sessions.lastURL[1])
}

func TestRecordUploadRejectsTurnFromAnotherSession(t *testing.T) {
	f := newChatFixture("ok")
	f.sessions.sessions[2] = &model.Session{ID: 2, UserID: 8, Title: "Someone else"}
	foreignTurn := &model.Turn{SessionID: 2, UserID: 8, Sender: model.SenderUser, Text: "private"}
	require.NoError(t, f.turns.Create(foreignTurn))

	err := f.svc.RecordUpload(context.Background(), 7, 1, foreignTurn.ID, "http://minio/faqdesk-assets/evil.png")
	assert.ErrorIs(t, err, ErrTurnNotFound)
	assert.Empty(t, f.turns.turns[0].AssetPreviewURL, "a turn outside the caller's session must stay untouched")
}

func TestSendTurnConsumesUploadedImage(t *testing.T) {
	f := newChatFixture("Nice screenshot.")
	url := "http://minio/faqdesk-assets/screenshot.png"
	require.NoError(t, f.sessions.SetLastUploadURL(1, url))

	res, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "Here is the error"})
	require.NoError(t, err)
	assert.Equal(t, url, res.UserTurn.AssetPreviewURL)

	last := f.llm.messages[len(f.llm.messages)-1]
	assert.Equal(t, url, last.ImageURL)
	assert.Equal(t, "", f.sessions.lastURL[1], "upload is consumed at the turn boundary")
}

func TestSendTurnPromptCarriesFaqContext(t *testing.T) {
	f := newChatFixture("ok")

	_, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "hi"})
	require.NoError(t, err)

	require.NotEmpty(t, f.llm.messages)
	system := f.llm.messages[0]
	assert.Equal(t, "system", system.Role)
	assert.True(t, strings.Contains(system.Content, "faq-1"))
}

func TestConfirmProposalAppliesExactlyOnce(t *testing.T) {
	f := newChatFixture("unused")
	require.NoError(t, f.proposals.Set(context.Background(), 1, proposal.Delete{ID: "faq-1"}))

	outcome, err := f.svc.ConfirmProposal(context.Background(), 7, 1, "alex")
	require.NoError(t, err)
	assert.Equal(t, "Deleted FAQ \"Old\".", outcome.Message)
	require.Len(t, f.applier.applied, 1)

	_, err = f.svc.ConfirmProposal(context.Background(), 7, 1, "alex")
	assert.ErrorIs(t, err, ErrNoPendingProposal)
	assert.Len(t, f.applier.applied, 1, "a confirmed proposal cannot be applied twice")
}

func TestConfirmProposalPersistsOutcomeTurn(t *testing.T) {
	f := newChatFixture("unused")
	require.NoError(t, f.proposals.Set(context.Background(), 1, proposal.Delete{ID: "faq-1"}))

	_, err := f.svc.ConfirmProposal(context.Background(), 7, 1, "alex")
	require.NoError(t, err)

	require.Len(t, f.turns.turns, 1)
	assert.Equal(t, model.SenderAssistant, f.turns.turns[0].Sender)
	assert.Equal(t, "Deleted FAQ \"Old\".", f.turns.turns[0].Text)
}

func TestDeclineProposalClearsWithoutApplying(t *testing.T) {
	f := newChatFixture("unused")
	require.NoError(t, f.proposals.Set(context.Background(), 1, proposal.Delete{ID: "faq-1"}))

	require.NoError(t, f.svc.DeclineProposal(context.Background(), 7, 1))
	assert.Empty(t, f.applier.applied)

	err := f.svc.DeclineProposal(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrNoPendingProposal)
}

func TestDeleteSessionClearsTurnsAndPending(t *testing.T) {
	f := newChatFixture("ok")
	_, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "hi"})
	require.NoError(t, err)
	require.NoError(t, f.proposals.Set(context.Background(), 1, proposal.Delete{ID: "faq-1"}))

	require.NoError(t, f.svc.DeleteSession(context.Background(), 7, 1))
	assert.Empty(t, f.turns.turns)
	_, ok, _ := f.proposals.Get(context.Background(), 1)
	assert.False(t, ok)
}

func TestDeleteProposalEndToEnd(t *testing.T) {
	image := "http://minio/faqdesk-assets/shot.png"
	store := newFakeKnowledgeStore(&model.Faq{
		ID:          "abc-123",
		Question:    "Old question",
		Answer:      "Old answer",
		Category:    "General",
		Attachments: []model.Attachment{{URL: image, Type: model.AttachmentTypeImage}},
	})
	assets := &fakeAssetRegistry{ownedPrefix: "http://minio/faqdesk-assets/"}

	f := newChatFixture(`Understood.
[SUGGEST_FAQ_PROPOSAL]{'action':'delete','id':'abc-123','reason':'duplicate'}[/SUGGEST_FAQ_PROPOSAL]`)
	f.svc.applier = NewApplyService(store, assets)

	res, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 1, Text: "Delete the duplicate"})
	require.NoError(t, err)
	require.NotNil(t, res.Proposal)
	assert.Len(t, store.deleted, 0, "extraction alone must not mutate the store")

	outcome, err := f.svc.ConfirmProposal(context.Background(), 7, 1, "alex")
	require.NoError(t, err)
	assert.Contains(t, outcome.Message, "Deleted FAQ")
	assert.Equal(t, []string{"abc-123"}, store.deleted)
	assert.Equal(t, []string{image}, assets.deleted)

	_, err = f.svc.ConfirmProposal(context.Background(), 7, 1, "alex")
	assert.ErrorIs(t, err, ErrNoPendingProposal)
}

func TestSendTurnUnknownSession(t *testing.T) {
	f := newChatFixture("ok")

	_, err := f.svc.SendTurn(context.Background(), SendTurnInput{UserID: 7, SessionID: 99, Text: "hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
