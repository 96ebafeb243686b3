package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"faqdesk/internal/ai"
	"faqdesk/internal/model"
	"faqdesk/internal/proposal"
)

// LLMClient is the language-model collaborator: free text in, free text out.
type LLMClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// PendingProposalStore holds at most one proposal per session between
// extraction and confirm/decline.
type PendingProposalStore interface {
	Get(ctx context.Context, sessionID uint) (proposal.Proposal, bool, error)
	Set(ctx context.Context, sessionID uint, p proposal.Proposal) error
	Delete(ctx context.Context, sessionID uint) error
}

type SessionStore interface {
	Create(session *model.Session) error
	ListByUserID(userID uint) ([]model.Session, error)
	GetByIDAndUserID(sessionID, userID uint) (*model.Session, error)
	DeleteByIDAndUserID(sessionID, userID uint) error
	SetLastUploadURL(sessionID uint, url string) error
}

type TurnStore interface {
	Create(turn *model.Turn) error
	ListBySessionID(sessionID uint, limit int) ([]model.Turn, error)
	SetAssetPreviewURL(turnID, sessionID uint, url string) (int64, error)
	DeleteBySessionID(sessionID uint) error
}

type FaqLister interface {
	List(ctx context.Context) ([]model.Faq, error)
}

type ActivityRenderer interface {
	RenderText(ctx context.Context) (string, error)
}

type ProposalApplier interface {
	Apply(ctx context.Context, p proposal.Proposal, actor string) (string, error)
}

type ChatService struct {
	sessions  SessionStore
	turns     TurnStore
	proposals PendingProposalStore
	faqs      FaqLister
	activity  ActivityRenderer
	applier   ProposalApplier
	llmClient LLMClient
	llmConfig ai.ChatConfig

	maxContextTurns int
	maxContextFaqs  int
}

type CreateSessionInput struct {
	UserID uint
	Title  string
}

type SendTurnInput struct {
	UserID    uint
	SessionID uint
	Text      string
}

// SendTurnResult carries the persisted turns plus whatever the assistant's
// response yielded: a pending proposal, a handled side action, or a notice
// that the suggestion block was malformed.
type SendTurnResult struct {
	UserTurn      model.Turn        `json:"user_turn"`
	AssistantTurn model.Turn        `json:"assistant_turn"`
	Proposal      proposal.Proposal `json:"proposal,omitempty"`
	ProposalText  string            `json:"proposal_text,omitempty"`
	ProposalError string            `json:"proposal_error,omitempty"`
	SideAction    bool              `json:"side_action,omitempty"`
	ActivityLog   string            `json:"activity_log,omitempty"`
}

type ProposalOutcome struct {
	Message string `json:"message"`
}

func NewChatService(
	sessions SessionStore,
	turns TurnStore,
	proposals PendingProposalStore,
	faqs FaqLister,
	activity ActivityRenderer,
	applier ProposalApplier,
	llmClient LLMClient,
	llmConfig ai.ChatConfig,
	maxContextTurns int,
	maxContextFaqs int,
) *ChatService {
	if maxContextTurns <= 0 {
		maxContextTurns = 20
	}
	if maxContextFaqs <= 0 {
		maxContextFaqs = 30
	}
	return &ChatService{
		sessions:        sessions,
		turns:           turns,
		proposals:       proposals,
		faqs:            faqs,
		activity:        activity,
		applier:         applier,
		llmClient:       llmClient,
		llmConfig:       llmConfig,
		maxContextTurns: maxContextTurns,
		maxContextFaqs:  maxContextFaqs,
	}
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.Session, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}

	session := &model.Session{
		UserID: input.UserID,
		Title:  title,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(userID uint) ([]model.Session, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessions.ListByUserID(userID)
}

func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID uint) error {
	if userID == 0 || sessionID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.turns.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessions.DeleteByIDAndUserID(sessionID, userID); err != nil {
		return err
	}
	_ = s.proposals.Delete(ctx, sessionID)
	return nil
}

func (s *ChatService) GetTurns(userID, sessionID uint, limit int) ([]model.Turn, error) {
	if userID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}
	session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return s.turns.ListBySessionID(sessionID, limit)
}

// RecordUpload notes the freshest user upload on the session and backfills
// the preview on the turn that triggered it, when known.
func (s *ChatService) RecordUpload(ctx context.Context, userID, sessionID, turnID uint, url string) error {
	if userID == 0 || sessionID == 0 || strings.TrimSpace(url) == "" {
		return ErrInvalidInput
	}
	session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.sessions.SetLastUploadURL(sessionID, url); err != nil {
		return err
	}
	if turnID > 0 {
		rows, err := s.turns.SetAssetPreviewURL(turnID, sessionID, url)
		if err != nil {
			logrus.WithError(err).WithField("turn_id", turnID).Warn("backfill turn asset preview failed")
		} else if rows == 0 {
			// The named turn is not in this session; never touch it.
			return ErrTurnNotFound
		}
	}
	return nil
}

// SendTurn runs one chat round trip: supersede any pending proposal, call
// the model with FAQ context and the freshest upload, persist both turns,
// then scan the response for an action payload.
func (s *ChatService) SendTurn(ctx context.Context, input SendTurnInput) (*SendTurnResult, error) {
	if input.UserID == 0 || input.SessionID == 0 {
		return nil, ErrInvalidInput
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrMessageEmpty
	}

	session, err := s.sessions.GetByIDAndUserID(input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	// A new user turn supersedes whatever proposal was still pending.
	if err := s.proposals.Delete(ctx, input.SessionID); err != nil {
		logrus.WithError(err).WithField("session_id", input.SessionID).Warn("discard pending proposal failed")
	}

	lastUpload := session.LastUploadURL

	messages, err := s.buildPromptMessages(ctx, input.SessionID, text, lastUpload)
	if err != nil {
		return nil, err
	}

	userTurn := &model.Turn{
		SessionID:       input.SessionID,
		UserID:          input.UserID,
		Sender:          model.SenderUser,
		Text:            text,
		AssetPreviewURL: lastUpload,
		CreatedAt:       time.Now(),
	}
	if err := s.turns.Create(userTurn); err != nil {
		return nil, err
	}

	raw, err := s.llmClient.Complete(ctx, s.llmConfig, messages)
	if err != nil {
		return nil, err
	}
	assistantText := strings.TrimSpace(raw)
	if assistantText == "" {
		assistantText = "The model returned an empty response."
	}

	assistantTurn := &model.Turn{
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Sender:    model.SenderAssistant,
		Text:      assistantText,
		CreatedAt: time.Now(),
	}
	if err := s.turns.Create(assistantTurn); err != nil {
		return nil, err
	}

	result := &SendTurnResult{
		UserTurn:      *userTurn,
		AssistantTurn: *assistantTurn,
	}
	s.handleExtraction(ctx, input.SessionID, assistantText, lastUpload, result)

	// The upload has been consumed by this turn boundary.
	if lastUpload != "" {
		if err := s.sessions.SetLastUploadURL(input.SessionID, ""); err != nil {
			logrus.WithError(err).WithField("session_id", input.SessionID).Warn("clear session upload url failed")
		}
	}

	return result, nil
}

func (s *ChatService) handleExtraction(ctx context.Context, sessionID uint, assistantText, lastUpload string, result *SendTurnResult) {
	extracted, err := proposal.Extract(assistantText, lastUpload)
	if err != nil {
		var malformed *proposal.MalformedError
		switch {
		case errors.As(err, &malformed):
			logrus.WithError(err).Warn("assistant proposal payload malformed")
			result.ProposalError = "The assistant suggested a change, but the suggestion was malformed and has been discarded."
		case errors.Is(err, proposal.ErrInvalidShape):
			logrus.WithError(err).Warn("assistant proposal shape invalid")
			result.ProposalError = "The assistant suggested a change, but the suggestion was incomplete and has been discarded."
		default:
			logrus.WithError(err).Warn("proposal extraction failed")
			result.ProposalError = "The assistant's suggestion could not be processed."
		}
		return
	}

	if extracted.SideAction == proposal.SideActionViewLog {
		logText, logErr := s.activity.RenderText(ctx)
		if logErr != nil {
			logrus.WithError(logErr).Warn("render activity log failed")
			logText = "The activity log could not be loaded."
		}
		result.SideAction = true
		result.ActivityLog = logText
		return
	}

	if extracted.Proposal == nil {
		return
	}
	if err := s.proposals.Set(ctx, sessionID, extracted.Proposal); err != nil {
		logrus.WithError(err).Warn("store pending proposal failed")
		result.ProposalError = "The assistant's suggestion could not be stored; please resend your message."
		return
	}
	result.Proposal = extracted.Proposal
	result.ProposalText = extracted.Proposal.Summary()
}

// ConfirmProposal applies the pending proposal for the session. Extraction
// never auto-applies; this is the only path that mutates the store.
func (s *ChatService) ConfirmProposal(ctx context.Context, userID, sessionID uint, actor string) (*ProposalOutcome, error) {
	if userID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}
	session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	pending, ok, err := s.proposals.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPendingProposal
	}

	message, err := s.applier.Apply(ctx, pending, actor)
	if err != nil {
		return nil, err
	}
	if delErr := s.proposals.Delete(ctx, sessionID); delErr != nil {
		logrus.WithError(delErr).Warn("clear applied proposal failed")
	}

	outcomeTurn := &model.Turn{
		SessionID: sessionID,
		UserID:    userID,
		Sender:    model.SenderAssistant,
		Text:      message,
		CreatedAt: time.Now(),
	}
	if err := s.turns.Create(outcomeTurn); err != nil {
		logrus.WithError(err).Warn("persist proposal outcome turn failed")
	}

	return &ProposalOutcome{Message: message}, nil
}

func (s *ChatService) DeclineProposal(ctx context.Context, userID, sessionID uint) error {
	if userID == 0 || sessionID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessions.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	_, ok, err := s.proposals.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPendingProposal
	}
	return s.proposals.Delete(ctx, sessionID)
}

func (s *ChatService) buildPromptMessages(ctx context.Context, sessionID uint, text, lastUpload string) ([]ai.ChatMessage, error) {
	faqs, err := s.faqs.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(faqs) > s.maxContextFaqs {
		faqs = faqs[:s.maxContextFaqs]
	}
	entries := make([]proposal.FaqContextEntry, 0, len(faqs))
	for _, f := range faqs {
		entries = append(entries, proposal.FaqContextEntry{
			ID:           f.ID,
			Question:     f.Question,
			Answer:       f.Answer,
			Category:     f.Category,
			DocumentText: f.DocumentText,
		})
	}

	messages := []ai.ChatMessage{{
		Role:    "system",
		Content: proposal.Instruction() + "\n\n" + proposal.FaqContext(entries),
	}}

	history, err := s.turns.ListBySessionID(sessionID, s.maxContextTurns)
	if err != nil {
		return nil, err
	}
	for _, turn := range history {
		role := "user"
		if turn.Sender == model.SenderAssistant {
			role = "assistant"
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: turn.Text})
	}

	userMessage := ai.ChatMessage{Role: "user", Content: text}
	if proposal.ClassifyByExtension(lastUpload) == "image" {
		userMessage.ImageURL = lastUpload
	}
	return append(messages, userMessage), nil
}
