package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"faqdesk/internal/model"
	"faqdesk/internal/repository"
)

// FaqStore is the persistence surface FaqService runs on, narrowed so tests
// can substitute an in-memory fake.
type FaqStore interface {
	Create(faq *model.Faq) error
	List() ([]model.Faq, error)
	GetByID(id string) (*model.Faq, error)
	ListByCategory(category string) ([]model.Faq, error)
	Save(faq *model.Faq) error
	Delete(id string) error
	DeleteByCategory(name string) (int64, error)
	RenameCategory(oldName, newName string) (int64, error)
	Search(query, category string) ([]model.Faq, error)
	Categories() ([]repository.CategoryCount, error)
}

// ActivityRecorder appends one audit event per knowledge-base mutation.
type ActivityRecorder interface {
	Record(ctx context.Context, action, target, actor, detail string)
}

// FaqCache invalidation is best-effort; readers fall back to the store.
type FaqCache interface {
	Get(ctx context.Context) ([]model.Faq, bool, error)
	Set(ctx context.Context, faqs []model.Faq) error
	Invalidate(ctx context.Context) error
	IsDirty(ctx context.Context) (bool, error)
}

type FaqService struct {
	store    FaqStore
	activity ActivityRecorder
	cache    FaqCache
}

type AttachmentInput struct {
	URL       string
	Name      string
	Extension string
	Type      string
}

type FaqInput struct {
	Question     string
	Answer       string
	Category     string
	DocumentText string
	Attachments  []AttachmentInput
}

func NewFaqService(store FaqStore, activity ActivityRecorder, cache FaqCache) *FaqService {
	return &FaqService{
		store:    store,
		activity: activity,
		cache:    cache,
	}
}

// List serves from the cache unless a recent mutation marked it dirty.
func (s *FaqService) List(ctx context.Context) ([]model.Faq, error) {
	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.Get(ctx); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	faqs, err := s.store.List()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx); dirtyErr == nil && !dirty {
			_ = s.cache.Set(ctx, faqs)
		}
	}
	return faqs, nil
}

func (s *FaqService) Search(ctx context.Context, query, category string) ([]model.Faq, error) {
	query = strings.TrimSpace(query)
	category = strings.TrimSpace(category)
	if query == "" && category == "" {
		return s.List(ctx)
	}
	return s.store.Search(query, category)
}

func (s *FaqService) Categories(ctx context.Context) ([]repository.CategoryCount, error) {
	return s.store.Categories()
}

func (s *FaqService) GetByID(ctx context.Context, id string) (*model.Faq, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	faq, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if faq == nil {
		return nil, ErrFaqNotFound
	}
	return faq, nil
}

func (s *FaqService) ListByCategory(ctx context.Context, name string) ([]model.Faq, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	return s.store.ListByCategory(name)
}

func (s *FaqService) Add(ctx context.Context, input FaqInput, actor string) (*model.Faq, error) {
	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	category := strings.TrimSpace(input.Category)
	if question == "" || answer == "" || category == "" {
		return nil, fmt.Errorf("%w: question, answer and category are required", ErrInvalidInput)
	}

	faq := &model.Faq{
		ID:           uuid.NewString(),
		Question:     question,
		Answer:       answer,
		Category:     category,
		DocumentText: input.DocumentText,
		Attachments:  buildAttachments(input.Attachments),
	}
	if err := s.store.Create(faq); err != nil {
		return nil, err
	}

	s.record(ctx, "add", faq.ID, actor, fmt.Sprintf("added %q to %q", faq.Question, faq.Category))
	s.invalidate(ctx)
	return faq, nil
}

// Update overwrites every mutable field; callers resend unchanged ones.
func (s *FaqService) Update(ctx context.Context, id string, input FaqInput, actor string) (*model.Faq, error) {
	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	category := strings.TrimSpace(input.Category)
	if question == "" || answer == "" || category == "" {
		return nil, fmt.Errorf("%w: question, answer and category are required", ErrInvalidInput)
	}

	existing, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrFaqNotFound
	}

	existing.Question = question
	existing.Answer = answer
	existing.Category = category
	existing.DocumentText = input.DocumentText
	existing.Attachments = buildAttachments(input.Attachments)
	for i := range existing.Attachments {
		existing.Attachments[i].FaqID = existing.ID
	}
	if err := s.store.Save(existing); err != nil {
		return nil, err
	}

	s.record(ctx, "update", id, actor, fmt.Sprintf("updated %q", question))
	s.invalidate(ctx)
	return existing, nil
}

func (s *FaqService) Delete(ctx context.Context, id, actor string) error {
	existing, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrFaqNotFound
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}

	s.record(ctx, "delete", id, actor, fmt.Sprintf("deleted %q", existing.Question))
	s.invalidate(ctx)
	return nil
}

// DeleteCategory matches the name case-insensitively; zero matches is
// reported as not found, never as success-with-zero.
func (s *FaqService) DeleteCategory(ctx context.Context, name, actor string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidInput
	}
	count, err := s.store.DeleteByCategory(name)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrCategoryNotFound
	}

	s.record(ctx, "deleteCategory", name, actor, fmt.Sprintf("removed %d FAQs", count))
	s.invalidate(ctx)
	return count, nil
}

func (s *FaqService) RenameCategory(ctx context.Context, oldName, newName, actor string) (int64, error) {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return 0, ErrInvalidInput
	}
	if strings.EqualFold(oldName, newName) {
		return 0, fmt.Errorf("%w: old and new category names are the same", ErrInvalidInput)
	}

	count, err := s.store.RenameCategory(oldName, newName)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrCategoryNotFound
	}

	s.record(ctx, "renameCategory", oldName, actor, fmt.Sprintf("renamed to %q (%d FAQs)", newName, count))
	s.invalidate(ctx)
	return count, nil
}

func (s *FaqService) record(ctx context.Context, action, target, actor, detail string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, action, target, actor, detail)
}

func (s *FaqService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logrus.WithError(err).Warn("invalidate faq cache failed")
	}
}

func buildAttachments(inputs []AttachmentInput) []model.Attachment {
	seen := make(map[string]bool, len(inputs))
	attachments := make([]model.Attachment, 0, len(inputs))
	for _, in := range inputs {
		url := strings.TrimSpace(in.URL)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		attachments = append(attachments, model.Attachment{
			URL:       url,
			Name:      in.Name,
			Extension: in.Extension,
			Type:      in.Type,
		})
	}
	return attachments
}
