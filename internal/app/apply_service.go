package app

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"faqdesk/internal/model"
	"faqdesk/internal/proposal"
)

var (
	htmlImgSrc    = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
	markdownImage = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
)

// knowledgeStore is the slice of FaqService the applier needs.
type knowledgeStore interface {
	GetByID(ctx context.Context, id string) (*model.Faq, error)
	ListByCategory(ctx context.Context, name string) ([]model.Faq, error)
	Add(ctx context.Context, input FaqInput, actor string) (*model.Faq, error)
	Update(ctx context.Context, id string, input FaqInput, actor string) (*model.Faq, error)
	Delete(ctx context.Context, id, actor string) error
	DeleteCategory(ctx context.Context, name, actor string) (int64, error)
	RenameCategory(ctx context.Context, oldName, newName, actor string) (int64, error)
}

type assetRegistry interface {
	OwnsURL(url string) bool
	DeleteByURL(ctx context.Context, url string) error
}

// ApplyService turns a confirmed proposal into the corresponding
// knowledge-base mutation. Store errors abort the action and surface;
// asset-cleanup failures are logged and swallowed because a dangling
// unreferenced file is a lesser harm than blocking a content edit.
type ApplyService struct {
	store  knowledgeStore
	assets assetRegistry
}

func NewApplyService(store knowledgeStore, assets assetRegistry) *ApplyService {
	return &ApplyService{
		store:  store,
		assets: assets,
	}
}

// Apply performs the mutation for a confirmed proposal and returns a
// human-readable outcome message.
func (s *ApplyService) Apply(ctx context.Context, p proposal.Proposal, actor string) (string, error) {
	switch v := p.(type) {
	case proposal.Add:
		return s.applyAdd(ctx, v, actor)
	case proposal.Update:
		return s.applyUpdate(ctx, v, actor)
	case proposal.Delete:
		return s.applyDelete(ctx, v, actor)
	case proposal.DeleteCategory:
		return s.applyDeleteCategory(ctx, v, actor)
	case proposal.RenameCategory:
		return s.applyRenameCategory(ctx, v, actor)
	default:
		return "", fmt.Errorf("%w: unsupported proposal", ErrInvalidInput)
	}
}

func (s *ApplyService) applyAdd(ctx context.Context, p proposal.Add, actor string) (string, error) {
	faq, err := s.store.Add(ctx, faqInputFromProposal(p.Question, p.Answer, p.Category, p.ImageURL, p.DocumentURL, p.DocumentText), actor)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added FAQ %q to category %q.", faq.Question, faq.Category), nil
}

func (s *ApplyService) applyUpdate(ctx context.Context, p proposal.Update, actor string) (string, error) {
	previous, err := s.store.GetByID(ctx, p.ID)
	if err != nil {
		return "", err
	}

	input := faqInputFromProposal(p.Question, p.Answer, p.Category, p.ImageURL, p.DocumentURL, p.DocumentText)

	// Assets referenced by the previous record but absent from the new
	// content are orphaned by this update.
	previousURLs := recordAssetURLs(previous)
	kept := make(map[string]bool)
	for _, url := range inlineAssetURLs(p.Answer) {
		kept[url] = true
	}
	for _, att := range input.Attachments {
		kept[att.URL] = true
	}

	updated, err := s.store.Update(ctx, p.ID, input, actor)
	if err != nil {
		return "", err
	}

	for _, url := range previousURLs {
		if !kept[url] {
			s.deleteAsset(ctx, url)
		}
	}
	return fmt.Sprintf("Updated FAQ %q.", updated.Question), nil
}

func (s *ApplyService) applyDelete(ctx context.Context, p proposal.Delete, actor string) (string, error) {
	record, err := s.store.GetByID(ctx, p.ID)
	if err != nil {
		return "", err
	}

	for _, url := range recordAssetURLs(record) {
		s.deleteAsset(ctx, url)
	}
	if err := s.store.Delete(ctx, p.ID, actor); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted FAQ %q.", record.Question), nil
}

func (s *ApplyService) applyDeleteCategory(ctx context.Context, p proposal.DeleteCategory, actor string) (string, error) {
	records, err := s.store.ListByCategory(ctx, p.CategoryName)
	if err != nil {
		return "", err
	}
	for _, record := range records {
		for _, url := range recordAssetURLs(&record) {
			s.deleteAsset(ctx, url)
		}
	}

	count, err := s.store.DeleteCategory(ctx, p.CategoryName, actor)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted category %q and its %d FAQs.", p.CategoryName, count), nil
}

func (s *ApplyService) applyRenameCategory(ctx context.Context, p proposal.RenameCategory, actor string) (string, error) {
	count, err := s.store.RenameCategory(ctx, p.OldCategoryName, p.NewCategoryName, actor)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Renamed category %q to %q (%d FAQs moved).", p.OldCategoryName, p.NewCategoryName, count), nil
}

func (s *ApplyService) deleteAsset(ctx context.Context, url string) {
	if !s.assets.OwnsURL(url) {
		return
	}
	if err := s.assets.DeleteByURL(ctx, url); err != nil {
		logrus.WithError(err).WithField("url", url).Warn("delete orphaned asset failed")
	}
}

// recordAssetURLs collects the attachment URLs and the inline asset URLs
// embedded in the answer markup, deduplicated.
func recordAssetURLs(faq *model.Faq) []string {
	if faq == nil {
		return nil
	}
	seen := make(map[string]bool)
	var urls []string
	add := func(url string) {
		if url != "" && !seen[url] {
			seen[url] = true
			urls = append(urls, url)
		}
	}
	for _, att := range faq.Attachments {
		add(att.URL)
	}
	for _, url := range inlineAssetURLs(faq.Answer) {
		add(url)
	}
	return urls
}

func inlineAssetURLs(answer string) []string {
	var urls []string
	for _, m := range htmlImgSrc.FindAllStringSubmatch(answer, -1) {
		urls = append(urls, m[1])
	}
	for _, m := range markdownImage.FindAllStringSubmatch(answer, -1) {
		urls = append(urls, m[1])
	}
	return urls
}

func faqInputFromProposal(question, answer, category, imageURL, documentURL, documentText string) FaqInput {
	input := FaqInput{
		Question:     question,
		Answer:       answer,
		Category:     category,
		DocumentText: documentText,
	}
	if imageURL != "" {
		input.Attachments = append(input.Attachments, attachmentFromURL(imageURL, model.AttachmentTypeImage))
	}
	if documentURL != "" {
		input.Attachments = append(input.Attachments, attachmentFromURL(documentURL, model.AttachmentTypeDocument))
	}
	return input
}

func attachmentFromURL(url, kind string) AttachmentInput {
	name := path.Base(url)
	return AttachmentInput{
		URL:       url,
		Name:      name,
		Extension: strings.TrimPrefix(strings.ToLower(path.Ext(name)), "."),
		Type:      kind,
	}
}
