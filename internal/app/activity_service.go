package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"faqdesk/internal/model"
	"faqdesk/internal/repository"
)

// ActivityEventPublisher hands entries to the async persistence pipeline.
type ActivityEventPublisher interface {
	Publish(ctx context.Context, entry model.ActivityEntry) error
}

// ActivityService appends audit events for knowledge-base mutations and
// reads the log back. Appends go through the message queue; a publish
// failure is logged and swallowed so an audit hiccup never blocks a
// content edit.
type ActivityService struct {
	publisher ActivityEventPublisher
	repo      *repository.ActivityRepository
}

func NewActivityService(publisher ActivityEventPublisher, repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{
		publisher: publisher,
		repo:      repo,
	}
}

func (s *ActivityService) Record(ctx context.Context, action, target, actor, detail string) {
	if actor == "" {
		actor = "anonymous"
	}
	entry := model.ActivityEntry{
		Action:    action,
		Target:    target,
		Actor:     actor,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"target": target,
		}).Warn("publish activity entry failed")
	}
}

func (s *ActivityService) List(ctx context.Context, limit int) ([]model.ActivityEntry, error) {
	return s.repo.List(limit)
}

// renderTextLimit bounds the side-action view so the chat reply stays
// readable; the full log is served by List.
const renderTextLimit = 50

// RenderText flattens the newest entries for the chat side action.
func (s *ActivityService) RenderText(ctx context.Context) (string, error) {
	entries, err := s.repo.List(renderTextLimit)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "The activity log is empty.", nil
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s  %s  %s  %s", e.CreatedAt.Format(time.RFC3339), e.Actor, e.Action, e.Target)
		if e.Detail != "" {
			fmt.Fprintf(&sb, "  (%s)", e.Detail)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
