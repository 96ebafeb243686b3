package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"faqdesk/internal/proposal"
)

// ProposalCache holds at most one pending proposal per session between
// extraction and confirm/decline. A new user turn deletes the entry, which
// is what "superseded" means operationally.
type ProposalCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewProposalCache(client *redisv9.Client, ttl time.Duration) *ProposalCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProposalCache{client: client, ttl: ttl}
}

func (c *ProposalCache) Get(ctx context.Context, sessionID uint) (proposal.Proposal, bool, error) {
	raw, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get pending proposal failed: %w", err)
	}
	p, err := proposal.Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (c *ProposalCache) Set(ctx context.Context, sessionID uint, p proposal.Proposal) error {
	raw, err := proposal.Encode(p)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(sessionID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set pending proposal failed: %w", err)
	}
	return nil
}

func (c *ProposalCache) Delete(ctx context.Context, sessionID uint) error {
	if err := c.client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete pending proposal failed: %w", err)
	}
	return nil
}

func (c *ProposalCache) key(sessionID uint) string {
	return fmt.Sprintf("chat:proposal:%d", sessionID)
}
