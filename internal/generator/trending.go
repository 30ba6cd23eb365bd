package generator

import (
	"context"
	"fmt"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/JamesCAlger/social-media-sub002/internal/logger"
)

// TrendingSource supplies topic strings used to seed idea generation.
type TrendingSource interface {
	TrendingTopics(ctx context.Context, limit int) ([]string, error)
}

// RedditTrending pulls top post titles of the day from a set of subreddits.
type RedditTrending struct {
	client     *reddit.Client
	subreddits []string
}

// NewRedditTrending creates a read-only Reddit trending source over the
// given subreddits.
func NewRedditTrending(subreddits []string) (*RedditTrending, error) {
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create reddit client: %w", err)
	}
	return &RedditTrending{
		client:     client,
		subreddits: subreddits,
	}, nil
}

// TrendingTopics returns up to limit top post titles across the configured
// subreddits. Subreddits that fail are skipped; an error is returned only
// when every subreddit fails.
func (r *RedditTrending) TrendingTopics(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || len(r.subreddits) == 0 {
		return nil, nil
	}

	perSub := limit / len(r.subreddits)
	if perSub < 1 {
		perSub = 1
	}

	topics := make([]string, 0, limit)
	var lastErr error
	for _, sub := range r.subreddits {
		posts, _, err := r.client.Subreddit.TopPosts(ctx, sub, &reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: perSub},
			Time:        "day",
		})
		if err != nil {
			lastErr = err
			logger.With(logger.Fields{
				logger.FieldComponent: "trending",
				"subreddit":           sub,
			}).Warn(ctx, "Failed to fetch top posts: %v", err)
			continue
		}
		for _, post := range posts {
			if post.Title == "" {
				continue
			}
			topics = append(topics, post.Title)
			if len(topics) >= limit {
				return topics, nil
			}
		}
	}

	if len(topics) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all trending sources failed: %w", lastErr)
	}
	return topics, nil
}
