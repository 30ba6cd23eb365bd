package service

import (
	"strings"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/generator"
)

// BuildCaption assembles the publication caption from the idea caption and
// the hashtag sets of the account and the idea. Account hashtags come
// first, duplicates are dropped case-insensitively.
func BuildCaption(content *domain.Content, account *domain.Account) string {
	caption := strings.TrimSpace(content.Caption())

	seen := make(map[string]struct{})
	var tags []string
	appendTag := func(tag string) {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			return
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		tags = append(tags, "#"+tag)
	}

	for _, tag := range account.CaptionHashtags {
		appendTag(tag)
	}
	for _, tag := range generator.IdeaFromMap(content.Idea).Hashtags {
		appendTag(tag)
	}

	if len(tags) == 0 {
		return caption
	}
	if caption == "" {
		return strings.Join(tags, " ")
	}
	return caption + "\n\n" + strings.Join(tags, " ")
}
