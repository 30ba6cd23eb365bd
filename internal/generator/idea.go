package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/prompts"
)

const ideaMaxTokens = 1024

// Idea is the parsed result of reel idea generation.
type Idea struct {
	Title    string   `json:"title"`
	Hook     string   `json:"hook"`
	Concept  string   `json:"concept"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
	Mood     string   `json:"mood"`
}

// Map converts the idea into the JSON column shape stored on content.
func (i *Idea) Map() domain.JSONMap {
	tags := make([]interface{}, len(i.Hashtags))
	for n, tag := range i.Hashtags {
		tags[n] = tag
	}
	return domain.JSONMap{
		"title":    i.Title,
		"hook":     i.Hook,
		"concept":  i.Concept,
		"caption":  i.Caption,
		"hashtags": tags,
		"mood":     i.Mood,
	}
}

// IdeaFromMap rebuilds an Idea from the stored JSON column shape. Missing
// or mistyped keys yield zero fields rather than errors.
func IdeaFromMap(m domain.JSONMap) *Idea {
	idea := &Idea{}
	if m == nil {
		return idea
	}
	idea.Title, _ = m["title"].(string)
	idea.Hook, _ = m["hook"].(string)
	idea.Concept, _ = m["concept"].(string)
	idea.Caption, _ = m["caption"].(string)
	idea.Mood, _ = m["mood"].(string)
	if tags, ok := m["hashtags"].([]interface{}); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				idea.Hashtags = append(idea.Hashtags, s)
			}
		}
	}
	return idea
}

// Generator produces reel ideas and scene prompts through an LLM.
type Generator struct {
	llm     *LLMClient
	prompts prompts.Set
}

// NewGenerator creates a Generator using the given LLM client and prompt set.
func NewGenerator(llm *LLMClient, set prompts.Set) *Generator {
	return &Generator{
		llm:     llm,
		prompts: set,
	}
}

// GenerateIdea produces one reel idea for the given account niche.
//
// Parameters:
//   - ctx: request context
//   - niche: account content niche, e.g. "urban gardening"
//   - topics: optional trending topics injected into the prompt
//
// Returns the parsed idea or an error when the model output cannot be
// parsed or lacks the required fields.
func (g *Generator) GenerateIdea(ctx context.Context, niche string, topics []string) (*Idea, error) {
	trendingBlock := ""
	if len(topics) > 0 {
		trendingBlock = fmt.Sprintf(g.prompts.IdeaTrending, "- "+strings.Join(topics, "\n- "))
	}
	user := fmt.Sprintf(g.prompts.IdeaUser, niche, trendingBlock)

	logger.With(logger.Fields{
		logger.FieldComponent: "generator",
		"niche":               niche,
		"trending_topics":     len(topics),
	}).Info(ctx, "Generating content idea")

	raw, err := g.llm.Complete(ctx, g.prompts.IdeaSystem, user, ideaMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("idea generation failed: %w", err)
	}

	var idea Idea
	if err := json.Unmarshal([]byte(extractJSON(raw)), &idea); err != nil {
		return nil, fmt.Errorf("failed to parse idea response: %w", err)
	}
	if idea.Concept == "" || idea.Caption == "" {
		return nil, fmt.Errorf("idea response missing concept or caption")
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "generator",
		"title":               idea.Title,
	}).Info(ctx, "Content idea generated")

	return &idea, nil
}
