package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JamesCAlger/social-media-sub002/internal/logger"
)

const (
	scenesMaxTokens = 2048

	// DefaultSceneCount is used when the configured scene count is zero.
	DefaultSceneCount = 4
)

// GenerateScenes expands an idea into per-clip generation prompts in
// playback order.
//
// Parameters:
//   - ctx: request context
//   - idea: the idea to expand
//   - count: requested number of scenes; zero or negative uses DefaultSceneCount
//
// Returns at least one scene prompt or an error. A count mismatch from the
// model is tolerated and logged, an empty result is not.
func (g *Generator) GenerateScenes(ctx context.Context, idea *Idea, count int) ([]string, error) {
	if count <= 0 {
		count = DefaultSceneCount
	}
	user := fmt.Sprintf(g.prompts.ScenesUser, count, idea.Title, idea.Hook, idea.Concept, idea.Mood)

	raw, err := g.llm.Complete(ctx, g.prompts.ScenesSystem, user, scenesMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("scene generation failed: %w", err)
	}

	var parsed []string
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse scene response: %w", err)
	}

	scenes := make([]string, 0, len(parsed))
	for _, s := range parsed {
		if s = strings.TrimSpace(s); s != "" {
			scenes = append(scenes, s)
		}
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("scene response contained no usable prompts")
	}
	if len(scenes) != count {
		logger.With(logger.Fields{
			logger.FieldComponent: "generator",
			"requested":           count,
			logger.FieldCount:     len(scenes),
		}).Warn(ctx, "Scene count differs from requested")
	}

	return scenes, nil
}
