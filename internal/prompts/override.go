package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Set holds the active prompt templates. The zero value is not usable;
// call Defaults or Load.
type Set struct {
	IdeaSystem   string `yaml:"idea_system"`
	IdeaUser     string `yaml:"idea_user"`
	IdeaTrending string `yaml:"idea_trending"`
	ScenesSystem string `yaml:"scenes_system"`
	ScenesUser   string `yaml:"scenes_user"`
}

// Defaults returns the built-in templates.
func Defaults() Set {
	return Set{
		IdeaSystem:   IdeaSystemPrompt,
		IdeaUser:     IdeaUserPrompt,
		IdeaTrending: IdeaTrendingBlock,
		ScenesSystem: ScenesSystemPrompt,
		ScenesUser:   ScenesUserPrompt,
	}
}

// Load returns the defaults with any non-empty fields from the YAML file at
// path layered on top. An empty path returns the defaults unchanged.
func Load(path string) (Set, error) {
	set := Defaults()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return set, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	if override.IdeaSystem != "" {
		set.IdeaSystem = override.IdeaSystem
	}
	if override.IdeaUser != "" {
		set.IdeaUser = override.IdeaUser
	}
	if override.IdeaTrending != "" {
		set.IdeaTrending = override.IdeaTrending
	}
	if override.ScenesSystem != "" {
		set.ScenesSystem = override.ScenesSystem
	}
	if override.ScenesUser != "" {
		set.ScenesUser = override.ScenesUser
	}
	return set, nil
}
