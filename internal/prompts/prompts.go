// Package prompts holds the assistant persona and the templates used to
// assemble generation prompts.
package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultSystemPrompt = `You are the PTIT university assistant. You help students, applicants, and staff with questions about tuition, admissions, schedules, regulations, and campus life.

Answer in the language the user writes in. Be concise and factual.

When context passages are provided, base your answer on them and cite which source supports each claim. Prefer official university documents for institution-specific facts such as tuition, regulations, and program requirements. Prefer web results for time-sensitive facts such as deadlines, schedules, and recent announcements. If the provided context does not cover the question, say so rather than inventing details.`

// Persona describes the assistant's voice and answering policy. Fields left
// empty in an override file keep their defaults.
type Persona struct {
	SystemPrompt string `yaml:"system_prompt"`
	Name         string `yaml:"name"`
	Language     string `yaml:"language"`
}

// Default returns the built-in persona.
func Default() *Persona {
	return &Persona{
		SystemPrompt: defaultSystemPrompt,
		Name:         "PTIT Assistant",
	}
}

// Load reads a persona override from a YAML file. An empty path returns the
// default persona.
func Load(path string) (*Persona, error) {
	persona := Default()
	if path == "" {
		return persona, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file %s: %w", path, err)
	}

	var override Persona
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse persona file %s: %w", path, err)
	}

	if override.SystemPrompt != "" {
		persona.SystemPrompt = override.SystemPrompt
	}
	if override.Name != "" {
		persona.Name = override.Name
	}
	if override.Language != "" {
		persona.Language = override.Language
		persona.SystemPrompt += fmt.Sprintf("\n\nAlways answer in %s unless the user asks otherwise.", override.Language)
	}

	return persona, nil
}
