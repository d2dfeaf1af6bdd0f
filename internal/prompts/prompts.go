// Package prompts holds the LLM prompt templates. Templates live in an
// embedded YAML file, loaded once per process and retained for its lifetime.
package prompts

import (
	_ "embed"
	"fmt"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yml
var promptsYAML []byte

var placeholderRe = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// Prompt is a fully interpolated prompt ready for the LLM boundary.
type Prompt struct {
	Model       string
	Temperature float64
	MaxTokens   int
	System      string
	User        string
}

type taskConfig struct {
	Model       string                   `yaml:"model"`
	Temperature float64                  `yaml:"temperature"`
	MaxTokens   int                      `yaml:"max_tokens"`
	System      string                   `yaml:"system"`
	UserTmpl    string                   `yaml:"user_template"`
	Variants    map[string]variantConfig `yaml:"variants"`
}

type variantConfig struct {
	Description string `yaml:"description"`
	UserTmpl    string `yaml:"user_template"`
}

type promptsFile struct {
	Tasks map[string]taskConfig `yaml:"tasks"`
}

var (
	loadOnce   sync.Once
	loaded     *promptsFile
	loadFailed error
)

func load() (*promptsFile, error) {
	loadOnce.Do(func() {
		var pf promptsFile
		if err := yaml.Unmarshal(promptsYAML, &pf); err != nil {
			loadFailed = fmt.Errorf("parse prompts.yml: %w", err)
			return
		}
		loaded = &pf
	})
	return loaded, loadFailed
}

// Get resolves the named task into a Prompt, interpolating {{var}}
// placeholders in the system and user templates from vars. Unknown
// placeholders are left in place.
func Get(task string, vars map[string]string) (*Prompt, error) {
	return GetVariant(task, "", vars)
}

// GetVariant is Get with a variant-specific user template.
func GetVariant(task, variant string, vars map[string]string) (*Prompt, error) {
	pf, err := load()
	if err != nil {
		return nil, err
	}

	cfg, ok := pf.Tasks[task]
	if !ok {
		return nil, fmt.Errorf("prompt task %q not found", task)
	}

	userTmpl := cfg.UserTmpl
	if variant != "" {
		v, ok := cfg.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("prompt task %q has no variant %q", task, variant)
		}
		userTmpl = v.UserTmpl
	}
	if userTmpl == "" {
		return nil, fmt.Errorf("prompt task %q has no user template", task)
	}

	return &Prompt{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		System:      interpolate(cfg.System, vars),
		User:        interpolate(userTmpl, vars),
	}, nil
}

func interpolate(tmpl string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return match
	})
}
