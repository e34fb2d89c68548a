// Package prompts renders the interview prompts from embedded YAML templates.
package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"aihr-backend/internal/llm"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Template names.
const (
	Opening      = "opening"
	NextQuestion = "next_question"
	Report       = "report"
)

// NoData replaces an empty transcript in rendered prompts.
const NoData = "No data"

// Template is one loaded prompt file.
type Template struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
}

// Data is the interview context a prompt is rendered from.
type Data struct {
	CandidateName string
	Questions     string
	Answers       string
	LastAnswer    string
}

// Manager holds the parsed templates.
type Manager struct {
	templates map[string]Template
}

// NewManager loads every embedded template.
func NewManager() (*Manager, error) {
	m := &Manager{templates: make(map[string]Template)}
	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	for _, name := range []string{Opening, NextQuestion, Report} {
		if _, ok := m.templates[name]; !ok {
			return nil, fmt.Errorf("prompt template %q missing", name)
		}
	}
	return m, nil
}

// Build renders the named template into an LLM request.
func (m *Manager) Build(name string, data Data) (llm.Request, error) {
	tmpl, ok := m.templates[name]
	if !ok {
		return llm.Request{}, fmt.Errorf("template not found: %s", name)
	}
	r := strings.NewReplacer(
		"{{.CandidateName}}", orNoData(data.CandidateName),
		"{{.Questions}}", orNoData(data.Questions),
		"{{.Answers}}", orNoData(data.Answers),
		"{{.LastAnswer}}", orNoData(data.LastAnswer),
	)
	return llm.Request{
		System: strings.TrimSpace(tmpl.System),
		User:   strings.TrimSpace(r.Replace(tmpl.Template)),
	}, nil
}

// OpeningQuestion is the fixed first question, addressed to the candidate by name.
func (m *Manager) OpeningQuestion(candidateName string) string {
	req, err := m.Build(Opening, Data{CandidateName: strings.TrimSpace(candidateName)})
	if err != nil {
		return ""
	}
	return req.User
}

// Names lists the loaded templates.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	return names
}

func (m *Manager) load() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}
		var tmpl Template
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}
		m.templates[strings.TrimSuffix(entry.Name(), ".yaml")] = tmpl
	}
	return nil
}

func orNoData(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoData
	}
	return s
}
