package generator

import (
	"fmt"
	"strings"
	"text/template"

	"parodybot/internal/domain"
)

const DefaultPrompt = `Rewrite this crypto tweet as a toxic, delusional CT parody with halu and absurd energy. Make it sarcastic and hilarious:
"{{.Text}}"`

// Prompt renders the instruction template for a post. The template sees
// .Text and .Author.
type Prompt struct {
	tmpl *template.Template
}

func NewPrompt(src string) (*Prompt, error) {
	if strings.TrimSpace(src) == "" {
		src = DefaultPrompt
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

func (p *Prompt) Render(post domain.Post) (string, error) {
	var b strings.Builder
	err := p.tmpl.Execute(&b, struct {
		Text   string
		Author string
	}{post.Text, post.Author})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}
