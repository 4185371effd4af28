// Package tool defines the closed registry of text-transform tools.
package tool

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTool indicates the requested tool id is not in the registry.
var ErrUnknownTool = errors.New("unknown tool")

// Options carries the free-form knobs a tool template may use.
// Unused fields are ignored by tools that do not support them.
type Options struct {
	Length     string `json:"length,omitempty"`
	Tone       string `json:"tone,omitempty"`
	Platform   string `json:"platform,omitempty"`
	Style      string `json:"style,omitempty"`
	TargetLang string `json:"targetLang,omitempty"`
}

// Tool is one fixed text-transform operation. Prompt renders the
// natural-language instruction sent to the AI provider; Demo produces
// the canned response used when no AI credential is configured.
type Tool struct {
	ID          string
	Name        string
	Description string
	Prompt      func(text string, opts Options) string
	Demo        func(text string, opts Options) string
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// registry is the closed set of tools. Adding a tool here is the only
// way to expose a new operation.
var registry = map[string]Tool{
	"summarize": {
		ID:          "summarize",
		Name:        "Summarize",
		Description: "Condense long text into a short summary",
		Prompt: func(text string, opts Options) string {
			return fmt.Sprintf("Summarize the following text, keeping it %s:\n\n%s",
				orDefault(opts.Length, "brief"), text)
		},
		Demo: demoSummarize,
	},
	"grammar": {
		ID:          "grammar",
		Name:        "Grammar Check",
		Description: "Check grammar and suggest corrections",
		Prompt: func(text string, _ Options) string {
			return fmt.Sprintf("Check the grammar of the following text and provide corrections with explanations:\n\n%s", text)
		},
		Demo: demoGrammar,
	},
	"email": {
		ID:          "email",
		Name:        "Email Draft",
		Description: "Draft a professional business email",
		Prompt: func(text string, opts Options) string {
			return fmt.Sprintf("Write a professional %s email about the following topic:\n\n%s\n\nFormat it properly with subject line, greeting, body, and signature.",
				orDefault(opts.Tone, "formal"), text)
		},
		Demo: demoEmail,
	},
	"social": {
		ID:          "social",
		Name:        "Social Post",
		Description: "Create an engaging social media post",
		Prompt: func(text string, opts Options) string {
			return fmt.Sprintf("Create an engaging %s social media post about:\n\n%s\n\nInclude relevant hashtags and make it attention-grabbing.",
				orDefault(opts.Platform, "general"), text)
		},
		Demo: demoSocial,
	},
	"seo": {
		ID:          "seo",
		Name:        "SEO Tags",
		Description: "Generate search-optimized meta tags",
		Prompt: func(text string, _ Options) string {
			return fmt.Sprintf("Generate SEO-optimized meta tags for the following content:\n\n%s\n\nProvide: title tag (60 chars max), meta description (155 chars max), and 5-7 keywords.", text)
		},
		Demo: demoSEO,
	},
	"headline": {
		ID:          "headline",
		Name:        "Headline Generator",
		Description: "Generate click-worthy headlines",
		Prompt: func(text string, opts Options) string {
			return fmt.Sprintf("Generate 5 compelling %s headlines for:\n\n%s\n\nMake them attention-grabbing and click-worthy.",
				orDefault(opts.Style, "engaging"), text)
		},
		Demo: demoHeadline,
	},
	"translate": {
		ID:          "translate",
		Name:        "Translate",
		Description: "Translate text between languages",
		Prompt: func(text string, opts Options) string {
			return fmt.Sprintf("Translate the following text to %s:\n\n%s",
				orDefault(opts.TargetLang, "English"), text)
		},
		Demo: demoTranslate,
	},
	"rewrite": {
		ID:          "rewrite",
		Name:        "Content Rewriter",
		Description: "Rewrite content with a fresh angle",
		Prompt: func(text string, opts Options) string {
			return fmt.Sprintf("Rewrite the following content in a %s style while keeping the same meaning:\n\n%s",
				orDefault(opts.Style, "more engaging"), text)
		},
		Demo: demoRewrite,
	},
	"expand": {
		ID:          "expand",
		Name:        "Text Expander",
		Description: "Expand a short idea into detail",
		Prompt: func(text string, _ Options) string {
			return fmt.Sprintf("Expand the following idea into a detailed, well-structured paragraph:\n\n%s", text)
		},
		Demo: demoExpand,
	},
	"simplify": {
		ID:          "simplify",
		Name:        "Simplify",
		Description: "Explain complex content in simple terms",
		Prompt: func(text string, _ Options) string {
			return fmt.Sprintf("Explain the following in simple terms that anyone can understand:\n\n%s", text)
		},
		Demo: demoSimplify,
	},
}

// Lookup returns the tool for the given id.
func Lookup(id string) (Tool, error) {
	tool, ok := registry[id]
	if !ok {
		return Tool{}, ErrUnknownTool
	}
	return tool, nil
}

// List returns all tools sorted by id.
func List() []Tool {
	tools := make([]Tool, 0, len(registry))
	for _, tool := range registry {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].ID < tools[j].ID })
	return tools
}
