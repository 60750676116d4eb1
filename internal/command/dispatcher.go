// Package command decides which generation path handles a piece of user input.
package command

import (
	"strings"
)

type Path string

const (
	PathChat      Path = "chat"
	PathImage     Path = "image"
	PathVideo     Path = "video"
	PathKnowledge Path = "knowledge"
)

const (
	PrefixImage   = "/image"
	PrefixVideo   = "/video"
	PrefixFigma   = "/figma"
	PrefixPage    = "/page"
	PrefixImprove = "/improve"
	PrefixRAG     = "/rag"
)

// Suggestion is one palette entry.
type Suggestion struct {
	Prefix      string `json:"prefix"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// DefaultSuggestions is the fixed palette, in display order.
var DefaultSuggestions = []Suggestion{
	{Prefix: PrefixImage, Label: "Generate Image", Description: "Create an image from a text prompt"},
	{Prefix: PrefixVideo, Label: "Generate Video", Description: "Create a short video from a text prompt"},
	{Prefix: PrefixFigma, Label: "Import Figma", Description: "Import a design from Figma"},
	{Prefix: PrefixPage, Label: "Create Page", Description: "Generate a new web page"},
	{Prefix: PrefixImprove, Label: "Improve", Description: "Improve existing UI design"},
	{Prefix: PrefixRAG, Label: "Knowledge Base", Description: "Search the knowledge base"},
}

// Route is the outcome of dispatching one input.
type Route struct {
	Path   Path   `json:"path"`
	Prompt string `json:"prompt"`
}

// Palette is the autocompletion state for a partially typed command.
type Palette struct {
	Open        bool         `json:"open"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Selection is the input state after a palette entry is chosen.
type Selection struct {
	Input   string `json:"input"`
	RAGMode bool   `json:"rag_mode"`
}

// Dispatcher routes input by priority-ordered prefix rules.
type Dispatcher struct {
	imageModels map[string]struct{}
	suggestions []Suggestion
}

// NewDispatcher builds a dispatcher. Selecting any of imageModels routes plain
// input to image generation.
func NewDispatcher(imageModels []string) *Dispatcher {
	set := make(map[string]struct{}, len(imageModels))
	for _, m := range imageModels {
		set[m] = struct{}{}
	}
	return &Dispatcher{imageModels: set, suggestions: DefaultSuggestions}
}

// Route picks the handling path. The checks run in a fixed order and the
// first match wins:
//  1. "/rag " prefix or RAG mode
//  2. "/image " prefix
//  3. "/video " prefix
//  4. an image model is selected
//  5. plain chat
//
// Unrecognised slash commands fall through to chat with the input unchanged.
func (d *Dispatcher) Route(input, selectedModel string, ragMode bool) Route {
	if rest, ok := cutCommand(input, PrefixRAG); ok {
		return Route{Path: PathKnowledge, Prompt: rest}
	}
	if ragMode {
		// The first "/rag " is dropped wherever it appears.
		return Route{Path: PathKnowledge, Prompt: strings.Replace(input, PrefixRAG+" ", "", 1)}
	}
	if rest, ok := cutCommand(input, PrefixImage); ok {
		return Route{Path: PathImage, Prompt: rest}
	}
	if rest, ok := cutCommand(input, PrefixVideo); ok {
		return Route{Path: PathVideo, Prompt: rest}
	}
	if d.IsImageModel(selectedModel) {
		return Route{Path: PathImage, Prompt: input}
	}
	return Route{Path: PathChat, Prompt: input}
}

// IsImageModel reports whether model belongs to the image-model set.
func (d *Dispatcher) IsImageModel(model string) bool {
	_, ok := d.imageModels[model]
	return ok
}

// Palette reports the autocompletion state for input. It is open while the
// input starts with "/" and has no space yet.
func (d *Dispatcher) Palette(input string) Palette {
	if !strings.HasPrefix(input, "/") || strings.Contains(input, " ") {
		return Palette{Open: false, Suggestions: []Suggestion{}}
	}
	matches := []Suggestion{}
	for _, s := range d.suggestions {
		if strings.HasPrefix(s.Prefix, input) {
			matches = append(matches, s)
		}
	}
	return Palette{Open: true, Suggestions: matches}
}

// Select rewrites the input for a chosen suggestion. Choosing /rag turns
// RAG mode on.
func (d *Dispatcher) Select(prefix string) (input string, ragMode bool) {
	return prefix + " ", prefix == PrefixRAG
}

// Known reports whether prefix is one of the palette commands.
func (d *Dispatcher) Known(prefix string) bool {
	for _, s := range d.suggestions {
		if s.Prefix == prefix {
			return true
		}
	}
	return false
}

func cutCommand(input, prefix string) (string, bool) {
	return strings.CutPrefix(input, prefix+" ")
}
