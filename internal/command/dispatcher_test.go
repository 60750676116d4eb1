package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_Route(t *testing.T) {
	d := NewDispatcher([]string{"provider-2/dall-e-3"})

	tests := []struct {
		name    string
		input   string
		model   string
		ragMode bool
		want    Route
	}{
		{"RAG prefix beats image prefix", "/rag /image a cat", "gpt", false, Route{PathKnowledge, "/image a cat"}},
		{"RAG mode", "what is our policy", "gpt", true, Route{PathKnowledge, "what is our policy"}},
		{"RAG mode beats image prefix", "/image a cat", "gpt", true, Route{PathKnowledge, "/image a cat"}},
		{"RAG mode drops an inner command", "tell me /rag about leave", "gpt", true, Route{PathKnowledge, "tell me about leave"}},
		{"RAG mode drops only the first command", "a /rag b /rag c", "gpt", true, Route{PathKnowledge, "a b /rag c"}},
		{"Image prefix", "/image a cat", "gpt", false, Route{PathImage, "a cat"}},
		{"Video prefix", "/video waves", "gpt", false, Route{PathVideo, "waves"}},
		{"Image prefix beats image model", "/image a cat", "provider-2/dall-e-3", false, Route{PathImage, "a cat"}},
		{"Video prefix beats image model", "/video waves", "provider-2/dall-e-3", false, Route{PathVideo, "waves"}},
		{"Implicit image model", "a sunset", "provider-2/dall-e-3", false, Route{PathImage, "a sunset"}},
		{"Plain chat", "hello", "gpt", false, Route{PathChat, "hello"}},
		{"Unknown command falls through", "/figma import", "gpt", false, Route{PathChat, "/figma import"}},
		{"Prefix without space is not a command", "/image", "gpt", false, Route{PathChat, "/image"}},
		{"Prefix must be at the start", "please /image a cat", "gpt", false, Route{PathChat, "please /image a cat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Route(tt.input, tt.model, tt.ragMode))
		})
	}
}

func TestDispatcher_Palette(t *testing.T) {
	d := NewDispatcher(nil)

	t.Run("Open with matches", func(t *testing.T) {
		p := d.Palette("/i")
		assert.True(t, p.Open)
		var prefixes []string
		for _, s := range p.Suggestions {
			prefixes = append(prefixes, s.Prefix)
		}
		assert.Equal(t, []string{PrefixImage, PrefixImprove}, prefixes)
	})

	t.Run("Bare slash lists everything", func(t *testing.T) {
		p := d.Palette("/")
		assert.True(t, p.Open)
		assert.Len(t, p.Suggestions, len(DefaultSuggestions))
	})

	t.Run("Closed after a space", func(t *testing.T) {
		assert.False(t, d.Palette("/image ").Open)
	})

	t.Run("Closed without slash", func(t *testing.T) {
		assert.False(t, d.Palette("image").Open)
	})

	t.Run("Open with no matches", func(t *testing.T) {
		p := d.Palette("/zzz")
		assert.True(t, p.Open)
		assert.Empty(t, p.Suggestions)
	})
}

func TestDispatcher_Select(t *testing.T) {
	d := NewDispatcher(nil)

	input, rag := d.Select(PrefixRAG)
	assert.Equal(t, "/rag ", input)
	assert.True(t, rag)

	input, rag = d.Select(PrefixImage)
	assert.Equal(t, "/image ", input)
	assert.False(t, rag)

	// Selection state does not leak into routing.
	assert.Equal(t, PathImage, d.Route(input+"a cat", "", false).Path)
}

func TestDispatcher_Known(t *testing.T) {
	d := NewDispatcher(nil)
	for _, s := range DefaultSuggestions {
		assert.True(t, d.Known(s.Prefix), s.Prefix)
	}
	assert.False(t, d.Known("/ima"))
	assert.False(t, d.Known("image"))
}
