package templates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/modules/templates"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/llm"
)

func TestBuildMessages(t *testing.T) {
	t.Parallel()

	t.Run("bare prompt becomes a single user message", func(t *testing.T) {
		t.Parallel()

		system, messages := templates.BuildMessages(templates.GenerationRequest{Prompt: "a simple button"})

		assert.Contains(t, system, "MJML")
		assert.Contains(t, system, "start with <mjml>")

		require.Len(t, messages, 1)
		assert.Equal(t, llm.RoleUser, messages[0].Role)
		require.Len(t, messages[0].Parts, 1)
		assert.Equal(t, "a simple button", messages[0].Parts[0].Text)
		assert.False(t, messages[0].Parts[0].Cache)
	})

	t.Run("history keeps order and roles, caching the final turn", func(t *testing.T) {
		t.Parallel()

		req := templates.GenerationRequest{
			Prompt: "now make the header blue",
			History: []templates.Turn{
				{Role: llm.RoleUser, Content: "a welcome email"},
				{Role: llm.RoleAssistant, Content: minimalDoc},
			},
		}

		_, messages := templates.BuildMessages(req)
		require.Len(t, messages, 3)

		assert.Equal(t, llm.RoleUser, messages[0].Role)
		assert.Equal(t, "a welcome email", messages[0].Parts[0].Text)
		assert.False(t, messages[0].Parts[0].Cache)

		assert.Equal(t, llm.RoleAssistant, messages[1].Role)
		assert.Equal(t, minimalDoc, messages[1].Parts[0].Text)
		assert.True(t, messages[1].Parts[0].Cache, "final historical turn must carry the cache hint")

		assert.Equal(t, llm.RoleUser, messages[2].Role)
		assert.Equal(t, "now make the header blue", messages[2].Parts[0].Text)
		assert.False(t, messages[2].Parts[0].Cache, "the current turn is never cached")
	})

	t.Run("image turns emit image parts before the text part", func(t *testing.T) {
		t.Parallel()

		req := templates.GenerationRequest{
			Prompt: "match this design",
			Images: []templates.ImageAttachment{
				{Data: "aGVsbG8=", MediaType: "image/png", FileName: "mock.png"},
				{Data: "d29ybGQ=", MediaType: "image/jpeg", FileName: "mock2.jpg"},
			},
		}

		_, messages := templates.BuildMessages(req)
		require.Len(t, messages, 1)
		require.Len(t, messages[0].Parts, 3)

		require.NotNil(t, messages[0].Parts[0].Image)
		assert.Equal(t, "aGVsbG8=", messages[0].Parts[0].Image.Data)
		require.NotNil(t, messages[0].Parts[1].Image)
		assert.Equal(t, "image/jpeg", messages[0].Parts[1].Image.MediaType)

		assert.Nil(t, messages[0].Parts[2].Image)
		assert.Equal(t, "match this design", messages[0].Parts[2].Text)
	})

	t.Run("extracted file text is injected once with markers", func(t *testing.T) {
		t.Parallel()

		req := templates.GenerationRequest{
			Prompt:            "use our brand guide",
			ExtractedFileText: "Primary color: #FF5500",
		}

		_, messages := templates.BuildMessages(req)
		require.Len(t, messages, 1)

		text := messages[0].Parts[0].Text
		assert.Contains(t, text, "--- ATTACHED FILE CONTENT ---")
		assert.Contains(t, text, "Primary color: #FF5500")
		assert.Contains(t, text, "--- END OF ATTACHED FILE ---")
		assert.True(t, len(text) > len("use our brand guide"))
		assert.Contains(t, text, "use our brand guide")
	})

	t.Run("file text already in history is not resent", func(t *testing.T) {
		t.Parallel()

		req := templates.GenerationRequest{
			Prompt:            "tweak the footer",
			ExtractedFileText: "Primary color: #FF5500",
			History: []templates.Turn{
				{Role: llm.RoleUser, Content: "--- ATTACHED FILE CONTENT ---\nPrimary color: #FF5500\n--- END OF ATTACHED FILE ---\n\nuse our brand guide"},
				{Role: llm.RoleAssistant, Content: minimalDoc},
			},
		}

		_, messages := templates.BuildMessages(req)
		require.Len(t, messages, 3)

		assert.Equal(t, "tweak the footer", messages[2].Parts[0].Text)
		assert.True(t, messages[0].Parts[0].Cache, "file-bearing turn must carry the cache hint")
	})

	t.Run("system prompt is identical across calls", func(t *testing.T) {
		t.Parallel()

		first, _ := templates.BuildMessages(templates.GenerationRequest{Prompt: "one"})
		second, _ := templates.BuildMessages(templates.GenerationRequest{Prompt: "two"})
		assert.Equal(t, first, second)
	})
}
