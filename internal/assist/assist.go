// Package assist provides pluggable text formatting backends for script
// sections.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultInstruction is sent when the caller gives none.
const DefaultInstruction = "Reformat this voice-over script section as clean markdown. " +
	"Keep every line of dialogue and every heading. Reply with the markdown only."

// Formatter rewrites a section of markdown.
type Formatter interface {
	Format(ctx context.Context, text, instruction string) (string, error)
	Name() string
}

func prompt(text, instruction string) string {
	if instruction == "" {
		instruction = DefaultInstruction
	}
	return instruction + "\n\n" + text
}

// --- Ollama Provider ---

// OllamaFormatter uses a local Ollama instance.
type OllamaFormatter struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaFormatter creates a formatter using Ollama's generate API.
func NewOllamaFormatter(baseURL, model string) *OllamaFormatter {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaFormatter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (f *OllamaFormatter) Name() string { return "ollama:" + f.model }

func (f *OllamaFormatter) Format(ctx context.Context, text, instruction string) (string, error) {
	body, _ := json.Marshal(ollamaRequest{Model: f.model, Prompt: prompt(text, instruction)})
	req, err := http.NewRequestWithContext(ctx, "POST", f.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(b))
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Response), nil
}

// --- OpenAI-compatible Provider ---

// OpenAIFormatter uses any OpenAI-compatible chat completions API.
type OpenAIFormatter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIFormatter creates a formatter using an OpenAI-compatible API.
func NewOpenAIFormatter(baseURL, apiKey, model string) *OpenAIFormatter {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIFormatter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (f *OpenAIFormatter) Name() string { return "openai:" + f.model }

func (f *OpenAIFormatter) Format(ctx context.Context, text, instruction string) (string, error) {
	body, _ := json.Marshal(chatRequest{
		Model:    f.model,
		Messages: []chatMessage{{Role: "user", Content: prompt(text, instruction)}},
	})
	req, err := http.NewRequestWithContext(ctx, "POST", f.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(b))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// --- Factory ---

// New creates a formatter for provider: "ollama" | "openai" | "" (disabled).
func New(provider, model, url, apiKey string) Formatter {
	switch provider {
	case "ollama":
		return NewOllamaFormatter(url, model)
	case "openai":
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return NewOpenAIFormatter(url, apiKey, model)
	default:
		return nil // formatting disabled
	}
}
