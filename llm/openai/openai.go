// Package openai implements the llm.Service contract against an
// OpenAI-compatible HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkoukk/tiktoken-go"

	"github.com/docchat/docchat/llm"
)

// Provider limit for embedding inputs, in tokens
const embeddingInputLimit = 8191

// Config configures the OpenAI-compatible client
type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// NewConfigFromEnv reads the client configuration from the environment.
// A .env file is loaded if present.
func NewConfigFromEnv() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		BaseURL:        os.Getenv("OPENAI_BASE_URL"),
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: os.Getenv("OPENAI_EMBEDDING_MODEL"),
		ChatModel:      os.Getenv("OPENAI_CHAT_MODEL"),
	}
	if config.APIKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY environment variable")
	}
	return config, nil
}

// Client is an OpenAI-compatible llm.Service implementation
type Client struct {
	baseURL        string
	apiKey         string
	embeddingModel string
	chatModel      string
	client         *http.Client
	encoder        *tiktoken.Tiktoken
}

// NewClient creates a new client using the provided configuration
func NewClient(config *Config) (*Client, error) {
	if config == nil || config.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = "text-embedding-3-small"
	}
	if config.ChatModel == "" {
		config.ChatModel = "gpt-4o-mini"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	// cl100k_base covers the embedding models; encoder failure falls back
	// to character truncation in truncate.
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		encoder = nil
	}

	return &Client{
		baseURL:        strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:         config.APIKey,
		embeddingModel: config.EmbeddingModel,
		chatModel:      config.ChatModel,
		client:         &http.Client{Timeout: timeout},
		encoder:        encoder,
	}, nil
}

// truncate cuts text down to the provider's embedding input limit
func (c *Client) truncate(text string) string {
	if c.encoder == nil {
		// Rough character fallback at ~4 chars per token
		if len(text) > embeddingInputLimit*4 {
			return text[:embeddingInputLimit*4]
		}
		return text
	}

	tokens := c.encoder.Encode(text, nil, nil)
	if len(tokens) <= embeddingInputLimit {
		return text
	}
	return c.encoder.Decode(tokens[:embeddingInputLimit])
}

// Embed returns an embedding vector for the given text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]interface{}{
		"model": c.embeddingModel,
		"input": c.truncate(text),
	}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/embeddings", body, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return out.Data[0].Embedding, nil
}

// Complete returns a chat completion for the given messages
func (c *Client) Complete(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (string, error) {
	body := map[string]interface{}{
		"model":       c.chatModel,
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, "/chat/completions", body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return out.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("request to %s failed: %s", path, resp.Status)
	}

	return json.Unmarshal(payload, out)
}
