package describe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
}

// OpenAIDescriber generates descriptions through the chat-completions API.
// Each Describe call issues two completions: one for the body text and one
// for the hashtags. Either failing fails the whole call.
type OpenAIDescriber struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
}

const openAIDefaultTimeout = 30 * time.Second

const defaultOpenAIModel = "gpt-3.5-turbo"

const (
	descriptionSystemPrompt = "You are an assistant that generates simple and creative product descriptions using custom input. " +
		"Always use simple words to describe the product, and ensure the description starts with \"Shop our\" and ends with a call to action."
	hashtagSystemPrompt = "You are an assistant that generates relevant Instagram hashtags for a product name."
)

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIDescriber(opts OpenAIOptions) (*OpenAIDescriber, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIDescriber{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}, nil
}

func (o *OpenAIDescriber) Describe(ctx context.Context, req Request) (string, error) {
	userPrompt := fmt.Sprintf(
		"Generate a detailed product description for: %s. Use this custom description as inspiration: %q.",
		req.ProductName, req.UserDescription,
	)
	if info := AuxiliaryInfo(req.Sizes, req.Prices); info != "" {
		userPrompt += " Include the following details: " + info
	}
	body, err := o.complete(ctx, descriptionSystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("description completion: %w", err)
	}

	hashtagPrompt := fmt.Sprintf("Generate %d relevant Instagram hashtags for the product: %s.", maxHashtags, req.ProductName)
	raw, err := o.complete(ctx, hashtagSystemPrompt, hashtagPrompt)
	if err != nil {
		return "", fmt.Errorf("hashtag completion: %w", err)
	}

	return finalize(body, parseHashtags(raw)), nil
}

func (o *OpenAIDescriber) complete(ctx context.Context, system, user string) (string, error) {
	payload := openAIChatRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}

var _ Describer = (*OpenAIDescriber)(nil)
