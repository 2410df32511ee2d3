package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/types"
)

// Models allowed per plan. Free users get the mini tier, paid plans can
// ask for the larger models.
const (
	ChatModelMini = "gpt-4o-mini"
	ChatModelFull = "gpt-4o"

	ImageModelBase = "dall-e-2"
	ImageModelFull = "dall-e-3"
)

// ChatModelForPlan clamps a requested chat model to what the plan
// allows. Empty requests get the plan default.
func ChatModelForPlan(plan, requested string) string {
	switch plan {
	case types.PlanPro, types.PlanMax:
		if requested == ChatModelFull || requested == ChatModelMini {
			return requested
		}
		return ChatModelFull
	default:
		return ChatModelMini
	}
}

// ImageModelForPlan returns the image model and the maximum size a plan
// may render.
func ImageModelForPlan(plan string) (model string, maxSize string) {
	switch plan {
	case types.PlanMax:
		return ImageModelFull, "1792x1024"
	case types.PlanPro:
		return ImageModelFull, "1024x1024"
	default:
		return ImageModelBase, "512x512"
	}
}

// ChatTurn is one message forwarded upstream. ImageURLs ride along for
// vision-capable models.
type ChatTurn struct {
	Role      string
	Content   string
	ImageURLs []string
}

type OpenAIService interface {
	ChatCompletion(ctx context.Context, model string, turns []ChatTurn) (string, error)
	GenerateImage(ctx context.Context, model, prompt, size string) (string, error)
	DescribeImage(ctx context.Context, imageURL, prompt string) (string, error)
}

type openAIService struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewOpenAIService(log *logger.Logger) (OpenAIService, error) {
	serviceLog := log.With("service", "OpenAIService")
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY environment variable")
	}
	baseURL := os.Getenv("OPENAI_API_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	httpClient := &http.Client{
		Timeout: 90 * time.Second,
	}
	return &openAIService{
		log:     serviceLog,
		client:  httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

// Wire shapes for the chat completions endpoint. Content is either a
// bare string or a list of typed parts when images are attached.
type oaContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type oaMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type oaChatRequest struct {
	Model    string      `json:"model"`
	Messages []oaMessage `json:"messages"`
}

type oaChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (oas *openAIService) ChatCompletion(ctx context.Context, model string, turns []ChatTurn) (string, error) {
	req := oaChatRequest{Model: model}
	for _, t := range turns {
		if len(t.ImageURLs) == 0 {
			req.Messages = append(req.Messages, oaMessage{Role: t.Role, Content: t.Content})
			continue
		}
		parts := []oaContentPart{{Type: "text", Text: t.Content}}
		for _, u := range t.ImageURLs {
			p := oaContentPart{Type: "image_url"}
			p.ImageURL = &struct {
				URL string `json:"url"`
			}{URL: u}
			parts = append(parts, p)
		}
		req.Messages = append(req.Messages, oaMessage{Role: t.Role, Content: parts})
	}

	var resp oaChatResponse
	if err := oas.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openai error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	oas.log.Info("Chat completion succeeded", "model", model, "turns", len(turns))
	return resp.Choices[0].Message.Content, nil
}

func (oas *openAIService) GenerateImage(ctx context.Context, model, prompt, size string) (string, error) {
	req := map[string]interface{}{
		"model":  model,
		"prompt": prompt,
		"size":   size,
		"n":      1,
	}
	var resp struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
	if err := oas.post(ctx, "/images/generations", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openai error: %s", resp.Error.Message)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("openai returned no image data")
	}
	oas.log.Info("Image generation succeeded", "model", model, "size", size)
	return resp.Data[0].URL, nil
}

func (oas *openAIService) DescribeImage(ctx context.Context, imageURL, prompt string) (string, error) {
	if prompt == "" {
		prompt = "Describe this image in detail."
	}
	return oas.ChatCompletion(ctx, ChatModelMini, []ChatTurn{
		{Role: types.RoleUser, Content: prompt, ImageURLs: []string{imageURL}},
	})
}

func (oas *openAIService) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal openai request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oas.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		oas.log.Warn("failed to build openai request", "error", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+oas.apiKey)

	resp, err := oas.client.Do(req)
	if err != nil {
		oas.log.Warn("failed to call openai", "error", err, "path", path)
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		oas.log.Warn("failed to read openai response body", "error", err)
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		oas.log.Warn("openai responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
		return fmt.Errorf("openai HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode openai response: %w", err)
	}
	return nil
}
