package generators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"LivingHistory/server/internal/config"
	"LivingHistory/server/internal/storage"
)

// AssetClient produces avatar and environment imagery for scenes. Both calls
// always return a usable URI: generation failures fall over to placeholders.
type AssetClient interface {
	GenerateAvatar(ctx context.Context, name, era, description string) string
	GenerateEnvironment(ctx context.Context, location, year, situation string) string
}

// HTTPAssetClient calls a Replicate-style prediction endpoint and caches the
// resulting URIs in the persistent store.
type HTTPAssetClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	store      storage.Store
	logger     *zap.Logger
}

func NewHTTPAssetClient(cfg config.AssetsConfig, store storage.Store, logger *zap.Logger) *HTTPAssetClient {
	return &HTTPAssetClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		logger:     logger,
	}
}

func (c *HTTPAssetClient) GenerateAvatar(ctx context.Context, name, era, description string) string {
	cacheKey := "avatar_" + slug(name)
	if cached, err := c.store.Get(ctx, cacheKey); err == nil {
		return cached
	}

	prompt := fmt.Sprintf("Portrait of %s, %s, %s, detailed, realistic, historical figure", name, era, description)
	uri, err := c.predict(ctx, prompt, "deformed, distorted, modern clothing, anachronistic")
	if err != nil {
		c.logger.Warn("avatar generation failed, using placeholder", zap.String("name", name), zap.Error(err))
		return fallbackAvatar(name)
	}

	if err := c.store.Set(ctx, cacheKey, uri); err != nil {
		c.logger.Warn("failed to cache avatar", zap.String("key", cacheKey), zap.Error(err))
	}
	return uri
}

func (c *HTTPAssetClient) GenerateEnvironment(ctx context.Context, location, year, situation string) string {
	cacheKey := fmt.Sprintf("env_%s_%s", slug(location), slug(year))
	if cached, err := c.store.Get(ctx, cacheKey); err == nil {
		return cached
	}

	prompt := fmt.Sprintf("Historical scene of %s during %s, %s, wide view, detailed, historical setting", location, year, situation)
	uri, err := c.predict(ctx, prompt, "people, faces, text, modern buildings, cars, anachronistic elements")
	if err != nil {
		c.logger.Warn("environment generation failed, using placeholder", zap.String("location", location), zap.Error(err))
		return fallbackEnvironment(location)
	}

	if err := c.store.Set(ctx, cacheKey, uri); err != nil {
		c.logger.Warn("failed to cache environment", zap.String("key", cacheKey), zap.Error(err))
	}
	return uri
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	NumOutputs     int    `json:"num_outputs"`
}

type predictionResponse struct {
	Output []string `json:"output"`
	Error  string   `json:"error,omitempty"`
}

func (c *HTTPAssetClient) predict(ctx context.Context, prompt, negative string) (string, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return "", errors.New("asset generation not configured")
	}

	body, err := json.Marshal(predictionRequest{
		Version: c.model,
		Input: predictionInput{
			Prompt:         prompt,
			NegativePrompt: negative,
			NumOutputs:     1,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send prediction request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read prediction response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("prediction HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var pred predictionResponse
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return "", fmt.Errorf("unmarshal prediction response: %w", err)
	}
	if pred.Error != "" {
		return "", fmt.Errorf("prediction error: %s", pred.Error)
	}
	if len(pred.Output) == 0 {
		return "", errors.New("prediction returned no output")
	}
	return pred.Output[0], nil
}

func fallbackAvatar(name string) string {
	initial := "?"
	if name != "" {
		initial = name[:1]
	}
	return "https://via.placeholder.com/150?text=" + url.QueryEscape(initial)
}

func fallbackEnvironment(location string) string {
	known := map[string]string{
		"India":        "https://via.placeholder.com/800x400?text=Historical+India",
		"South Africa": "https://via.placeholder.com/800x400?text=South+Africa",
		"Washington":   "https://via.placeholder.com/800x400?text=Washington",
		"Paris":        "https://via.placeholder.com/800x400?text=Paris",
	}
	for key, uri := range known {
		if strings.Contains(location, key) {
			return uri
		}
	}
	return "https://via.placeholder.com/800x400?text=Historical+Scene"
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}
