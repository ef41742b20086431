package chatengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// completionTemperature leans the sampling toward deterministic, factual
// output.
const completionTemperature = 0.3

// errQuotaExceeded marks provider rate-limit/quota exhaustion so Generate
// can pick the quota fallback.
var errQuotaExceeded = errors.New("completion provider quota exceeded")

func isQuotaError(err error) bool {
	return errors.Is(err, errQuotaExceeded)
}

// completeFunc lets tests substitute the provider call.
type completeFunc func(ctx context.Context, config Config, envelope []message) (string, error)

// completeChat makes a single chat-completion request. One attempt per
// turn, no retries; the caller's context carries any deadline.
func completeChat(ctx context.Context, config Config, envelope []message) (string, error) {
	reqBody := map[string]any{
		"model":       config.Model,
		"messages":    envelope,
		"temperature": completionTemperature,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode completion request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(config.BaseURL, "/")+"/chat/completions",
		bytes.NewReader(bodyBytes))
	if err != nil {
		return "", errors.Wrap(err, "failed to build completion request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "completion request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(string(body), "insufficient_quota") {
			return "", errors.Wrapf(errQuotaExceeded, "status %d: %s", resp.StatusCode, string(body))
		}
		return "", errors.Errorf("completion provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", errors.Wrap(err, "failed to decode completion response")
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from completion provider")
	}
	return apiResp.Choices[0].Message.Content, nil
}
