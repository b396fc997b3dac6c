package summarizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type ackResponse struct {
	Message *string `json:"message"`
}

type summaryResponse struct {
	Summary *[]string `json:"summary"`
}

// decodeAck accepts only {"message":"waiting", ...}.
func decodeAck(raw string) error {
	var resp ackResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return fmt.Errorf("decode ack response: %w", err)
	}
	if resp.Message == nil {
		return errors.New("ack response missing message field")
	}
	if *resp.Message != ackMessage {
		return fmt.Errorf("expected message %q, got %q", ackMessage, *resp.Message)
	}
	return nil
}

// decodeSummary accepts any object whose summary field is a list of strings.
func decodeSummary(raw string) ([]string, error) {
	var resp summaryResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return nil, fmt.Errorf("decode summary response: %w", err)
	}
	if resp.Summary == nil {
		return nil, errors.New("summary response missing summary field")
	}
	out := make([]string, len(*resp.Summary))
	copy(out, *resp.Summary)
	return out, nil
}

func stripCodeFence(raw string) string {
	sanitized := strings.TrimSpace(raw)
	if !strings.HasPrefix(sanitized, "```") {
		return sanitized
	}
	sanitized = strings.TrimPrefix(sanitized, "```")
	sanitized = strings.TrimPrefix(sanitized, "json")
	sanitized = strings.TrimSuffix(strings.TrimSpace(sanitized), "```")
	return strings.TrimSpace(sanitized)
}
