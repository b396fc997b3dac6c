package conversation

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/yanqian/video-summarizer/internal/domain/summarizer"
	"github.com/yanqian/video-summarizer/internal/infra/llm/chatgpt"
	"github.com/yanqian/video-summarizer/pkg/metrics"
)

// ChatClient is the slice of the ChatGPT client the invoker needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Config shapes each chat completion request.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// CarryHistory replays the validated turns of the current attempt as chat messages.
	CarryHistory bool
	// HistoryBudget caps the tokens spent on replayed turns; 0 means unlimited.
	HistoryBudget int
}

// Invoker adapts the ChatGPT client to summarizer.Invoker.
type Invoker struct {
	client  ChatClient
	cfg     Config
	counter TokenCounter
	logger  *slog.Logger
}

// NewInvoker constructs the adapter. A nil counter falls back to ApproxCounter.
func NewInvoker(client ChatClient, cfg Config, counter TokenCounter, logger *slog.Logger) *Invoker {
	if counter == nil {
		counter = ApproxCounter{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Invoker{
		client:  client,
		cfg:     cfg,
		counter: counter,
		logger:  logger.With("component", "conversation.invoker"),
	}
}

// Invoke sends one chunk prompt, optionally preceded by earlier turns.
func (i *Invoker) Invoke(ctx context.Context, in summarizer.Invocation) (summarizer.Completion, error) {
	req := chatgpt.ChatCompletionRequest{
		Model:       i.cfg.Model,
		Temperature: i.cfg.Temperature,
		MaxTokens:   i.cfg.MaxTokens,
		Messages:    i.messages(in),
	}
	resp, err := i.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return summarizer.Completion{}, err
	}
	return summarizer.Completion{
		Text: strings.TrimSpace(resp.Content()),
		Usage: metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (i *Invoker) messages(in summarizer.Invocation) []chatgpt.Message {
	history := i.history(in.History)
	out := make([]chatgpt.Message, 0, len(history)*2+1)
	for _, turn := range history {
		out = append(out,
			chatgpt.Message{Role: "user", Content: turn.Prompt},
			chatgpt.Message{Role: "assistant", Content: turn.Reply},
		)
	}
	return append(out, chatgpt.Message{Role: "user", Content: in.Prompt})
}

// history keeps the most recent turns that fit the budget.
func (i *Invoker) history(turns []summarizer.Turn) []summarizer.Turn {
	if !i.cfg.CarryHistory || len(turns) == 0 {
		return nil
	}
	if i.cfg.HistoryBudget <= 0 {
		return turns
	}
	used := 0
	start := len(turns)
	for start > 0 {
		cost := i.counter.Count(turns[start-1].Prompt) + i.counter.Count(turns[start-1].Reply)
		if used+cost > i.cfg.HistoryBudget {
			break
		}
		used += cost
		start--
	}
	if start > 0 {
		i.logger.Debug("history trimmed to token budget", "dropped", start, "kept", len(turns)-start, "tokens", used)
	}
	return turns[start:]
}
