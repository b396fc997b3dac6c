package conversation

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures prompt size in model tokens.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter resolves the encoding for model, falling back to cl100k_base.
func NewTiktokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			return nil, err
		}
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// ApproxCounter estimates roughly four tokens per three words.
type ApproxCounter struct{}

func (ApproxCounter) Count(text string) int {
	words := len(strings.Fields(text))
	return (words*4 + 2) / 3
}
