package summarizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	ackMessage  = "waiting"
	doneMessage = "done"
)

type promptEnvelope struct {
	Format       string   `json:"format"`
	System       string   `json:"system"`
	Goal         string   `json:"goal"`
	Instructions []string `json:"instructions"`
	LastPart     bool     `json:"last_part"`
	Transcript   string   `json:"transcript"`
	Message      string   `json:"message"`
	Summary      string   `json:"summary"`
}

func instructions(minPoints int) []string {
	return []string{
		"Transcript (transcript) of the video is provided as input in parts.",
		"last_part is a boolean field that indicates if the last part is received.",
		"Only create a summary when last_part is true.",
		fmt.Sprintf(`When last_part is false reply exactly {"message":"%s","summary":[]}.`, ackMessage),
		fmt.Sprintf(`When last_part is true reply {"message":"%s","summary":[...]}.`, doneMessage),
		"Output must contain message and summary fields.",
		"When last part is received, create a summary in bullet points.",
		"Each point starts with a relevant emoji.",
		"Each point is in order as mentioned in the transcript.",
		"Each point contains a one line reference to the section of the transcript that the point is from. e.g., `* summary point. Reference: reference text from transcript`.",
		fmt.Sprintf("Must be minimum %d points. Add more points if needed and are not similar to previous points.", minPoints),
		"Each point must be salient and non-repetitive.",
		"Output must be json format.",
		"Output must remove and not include the transcript field.",
		"Output must contain the summary text in the summary field.",
	}
}

func buildPrompt(cfg Config, chunk Chunk) (string, error) {
	envelope := promptEnvelope{
		Format:       "json",
		System:       cfg.System,
		Goal:         cfg.Goal,
		Instructions: instructions(cfg.MinPoints),
		LastPart:     chunk.Last,
		Transcript:   chunk.Text,
		Message:      fmt.Sprintf("'%s' if last_part is false, otherwise '%s'.", ackMessage, doneMessage),
		Summary:      "Empty list [] if last_part is false else a list[str] summary of the video transcript.",
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(envelope); err != nil {
		return "", fmt.Errorf("encode prompt envelope: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
