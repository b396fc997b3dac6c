package video

import "strings"

var transcriptArtifacts = []string{"[Music]", "[Applause]", "[Laughter]"}

// CleanTranscript strips caption artifacts, collapses whitespace and optionally caps the
// transcript at maxWords words (0 keeps everything).
func CleanTranscript(text string, maxWords int) string {
	for _, artifact := range transcriptArtifacts {
		text = strings.ReplaceAll(text, artifact, " ")
	}
	words := strings.Fields(text)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
