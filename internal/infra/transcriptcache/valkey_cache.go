package transcriptcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/video-summarizer/internal/domain/video"
)

// ValkeyCache keeps transcripts in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "transcript"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, videoID string) (video.Transcript, bool, error) {
	if videoID == "" {
		return video.Transcript{}, false, nil
	}
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(videoID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return video.Transcript{}, false, nil
		}
		return video.Transcript{}, false, err
	}
	transcript, err := decodeTranscript(payload)
	if err != nil {
		return video.Transcript{}, false, err
	}
	return transcript, true, nil
}

func (c *ValkeyCache) Save(ctx context.Context, transcript video.Transcript, ttl time.Duration) error {
	payload, err := json.Marshal(transcript)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.key(transcript.VideoID)).Value(string(payload))
	var cmd valkey.Completed
	if expiry := expirySeconds(ttl); expiry > 0 {
		cmd = builder.Ex(expiry).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func decodeTranscript(payload string) (video.Transcript, error) {
	var transcript video.Transcript
	if err := json.Unmarshal([]byte(payload), &transcript); err != nil {
		return video.Transcript{}, fmt.Errorf("decode cached transcript: %w", err)
	}
	if transcript.VideoID == "" {
		return video.Transcript{}, errors.New("cached transcript missing video id")
	}
	return transcript, nil
}

// expirySeconds rounds a positive ttl up to whole seconds for SET EX; 0 means no expiry.
func expirySeconds(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return (ttl + time.Second - 1) / time.Second * time.Second
}

func (c *ValkeyCache) key(videoID string) string {
	return c.prefix + ":" + videoID
}

var _ video.TranscriptCache = (*ValkeyCache)(nil)
