package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yanqian/video-summarizer/internal/domain/video"
)

const (
	defaultBaseURL = "https://www.youtube.com"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	playerMarker   = "ytInitialPlayerResponse"
)

// ErrNoCaptions is returned when a video exposes no caption tracks.
var ErrNoCaptions = errors.New("video has no captions")

// Client downloads captions from public YouTube watch pages.
type Client struct {
	baseURL    string
	languages  []string
	httpClient *http.Client
}

// NewClient constructs a transcript client. languages is the preference order.
func NewClient(baseURL string, languages []string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if len(languages) == 0 {
		languages = []string{"en", "en-US", "en-GB"}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		languages:  languages,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type playerResponse struct {
	VideoDetails struct {
		Title string `json:"title"`
	} `json:"videoDetails"`
	Captions struct {
		Renderer struct {
			Tracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// Fetch implements video.TranscriptSource.
func (c *Client) Fetch(ctx context.Context, videoID string) (video.Transcript, error) {
	page, err := c.get(ctx, c.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return video.Transcript{}, fmt.Errorf("fetch watch page: %w", err)
	}
	defer page.Close()

	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return video.Transcript{}, fmt.Errorf("parse watch page: %w", err)
	}
	player, err := extractPlayerResponse(doc)
	if err != nil {
		return video.Transcript{}, err
	}
	track, ok := pickTrack(player.Captions.Renderer.Tracks, c.languages)
	if !ok {
		return video.Transcript{}, ErrNoCaptions
	}

	text, err := c.fetchTrack(ctx, track)
	if err != nil {
		return video.Transcript{}, err
	}
	title := pageTitle(doc)
	if title == "" {
		title = player.VideoDetails.Title
	}
	return video.Transcript{
		VideoID:  videoID,
		Title:    title,
		Language: track.LanguageCode,
		Text:     text,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", strings.Join(c.languages, ",")+";q=0.9")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func pageTitle(doc *goquery.Document) string {
	if title, ok := doc.Find(`meta[name="title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.TrimSpace(strings.TrimSuffix(title, "- YouTube"))
}

func extractPlayerResponse(doc *goquery.Document) (playerResponse, error) {
	var (
		out   playerResponse
		found bool
		err   error
	)
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		idx := strings.Index(body, playerMarker)
		if idx < 0 {
			return true
		}
		rest := body[idx+len(playerMarker):]
		brace := strings.Index(rest, "{")
		if brace < 0 {
			return true
		}
		// Decoder stops after the first complete value, ignoring the trailing script.
		err = json.NewDecoder(strings.NewReader(rest[brace:])).Decode(&out)
		found = err == nil
		return !found
	})
	if !found {
		if err != nil {
			return out, fmt.Errorf("decode player response: %w", err)
		}
		return out, errors.New("player response not found in watch page")
	}
	return out, nil
}

// pickTrack walks the preferred languages, choosing manual captions over auto-generated ones.
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, wantASR := range []bool{false, true} {
		for _, lang := range languages {
			for _, t := range tracks {
				if (t.Kind == "asr") == wantASR && strings.EqualFold(t.LanguageCode, lang) {
					return t, true
				}
			}
		}
	}
	return tracks[0], true
}

type timedText struct {
	Texts []string `xml:"text"`
	Body  struct {
		Paragraphs []struct {
			Text     string   `xml:",chardata"`
			Segments []string `xml:"s"`
		} `xml:"p"`
	} `xml:"body"`
}

func (c *Client) fetchTrack(ctx context.Context, track captionTrack) (string, error) {
	if track.BaseURL == "" {
		return "", ErrNoCaptions
	}
	body, err := c.get(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("fetch captions: %w", err)
	}
	defer body.Close()

	var doc timedText
	if err := xml.NewDecoder(body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode captions: %w", err)
	}
	parts := make([]string, 0, len(doc.Texts)+len(doc.Body.Paragraphs))
	for _, t := range doc.Texts {
		parts = append(parts, html.UnescapeString(t))
	}
	for _, p := range doc.Body.Paragraphs {
		text := p.Text
		if len(p.Segments) > 0 {
			text = strings.Join(p.Segments, "")
		}
		parts = append(parts, html.UnescapeString(text))
	}
	joined := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if joined == "" {
		return "", ErrNoCaptions
	}
	return joined, nil
}

var _ video.TranscriptSource = (*Client)(nil)
