package video

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var errInvalidLink = errors.New("not a youtube video link")

// ParseVideoID extracts the 11 character video id from a YouTube link or bare id.
func ParseVideoID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if videoIDPattern.MatchString(link) {
		return link, nil
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(u.Path, "/")

	var id string
	switch host {
	case "youtu.be":
		id, _, _ = strings.Cut(path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"), strings.HasPrefix(path, "embed/"), strings.HasPrefix(path, "live/"), strings.HasPrefix(path, "v/"):
			_, rest, _ := strings.Cut(path, "/")
			id, _, _ = strings.Cut(rest, "/")
		}
	}
	if !videoIDPattern.MatchString(id) {
		return "", errInvalidLink
	}
	return id, nil
}

// WatchURL is the canonical link stored alongside a summary.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
