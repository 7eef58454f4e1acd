package gallery

import (
	"net/url"
	"path"
	"strings"
)

type PlayerKind string

const (
	PlayerNone   PlayerKind = ""
	PlayerDirect PlayerKind = "direct" // <video> element, autoplay with controls
	PlayerEmbed  PlayerKind = "embed"  // Platform embed frame
	PlayerRaw    PlayerKind = "raw"    // The URL itself in a frame, best effort
)

// Player is what the lightbox mounts for an entry.
type Player struct {
	Kind     PlayerKind
	Rule     string
	Src      string
	VideoID  string // Platform id for embeds
	Platform string
}

// Rule is one classification step. Rules run top to bottom and the first
// match builds the player.
type Rule struct {
	Name  string
	Match func(videoURL string) bool
	Build func(videoURL string) Player
}

var videoExtensions = []string{".mp4", ".webm", ".mov", ".m4v", ".ogg", ".ogv"}

var mediaHosts = []string{"cloudinary", "amazonaws.com", "r2.dev"}

var localPrefixes = []string{"videos/", "uploads/", "/videos/", "/uploads/"}

type Classifier struct {
	rules []Rule
}

// NewClassifier builds the default rule list. Extra hosts are treated like
// the built-in cloud media hosts, e.g. a custom S3 endpoint or CDN.
func NewClassifier(extraHosts ...string) *Classifier {
	hosts := append([]string{}, mediaHosts...)
	for _, h := range extraHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts = append(hosts, h)
		}
	}

	return &Classifier{rules: []Rule{
		directRule(hosts),
		youTubeRule(),
		vimeoRule(),
		rawRule(),
	}}
}

// Rules returns the rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify picks the player for a video URL. An empty URL has no player.
func (c *Classifier) Classify(videoURL string) Player {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return Player{Kind: PlayerNone}
	}

	for _, rule := range c.rules {
		if rule.Match(videoURL) {
			p := rule.Build(videoURL)
			p.Rule = rule.Name
			return p
		}
	}
	return Player{Kind: PlayerNone}
}

func directRule(hosts []string) Rule {
	return Rule{
		Name: "direct",
		Match: func(videoURL string) bool {
			lower := strings.ToLower(videoURL)
			ext := path.Ext(stripQuery(lower))
			for _, e := range videoExtensions {
				if ext == e {
					return true
				}
			}
			for _, h := range hosts {
				if strings.Contains(lower, h) {
					return true
				}
			}
			for _, p := range localPrefixes {
				if strings.HasPrefix(lower, p) {
					return true
				}
			}
			return false
		},
		Build: func(videoURL string) Player {
			return Player{Kind: PlayerDirect, Src: localSrc(videoURL)}
		},
	}
}

func youTubeRule() Rule {
	return Rule{
		Name: "youtube",
		Match: func(videoURL string) bool {
			lower := strings.ToLower(videoURL)
			return strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be")
		},
		Build: func(videoURL string) Player {
			id := queryValue(videoURL, "v=")
			if id == "" {
				id = lastSegment(videoURL)
			}
			return Player{
				Kind:     PlayerEmbed,
				Platform: "youtube",
				VideoID:  id,
				Src:      "https://www.youtube.com/embed/" + url.PathEscape(id) + "?autoplay=1",
			}
		},
	}
}

func vimeoRule() Rule {
	return Rule{
		Name: "vimeo",
		Match: func(videoURL string) bool {
			return strings.Contains(strings.ToLower(videoURL), "vimeo.com/")
		},
		Build: func(videoURL string) Player {
			id := lastSegment(videoURL)
			return Player{
				Kind:     PlayerEmbed,
				Platform: "vimeo",
				VideoID:  id,
				Src:      "https://player.vimeo.com/video/" + url.PathEscape(id) + "?autoplay=1",
			}
		},
	}
}

func rawRule() Rule {
	return Rule{
		Name:  "raw",
		Match: func(string) bool { return true },
		Build: func(videoURL string) Player {
			return Player{Kind: PlayerRaw, Src: videoURL}
		},
	}
}

// queryValue returns what follows marker up to the next '&' or '#'.
func queryValue(s, marker string) string {
	_, after, found := strings.Cut(s, marker)
	if !found {
		return ""
	}
	if i := strings.IndexAny(after, "&#"); i >= 0 {
		after = after[:i]
	}
	return after
}

func lastSegment(s string) string {
	s = strings.TrimRight(stripQuery(s), "/")
	return s[strings.LastIndex(s, "/")+1:]
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

// localSrc makes relative paths absolute so they resolve from detail pages too.
func localSrc(videoURL string) string {
	if strings.Contains(videoURL, "://") || strings.HasPrefix(videoURL, "/") {
		return videoURL
	}
	return "/" + videoURL
}
