package types

// ResearchContext is the background material handed to the model.
// The empty shape (no results) is what the client sends when research is off.
type ResearchContext struct {
	Query          string        `json:"query"`
	GoogleResults  []WebResult   `json:"google_results"`
	YouTubeResults []VideoResult `json:"youtube_results"`
}

// WebResult is one Google Custom Search hit
type WebResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink,omitempty"`
}

// VideoResult is one YouTube search hit
type VideoResult struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	ChannelTitle string `json:"channelTitle,omitempty"`
	Description  string `json:"description,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Transcript   string `json:"transcript,omitempty"`
}

// EmptyResearchContext returns the default context for query with both
// result lists present and empty.
func EmptyResearchContext(query string) ResearchContext {
	return ResearchContext{
		Query:          query,
		GoogleResults:  []WebResult{},
		YouTubeResults: []VideoResult{},
	}
}
