package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
)

const watchURL = "https://www.youtube.com/watch?v="

// YouTube Data API search response, trimmed to the fields we use
type youtubeResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

func (p *Provider) searchVideos(ctx context.Context, query, apiKey string) ([]types.VideoResult, error) {
	if p.videoResults == 0 {
		return []types.VideoResult{}, nil
	}

	req, err := p.youtube.Request(ctx)
	if err != nil {
		return nil, err
	}

	var out youtubeResponse
	resp, err := req.
		SetQueryParams(map[string]string{
			"part":       "snippet",
			"type":       "video",
			"q":          query,
			"maxResults": strconv.Itoa(p.videoResults),
			"key":        apiKey,
		}).
		SetResult(&out).
		Get("/youtube/v3/search")
	if err != nil {
		return nil, fmt.Errorf("youtube search request: %w", stripURL(err))
	}
	if err := httpclient.CheckResponse("youtube", resp); err != nil {
		return nil, err
	}

	results := make([]types.VideoResult, 0, len(out.Items))
	for _, item := range out.Items {
		if item.ID.VideoID == "" {
			continue
		}
		results = append(results, types.VideoResult{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			URL:          watchURL + item.ID.VideoID,
			ChannelTitle: item.Snippet.ChannelTitle,
			Description:  item.Snippet.Description,
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}
	return results, nil
}
