package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
)

// Custom Search JSON API response, trimmed to the fields we use
type cseResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
}

func (p *Provider) searchWeb(ctx context.Context, query, apiKey, cseID string) ([]types.WebResult, error) {
	req, err := p.google.Request(ctx)
	if err != nil {
		return nil, err
	}

	var out cseResponse
	resp, err := req.
		SetQueryParams(map[string]string{
			"key": apiKey,
			"cx":  cseID,
			"q":   query,
			"num": strconv.Itoa(p.webResults),
		}).
		SetResult(&out).
		Get("/customsearch/v1")
	if err != nil {
		return nil, fmt.Errorf("google search request: %w", stripURL(err))
	}
	if err := httpclient.CheckResponse("google", resp); err != nil {
		return nil, err
	}

	results := make([]types.WebResult, 0, len(out.Items))
	for _, item := range out.Items {
		results = append(results, types.WebResult{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
		})
	}
	return results, nil
}
