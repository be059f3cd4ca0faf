package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pulseboard/pulseboard/internal/model"
)

// GitHub pulls the organization's public event feed.
type GitHub struct {
	client *resty.Client
	org    string
}

func NewGitHub(baseURL, org, token string, timeout time.Duration) *GitHub {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/vnd.github+json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &GitHub{client: client, org: org}
}

func (g *GitHub) Source() model.Source { return model.SourceGitHub }

type githubEvent struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Actor struct {
		Login string `json:"login"`
	} `json:"actor"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	CreatedAt time.Time `json:"created_at"`
}

func (g *GitHub) Collect(ctx context.Context, since time.Time) ([]*model.RawActivity, error) {
	var events []githubEvent
	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(&events).
		SetQueryParam("per_page", "100").
		Get(fmt.Sprintf("/orgs/%s/events", g.org))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("github events: %s", resp.Status())
	}

	var out []*model.RawActivity
	for _, ev := range events {
		if ev.CreatedAt.Before(since) {
			continue
		}
		at := ev.CreatedAt.UTC()
		out = append(out, &model.RawActivity{
			ID:           "gh-" + ev.ID,
			Source:       model.SourceGitHub,
			ActivityType: ev.Type,
			Actor:        model.ActorRef{ID: ev.Actor.Login},
			Timestamp:    at.Format(time.RFC3339),
			OccurredAt:   &at,
			Metadata:     map[string]interface{}{"repo": ev.Repo.Name},
		})
	}
	return out, nil
}
