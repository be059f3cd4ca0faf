package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pulseboard/pulseboard/internal/model"
)

// Slack pulls recent channel history via the Web API.
type Slack struct {
	client  *resty.Client
	channel string
}

func NewSlack(baseURL, token, channel string, timeout time.Duration) *Slack {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(token)
	return &Slack{client: client, channel: channel}
}

func (s *Slack) Source() model.Source { return model.SourceSlack }

type slackHistory struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Messages []struct {
		Type string `json:"type"`
		User string `json:"user"`
		TS   string `json:"ts"`
	} `json:"messages"`
}

func (s *Slack) Collect(ctx context.Context, since time.Time) ([]*model.RawActivity, error) {
	var hist slackHistory
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&hist).
		SetQueryParams(map[string]string{
			"channel": s.channel,
			"oldest":  fmt.Sprintf("%d", since.Unix()),
			"limit":   "200",
		}).
		Get("/conversations.history")
	if err != nil {
		return nil, err
	}
	if resp.IsError() || !hist.OK {
		return nil, fmt.Errorf("slack conversations.history: %s %s", resp.Status(), hist.Error)
	}

	var out []*model.RawActivity
	for _, msg := range hist.Messages {
		if msg.User == "" {
			continue
		}
		at := slackTS(msg.TS)
		rec := &model.RawActivity{
			ID:           "sl-" + s.channel + "-" + msg.TS,
			Source:       model.SourceSlack,
			ActivityType: "message",
			Actor:        model.ActorRef{ID: msg.User},
			Metadata:     map[string]interface{}{"channel": s.channel},
		}
		if at != nil {
			rec.Timestamp = at.Format(time.RFC3339)
			rec.OccurredAt = at
		}
		out = append(out, rec)
	}
	return out, nil
}

// slackTS converts Slack's "1712345678.000100" message timestamp.
func slackTS(ts string) *time.Time {
	secs, _, _ := strings.Cut(ts, ".")
	n, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(n, 0).UTC()
	return &t
}
