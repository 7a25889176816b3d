package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/mensaplan/internal/config"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"go.uber.org/zap"
)

const (
	command    = "speiseplan/mandantAPI_1_5"
	clientName = "web"
	dateLayout = "2006-01-02"
)

type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}

type FetchRequest struct {
	Start time.Time
	End   time.Time
	// ETag is the change token seen on the previous fetch of the same range.
	ETag string
}

type FetchResult struct {
	NotModified bool
	Payload     *Response
	ETag        string
}

// StatusError reports a non-success vendor response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: vendor responded %s", domain.ErrUpstream, e.Status)
}

func (e *StatusError) Unwrap() error { return domain.ErrUpstream }

type requestBody struct {
	Command   string           `json:"command"`
	Client    string           `json:"client"`
	Parameter requestParameter `json:"parameter"`
}

type requestParameter struct {
	MandantID    string `json:"mandantId"`
	SpeiseplanNr string `json:"speiseplanNr"`
	Von          string `json:"von"`
	Bis          string `json:"bis"`
}

type Client struct {
	cfg    config.UpstreamConfig
	client *http.Client
	log    *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	timeout := cfg.Upstream.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg.Upstream,
		client: &http.Client{Timeout: timeout},
		log:    log.Named("upstream"),
	}
}

func (c *Client) Fetch(ctx context.Context, in FetchRequest) (*FetchResult, error) {
	if strings.TrimSpace(c.cfg.RequestURL) == "" {
		return nil, fmt.Errorf("%w: request url not configured", domain.ErrUpstream)
	}

	body, err := json.Marshal(requestBody{
		Command: command,
		Client:  clientName,
		Parameter: requestParameter{
			MandantID:    c.cfg.MandantID,
			SpeiseplanNr: c.cfg.SpeiseplanNr,
			Von:          in.Start.Format(dateLayout),
			Bis:          in.End.Format(dateLayout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", domain.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RequestURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*")
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.ReferrerURL != "" {
		req.Header.Set("Referer", c.cfg.ReferrerURL)
	}
	req.Header.Set("If-None-Match", in.ETag)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		c.log.Debug("plan not modified",
			zap.String("from", in.Start.Format(dateLayout)),
			zap.String("to", in.End.Format(dateLayout)),
		)
		_, _ = io.Copy(io.Discard, resp.Body)
		return &FetchResult{NotModified: true, ETag: in.ETag}, nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrUpstream, err)
	}

	etag := resp.Header.Get("ETag")
	c.log.Debug("plan fetched",
		zap.String("from", in.Start.Format(dateLayout)),
		zap.String("to", in.End.Format(dateLayout)),
		zap.Int("days", len(payload.Content.SpeiseplanTage)),
		zap.String("etag", etag),
	)
	return &FetchResult{Payload: &payload, ETag: etag}, nil
}
