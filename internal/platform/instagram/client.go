package instagram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Container status codes returned by the Graph API while an upload is
// being processed server-side.
const (
	ContainerInProgress = "IN_PROGRESS"
	ContainerFinished   = "FINISHED"
)

// Config holds configuration for the Instagram Graph API client.
type Config struct {
	BaseURL   string
	AppID     string
	AppSecret string
	Timeout   time.Duration
}

// Client wraps the Instagram Graph API endpoints used by the pipeline:
// long-lived token exchange and the reel container publish protocol.
type Client struct {
	client    *resty.Client
	baseURL   string
	appID     string
	appSecret string
}

// NewClient creates a new Instagram Graph API client.
// Parameters:
//   - cfg: client configuration including app credentials.
// Returns:
//   - *Client: initialized Graph API client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Accept", "application/json")
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v19.0"
	}

	return &Client{
		client:    client,
		baseURL:   baseURL,
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
	}
}

// graphError is the error envelope returned by the Graph API.
type graphError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

type exchangeResponse struct {
	graphError
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type createContainerResponse struct {
	graphError
	ID string `json:"id"`
}

type containerStatusResponse struct {
	graphError
	ID         string `json:"id"`
	StatusCode string `json:"status_code"`
	Status     string `json:"status"`
}

type publishResponse struct {
	graphError
	ID string `json:"id"`
}

type permalinkResponse struct {
	graphError
	Permalink string `json:"permalink"`
}

// Token is the result of a long-lived token exchange.
type Token struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// ExchangeToken trades an existing token for a fresh long-lived token.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - current: token to exchange.
// Returns:
//   - *Token: new token with its validity duration.
//   - error: non-nil if the exchange fails.
func (c *Client) ExchangeToken(ctx context.Context, current string) (*Token, error) {
	var resp exchangeResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":        "fb_exchange_token",
			"client_id":         c.appID,
			"client_secret":     c.appSecret,
			"fb_exchange_token": current,
		}).
		SetResult(&resp).
		SetError(&resp).
		Get(c.baseURL + "/oauth/access_token")

	if err != nil {
		return nil, fmt.Errorf("failed to call token exchange: %w", err)
	}
	if err := checkGraphResponse(httpResp, &resp.graphError); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("token exchange returned empty access_token")
	}

	return &Token{
		AccessToken: resp.AccessToken,
		ExpiresIn:   time.Duration(resp.ExpiresIn) * time.Second,
	}, nil
}

// CreateContainer registers a reel upload container for a business account.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - businessAccountID: Instagram business account ID.
//   - videoURL: durable, publicly reachable URL of the composed video.
//   - caption: caption text including hashtags.
//   - accessToken: valid account token.
// Returns:
//   - string: container ID for status polling and publishing.
//   - error: non-nil if the Graph API call fails.
func (c *Client) CreateContainer(ctx context.Context, businessAccountID, videoURL, caption, accessToken string) (string, error) {
	var resp createContainerResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"media_type":   "REELS",
			"video_url":    videoURL,
			"caption":      caption,
			"access_token": accessToken,
		}).
		SetResult(&resp).
		SetError(&resp).
		Post(fmt.Sprintf("%s/%s/media", c.baseURL, businessAccountID))

	if err != nil {
		return "", fmt.Errorf("failed to create media container: %w", err)
	}
	if err := checkGraphResponse(httpResp, &resp.graphError); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("container creation returned empty id")
	}

	return resp.ID, nil
}

// ContainerStatus fetches the processing status of an upload container.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - containerID: container to inspect.
//   - accessToken: valid account token.
// Returns:
//   - string: status code (IN_PROGRESS, FINISHED, or a failure state).
//   - error: non-nil if the Graph API call fails.
func (c *Client) ContainerStatus(ctx context.Context, containerID, accessToken string) (string, error) {
	var resp containerStatusResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "status_code,status",
			"access_token": accessToken,
		}).
		SetResult(&resp).
		SetError(&resp).
		Get(fmt.Sprintf("%s/%s", c.baseURL, containerID))

	if err != nil {
		return "", fmt.Errorf("failed to fetch container status: %w", err)
	}
	if err := checkGraphResponse(httpResp, &resp.graphError); err != nil {
		return "", err
	}

	return resp.StatusCode, nil
}

// PublishContainer publishes a finished container as a reel.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - businessAccountID: Instagram business account ID.
//   - containerID: finished container to publish.
//   - accessToken: valid account token.
// Returns:
//   - string: platform media ID of the published reel.
//   - error: non-nil if the Graph API call fails.
func (c *Client) PublishContainer(ctx context.Context, businessAccountID, containerID, accessToken string) (string, error) {
	var resp publishResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"creation_id":  containerID,
			"access_token": accessToken,
		}).
		SetResult(&resp).
		SetError(&resp).
		Post(fmt.Sprintf("%s/%s/media_publish", c.baseURL, businessAccountID))

	if err != nil {
		return "", fmt.Errorf("failed to publish container: %w", err)
	}
	if err := checkGraphResponse(httpResp, &resp.graphError); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("publish returned empty media id")
	}

	return resp.ID, nil
}

// Permalink fetches the public URL of a published media item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - mediaID: published media ID.
//   - accessToken: valid account token.
// Returns:
//   - string: permalink URL; empty when the API omits it.
//   - error: non-nil if the Graph API call fails.
func (c *Client) Permalink(ctx context.Context, mediaID, accessToken string) (string, error) {
	var resp permalinkResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "permalink",
			"access_token": accessToken,
		}).
		SetResult(&resp).
		SetError(&resp).
		Get(fmt.Sprintf("%s/%s", c.baseURL, mediaID))

	if err != nil {
		return "", fmt.Errorf("failed to fetch permalink: %w", err)
	}
	if err := checkGraphResponse(httpResp, &resp.graphError); err != nil {
		return "", err
	}

	return resp.Permalink, nil
}

// checkGraphResponse maps HTTP and Graph API error envelopes to errors.
func checkGraphResponse(httpResp *resty.Response, apiErr *graphError) error {
	if apiErr.Error != nil {
		return fmt.Errorf("graph API error (code %d): %s", apiErr.Error.Code, apiErr.Error.Message)
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return fmt.Errorf("graph API returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	return nil
}
