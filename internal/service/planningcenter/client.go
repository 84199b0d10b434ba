package planningcenter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/planning-center-groups-go/internal/constants"
	"github.com/kapu/planning-center-groups-go/internal/domain"
	"github.com/kapu/planning-center-groups-go/internal/util"
	"github.com/kapu/planning-center-groups-go/pkg/errors"
	"go.uber.org/zap"
)

// GroupsFetcher is the group source consumed by the embed pipeline.
type GroupsFetcher interface {
	FetchGroups(ctx context.Context, creds domain.Credentials) (*GroupsResponse, error)
}

// GroupsResponse is a successful fetch: the raw exchange plus the decoded
// document.
type GroupsResponse struct {
	StatusCode int
	Body       string
	Document   *domain.GroupsDocument
}

type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewClient builds a client against baseURL. A zero timeout leaves the
// request bounded only by ctx.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, logger)
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = constants.APIConfig.PlanningCenterBaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   httpClient,
		logger:       logger,
		maxBodyBytes: constants.APIConfig.MaxResponseBytes,
	}
}

// GroupsURL is the single page of groups with tags and group types
// side-loaded.
func (c *Client) GroupsURL() string {
	params := url.Values{}
	params.Set("include", constants.APIConfig.GroupsInclude)
	// Encode would escape the comma; the API expects it literal.
	query := strings.ReplaceAll(params.Encode(), "%2C", ",")
	return c.baseURL + constants.APIConfig.GroupsPath + "?" + query
}

// FetchGroups performs one GET with Basic auth. It does not retry. Missing
// credentials fail with a ConfigurationError before any request is built;
// every other failure is a TransportError carrying the raw status and body.
func (c *Client) FetchGroups(ctx context.Context, creds domain.Credentials) (*GroupsResponse, error) {
	if creds.ClientID == "" {
		return nil, errors.NewConfigurationError("Planning Center client id is not set", "client_id")
	}
	if creds.ClientSecret == "" {
		return nil, errors.NewConfigurationError("Planning Center client secret is not set", "client_secret")
	}

	reqURL := c.GroupsURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewTransportError("failed to create request", 0, reqURL, "", err)
	}

	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Planning Center request failed",
			zap.String("url", reqURL),
			zap.Error(err),
		)
		return nil, errors.NewTransportError("request failed", 0, reqURL, "", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, errors.NewTransportError("failed to read response body", resp.StatusCode, reqURL, string(bodyBytes), err)
	}
	if int64(len(bodyBytes)) > c.maxBodyBytes {
		c.logger.Warn("Planning Center response too large",
			zap.Int("status", resp.StatusCode),
			zap.Int64("limit", c.maxBodyBytes),
		)
		return nil, errors.NewTransportError(
			fmt.Sprintf("response body exceeds %d bytes", c.maxBodyBytes),
			resp.StatusCode, reqURL, string(bodyBytes[:c.maxBodyBytes]), nil,
		)
	}
	body := string(bodyBytes)

	c.logger.Debug("Planning Center response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(bodyBytes)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Planning Center API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", util.TruncateString(body, 200)),
		)
		return nil, errors.NewTransportError(
			fmt.Sprintf("Planning Center API error: %s", resp.Status),
			resp.StatusCode, reqURL, body, nil,
		)
	}

	doc, err := domain.ParseGroupsDocument(bodyBytes)
	if err != nil {
		c.logger.Warn("Planning Center returned a non-JSON body",
			zap.Int("status", resp.StatusCode),
			zap.String("body", util.TruncateString(body, 200)),
		)
		return nil, errors.NewTransportError("failed to decode response", resp.StatusCode, reqURL, body, err)
	}

	if doc.Skipped > 0 {
		c.logger.Warn("Skipped malformed resources in groups response",
			zap.Int("skipped", doc.Skipped),
		)
	}

	return &GroupsResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		Document:   doc,
	}, nil
}
