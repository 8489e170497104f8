// Package remote fetches pages from the upstream REST source.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/domain/repository"
	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/logger"
	"rta-sync/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// DefaultTimeout bounds a single page request
const DefaultTimeout = 30 * time.Second

// HeaderRequestID carries the run id so upstream logs can be correlated
const HeaderRequestID = "X-Request-Id"

// Client performs authenticated GETs with fiber's HTTP agent.
type Client struct {
	timeout time.Duration
	logger  logger.Logger
}

var _ repository.SourceClient = (*Client)(nil)

// NewClient creates a Client. A non-positive timeout means DefaultTimeout.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{timeout: timeout, logger: log.WithComponent("source_client")}
}

// FetchPage downloads and decodes one page. The agent has no context
// support, so a cancelled ctx is only honoured before the request starts;
// the timeout bounds the rest.
func (c *Client) FetchPage(ctx context.Context, url string, creds model.Credentials) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	agent := fiber.Get(url)
	agent.Timeout(c.timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if runID, err := utils.GetRunIDFromContext(ctx); err == nil {
		agent.Set(HeaderRequestID, runID)
	}
	if creds.Username != "" {
		agent.BasicAuth(creds.Username, creds.Password)
	}
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, apperrors.NewFetchError(fmt.Sprintf("invalid request for %s", url)).
			WithCause(err).
			WithComponent("source_client")
	}

	status, body, errs := agent.Bytes()
	elapsed := time.Since(start)
	if len(errs) > 0 {
		return nil, apperrors.NewFetchError(fmt.Sprintf("GET %s failed", url)).
			WithCause(errs[0]).
			WithComponent("source_client").
			WithDetail("elapsed", elapsed.String())
	}
	if status < 200 || status > 299 {
		return nil, apperrors.NewFetchError(fmt.Sprintf("GET %s returned %d", url, status)).
			WithComponent("source_client").
			WithDetail("status", status)
	}

	page, err := decodePage(body)
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("body of %s is not a page", url)).
			WithCause(err).
			WithComponent("source_client")
	}

	c.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"url":   url,
		"items": len(page.Items),
	}).Debugf("Fetched page in %.2f seconds", elapsed.Seconds())
	return page, nil
}

// decodePage keeps JSON numbers as json.Number so integers reach the store
// as BSON integers with full precision.
func decodePage(body []byte) (*model.Page, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var page model.Page
	if err := dec.Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}
