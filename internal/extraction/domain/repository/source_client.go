package repository

import (
	"context"

	"rta-sync/internal/extraction/domain/model"
)

// SourceClient fetches a single page from the remote source
type SourceClient interface {
	// FetchPage performs an authenticated GET and decodes the page body.
	// Transport failures, timeouts and non-2xx statuses are FETCH_FAILUREs;
	// an undecodable body is a PARSE_FAILURE.
	FetchPage(ctx context.Context, url string, creds model.Credentials) (*model.Page, error)
}
