package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/offscale/oasir"
	"github.com/offscale/oasir/specerr"
)

// Fetcher retrieves the raw bytes of a document identified by a canonical
// URI. Implementations must honor ctx cancellation.
type Fetcher func(ctx context.Context, uri string) ([]byte, error)

// FileFetcher returns a Fetcher reading local files, refusing any document
// larger than maxBytes (0 disables the limit).
func FileFetcher(maxBytes int64) Fetcher {
	return func(ctx context.Context, uri string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxBytes > 0 {
			info, err := os.Stat(uri)
			if err != nil {
				return nil, err
			}
			if info.Size() > maxBytes {
				return nil, &specerr.ResourceLimitError{
					ResourceType: "document_bytes",
					Limit:        maxBytes,
					Actual:       info.Size(),
					Message:      fmt.Sprintf("document %s exceeds size limit", uri),
				}
			}
		}
		return os.ReadFile(uri)
	}
}

// HTTPFetcher returns a Fetcher retrieving documents over HTTP(S) with the
// given client (nil uses a client with a 30s timeout). Responses larger
// than maxBytes (0 disables the limit) are rejected.
func HTTPFetcher(client *http.Client, maxBytes int64) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return func(ctx context.Context, uri string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", oasir.UserAgent())
		req.Header.Set("Accept", "application/yaml, application/json, text/yaml, */*")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: unexpected status %d", uri, resp.StatusCode)
		}

		var reader io.Reader = resp.Body
		if maxBytes > 0 {
			reader = io.LimitReader(resp.Body, maxBytes+1)
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		if maxBytes > 0 && int64(len(data)) > maxBytes {
			return nil, &specerr.ResourceLimitError{
				ResourceType: "document_bytes",
				Limit:        maxBytes,
				Actual:       int64(len(data)),
				Message:      fmt.Sprintf("document %s exceeds size limit", uri),
			}
		}
		return data, nil
	}
}
