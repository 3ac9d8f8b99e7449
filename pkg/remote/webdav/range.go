package webdav

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/studio-b12/gowebdav"

	"github.com/marmos91/davmount/pkg/remote"
)

// GetRange reads length bytes starting at offset with a raw HTTP GET.
//
// It deliberately bypasses the client library: the request needs explicit
// control of both the Range and the Authorization header on one request,
// which the library's download helpers do not expose together.
//
// Reply handling:
//   - 206: the server honored the range; the body is the window.
//   - 200: the server ignored the Range header and sent the whole
//     resource; the window is sliced out locally.
//   - 416: the range starts at or past end of file; an empty slice, not an
//     error.
//
// Resources shorter than offset+length yield fewer bytes than requested,
// without error.
func (c *Client) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, remote.NewOtherError(path, fmt.Sprintf("invalid range [%d, +%d)", offset, length), nil)
	}
	if length == 0 {
		return []byte{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL(path), nil)
	if err != nil {
		return nil, remote.NewOtherError(path, "building range request", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, remote.NewUnreachableError(path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, remote.NewOtherError(path, "reading range response", err)
		}
		if int64(len(body)) > length {
			body = body[:length]
		}
		return body, nil

	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, remote.NewOtherError(path, "reading response", err)
		}
		if offset >= int64(len(body)) {
			return []byte{}, nil
		}
		end := offset + length
		if end > int64(len(body)) {
			end = int64(len(body))
		}
		return body[offset:end], nil

	case http.StatusRequestedRangeNotSatisfiable:
		return []byte{}, nil

	case http.StatusNotFound, http.StatusConflict:
		return nil, remote.NewNotFoundError(path)

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, remote.NewForbiddenError(path)

	default:
		return nil, remote.NewOtherError(path, fmt.Sprintf("range GET returned status %d", resp.StatusCode), nil)
	}
}

// resourceURL joins the endpoint with a segment-escaped remote path.
func (c *Client) resourceURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.endpoint + gowebdav.PathEscape(path)
}
