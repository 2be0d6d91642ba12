package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mystichronicle/VisionNav/internal/common"
	"github.com/mystichronicle/VisionNav/internal/entity"
)

// NewHTTPClient builds a client that applies timeout to dialing, the TLS
// handshake and the wait for response headers. The body transfer itself
// runs unbounded.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}
}

type httpSource struct {
	client    *http.Client
	chunkSize int
	log       *slog.Logger
}

func NewHTTPSource(client *http.Client, chunkSize int, log *slog.Logger) *httpSource {
	if chunkSize <= 0 {
		chunkSize = 8 * 1024
	}

	return &httpSource{
		client:    client,
		chunkSize: chunkSize,
		log:       log.With(slog.String("item", "HTTPSource")),
	}
}

// Fetch streams the body of url into dst in fixed-size chunks, reporting
// cumulative progress after every chunk. It returns the number of bytes
// handed to dst. Redirects are followed by the underlying client.
func (s *httpSource) Fetch(ctx context.Context, url string, dst io.Writer, report entity.ProgressFunc) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot build request for %s: %v", common.ErrNetwork, url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot fetch %s: %v", common.ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s returned %s", common.ErrNetwork, url, resp.Status)
	}

	total := resp.ContentLength
	s.log.Debug("Transfer started", slog.String("url", url), slog.Int64("content_length", total))

	buf := make([]byte, s.chunkSize)

	var received int64
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return received, werr
			}

			received += int64(n)
			if report != nil {
				report(entity.Progress{Received: received, Total: total})
			}
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}

			return received, fmt.Errorf("%w: transfer from %s interrupted after %d bytes: %v",
				common.ErrNetwork, url, received, rerr)
		}
	}

	s.log.Debug("Transfer finished", slog.String("url", url), slog.Int64("received", received))

	return received, nil
}
