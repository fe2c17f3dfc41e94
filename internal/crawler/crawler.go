package crawler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"irps-content-analyzer/internal/models"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrNonHTML    = errors.New("non-html content")
)

type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

func NewHTTPClient(timeout, dialTimeout time.Duration, sizeCap int64) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		// bodies are decoded by decodeBody so br and deflate work too
		DisableCompression: true,
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: DefaultUserAgent,
	}
}

func (h *HTTPClient) SetUserAgent(ua string) {
	if ua != "" {
		h.userAgent = ua
	}
}

// Fetch issues a single GET with a desktop-browser signature and follows
// redirects. Any transport failure, non-2xx status or non-HTML payload is
// returned as an error. Callers that must not fail use FetchOrFallback.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (models.RawPage, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return models.RawPage{}, ErrInvalidURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.RawPage{}, err
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ar;q=0.8,ur;q=0.7,hi;q=0.6")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := h.client.Do(req)
	if err != nil {
		return models.RawPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.RawPage{}, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "" && !isTextual(mediaType) {
		return models.RawPage{}, fmt.Errorf("%w: %s", ErrNonHTML, mediaType)
	}

	body, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return models.RawPage{}, err
	}
	defer body.Close()

	// enforce a size cap on the decoded stream
	data, err := io.ReadAll(io.LimitReader(body, h.sizeCap))
	if err != nil {
		return models.RawPage{}, err
	}

	return models.RawPage{
		URL:           rawURL,
		FinalURL:      resp.Request.URL.String(),
		ContentType:   contentType,
		Body:          data,
		StatusCode:    resp.StatusCode,
		FetchDuration: time.Since(start),
	}, nil
}

// FetchOrFallback never fails: when Fetch errors it returns Fallback(rawURL)
// so the rest of the pipeline can still classify the URL text.
func (h *HTTPClient) FetchOrFallback(ctx context.Context, rawURL string) models.RawPage {
	start := time.Now()
	page, err := h.Fetch(ctx, rawURL)
	if err != nil {
		page = Fallback(rawURL, err)
		page.FetchDuration = time.Since(start)
	}
	return page
}

// Fallback is the degraded page used when a fetch fails: the body is the
// input URL itself and nothing else is known about the page.
func Fallback(rawURL string, cause error) models.RawPage {
	reason := "unknown"
	if cause != nil {
		reason = cause.Error()
	}
	return models.RawPage{
		URL:           rawURL,
		FinalURL:      rawURL,
		ContentType:   "text/plain; charset=utf-8",
		Body:          []byte(rawURL),
		Degraded:      true,
		FailureReason: reason,
		FailureKind:   FailureKind(cause),
	}
}

// FailureKind buckets a fetch error into a short label for metrics.
func FailureKind(err error) string {
	var netErr net.Error
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrNonHTML):
		return "non_html"
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	default:
		return "transport"
	}
}

func isTextual(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/") ||
		strings.Contains(mediaType, "html") ||
		strings.Contains(mediaType, "xml")
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// decodeBody unwraps a Content-Encoding chain such as "gzip, br",
// innermost encoding last.
func decodeBody(contentEncoding string, r io.Reader) (io.ReadCloser, error) {
	out := &multiCloser{Reader: r}
	if contentEncoding == "" {
		return out, nil
	}
	encodings := strings.Split(contentEncoding, ",")
	for i := len(encodings) - 1; i >= 0; i-- {
		switch strings.ToLower(strings.TrimSpace(encodings[i])) {
		case "gzip", "x-gzip":
			gz, err := gzip.NewReader(out.Reader)
			if err != nil {
				return nil, fmt.Errorf("gzip: %w", err)
			}
			out.Reader = gz
			out.closers = append(out.closers, gz)
		case "br":
			out.Reader = brotli.NewReader(out.Reader)
		case "deflate":
			br := bufio.NewReader(out.Reader)
			if hdr, err := br.Peek(2); err == nil && isZlibHeader(hdr) {
				zr, err := zlib.NewReader(br)
				if err != nil {
					return nil, fmt.Errorf("deflate: %w", err)
				}
				out.Reader = zr
				out.closers = append(out.closers, zr)
				break
			}
			// raw DEFLATE without the zlib wrapper
			fr := flate.NewReader(br)
			out.Reader = fr
			out.closers = append(out.closers, fr)
		case "identity", "":
		default:
			return nil, fmt.Errorf("unsupported content-encoding %q", encodings[i])
		}
	}
	return out, nil
}

func isZlibHeader(b []byte) bool {
	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}
