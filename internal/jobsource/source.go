// Package jobsource loads job descriptions from literal text, local files or web pages.
package jobsource

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"lettercraft/internal/common"
	"lettercraft/internal/config"
	"lettercraft/internal/errors"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultTimeout     = 15 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (compatible; Lettercraft/1.0)"
	DefaultMaxBodySize = 2 << 20
)

// noiseSelector matches page chrome that never belongs to a job description
const noiseSelector = "nav, footer, header, script, style, noscript"

// contentSelectors are tried in order before falling back to body
var contentSelectors = []string{"main", "article", "#content", ".content"}

// Source yields the text of a job description
type Source interface {
	Fetch(ctx context.Context) (string, error)
	String() string
}

// Text is a job description given inline
type Text string

// Fetch implements Source
func (t Text) Fetch(context.Context) (string, error) {
	return strings.TrimSpace(string(t)), nil
}

func (t Text) String() string { return "text" }

// File reads a job description from disk
type File struct {
	Path  string
	files *common.FileProcessor
}

// Fetch implements Source
func (f File) Fetch(context.Context) (string, error) {
	files := f.files
	if files == nil {
		files = common.NewFileProcessor(nil)
	}
	content, err := files.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (f File) String() string { return "file:" + f.Path }

// URL downloads a job posting and extracts its main text
type URL struct {
	Address     string
	Client      *http.Client
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int64
}

func (u URL) String() string { return "url:" + u.Address }

// Fetch implements Source
func (u URL) Fetch(ctx context.Context) (string, error) {
	timeout := u.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Address, nil)
	if err != nil {
		return "", fetchError(u.Address, "invalid job URL", err)
	}
	userAgent := u.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if stderrors.Is(err, ErrBlockedAddress) {
			return "", errors.NewValidationError(errors.ErrCodeFetchFailed,
				"Job URL must point to a public address", err).WithContext("url", u.Address)
		}
		if ctx.Err() != nil {
			return "", errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
				"Timed out fetching job description", err).WithContext("url", u.Address)
		}
		return "", fetchError(u.Address, "HTTP request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fetchError(u.Address, fmt.Sprintf("HTTP status %d", resp.StatusCode), nil).
			WithContext("status", resp.StatusCode)
	}

	limit := u.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", fetchError(u.Address, "failed to read response body", err)
	}

	if !isHTML(resp.Header.Get("Content-Type")) {
		return normalizeWhitespace(string(body)), nil
	}

	text, err := ExtractMainText(string(body))
	if err != nil {
		return "", fetchError(u.Address, "failed to parse HTML", err)
	}
	return text, nil
}

func fetchError(address, message string, cause error) *errors.AppError {
	return errors.NewNetworkError(errors.ErrCodeFetchFailed,
		"Failed to fetch job description: "+message, cause).WithContext("url", address)
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// ExtractMainText strips page chrome and returns the text of the main content
// element, or of body when none matches.
func ExtractMainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find(noiseSelector).Remove()

	var main *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	return normalizeWhitespace(main.Text()), nil
}

// normalizeWhitespace collapses spaces within lines and drops blank lines
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// Resolver turns a command line or request value into a Source
type Resolver struct {
	cfg        config.JobSourceConfig
	client     *http.Client
	files      *common.FileProcessor
	publicOnly bool
}

// Option configures a Resolver
type Option func(*Resolver)

// PublicOnly restricts URL fetches to public addresses and treats every
// non-URL value as literal text. Use it when the value comes from a remote caller.
func PublicOnly() Option {
	return func(r *Resolver) {
		r.publicOnly = true
		r.client = newPublicClient()
	}
}

// NewResolver creates a resolver using cfg for URL fetches
func NewResolver(cfg config.JobSourceConfig, logger *errors.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		client: &http.Client{},
		files:  common.NewFileProcessor(logger),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks a URL for http(s) values, a file for existing paths and literal text otherwise
func (r *Resolver) Resolve(value string) Source {
	value = strings.TrimSpace(value)

	if IsURL(value) {
		return URL{
			Address:     value,
			Client:      r.client,
			UserAgent:   r.cfg.UserAgent,
			Timeout:     r.cfg.Timeout,
			MaxBodySize: r.cfg.MaxBodySize,
		}
	}
	if !r.publicOnly && value != "" && !strings.Contains(value, "\n") {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return File{Path: value, files: r.files}
		}
	}
	return Text(value)
}

// Fetch resolves value and fetches its text
func (r *Resolver) Fetch(ctx context.Context, value string) (string, error) {
	return r.Resolve(value).Fetch(ctx)
}

// IsURL reports whether value is an absolute http or https URL
func IsURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
