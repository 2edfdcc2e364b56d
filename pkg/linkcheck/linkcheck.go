// Package linkcheck scans rendered email HTML for anchor problems.
//
// Every <a> element is classified syntactically (empty, placeholder,
// javascript:, relative, unsupported scheme) and, when the live probe is
// enabled, reachable http(s) hrefs are verified with a HEAD request.
// Mailchimp-style merge tags such as *|UNSUB|* are recognized and left
// alone since they only resolve at send time.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Status classifies a single href.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusPlaceholder Status = "placeholder"
	StatusJavaScript  Status = "javascript"
	StatusRelative    Status = "relative"
	StatusScheme      Status = "unsupported_scheme"
	StatusMalformed   Status = "malformed"
	StatusMergeTag    Status = "merge_tag"
	StatusUnreachable Status = "unreachable"
)

// Problem reports whether the status should be surfaced to the user.
func (s Status) Problem() bool {
	switch s {
	case StatusOK, StatusMergeTag:
		return false
	}
	return true
}

// Link is one anchor found in the document, in document order.
type Link struct {
	Href   string `json:"href"`
	Text   string `json:"text"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report summarizes a scan of one document.
type Report struct {
	Links   []Link `json:"links"`
	Checked int    `json:"checked"`
	Flagged int    `json:"flagged"`
}

// OK reports whether the document has no flagged links.
func (r *Report) OK() bool { return r.Flagged == 0 }

const defaultProbeTimeout = 5 * time.Second

// Checker scans documents. Safe for concurrent use.
type Checker struct {
	httpClient *http.Client
	probe      bool
	timeout    time.Duration
}

type Option func(*Checker)

// WithLiveProbe enables HEAD verification of http(s) links. Each probe is
// bounded by the given timeout, or a 5s default when timeout is zero.
func WithLiveProbe(timeout time.Duration) Option {
	return func(c *Checker) {
		c.probe = true
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient overrides the client used for live probes.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func New(opts ...Option) *Checker {
	c := &Checker{
		httpClient: &http.Client{},
		timeout:    defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check parses the HTML and classifies every anchor it contains.
func (c *Checker) Check(ctx context.Context, html string) (*Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	report := &Report{}
	probed := make(map[string]Link)

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link := Link{
			Href: href,
			Text: strings.TrimSpace(sel.Text()),
		}
		link.Status, link.Detail = classify(href)

		if link.Status == StatusOK && c.probe {
			// Repeated hrefs (header and footer usually share links) are
			// probed once per document.
			if cached, ok := probed[href]; ok {
				link.Status, link.Detail = cached.Status, cached.Detail
			} else {
				link.Status, link.Detail = c.probeURL(ctx, href)
				probed[href] = link
			}
		}

		if link.Status.Problem() {
			report.Flagged++
		}
		report.Links = append(report.Links, link)
	})

	report.Checked = len(report.Links)
	return report, nil
}

func classify(href string) (Status, string) {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return StatusEmpty, "href is empty"
	}
	if strings.HasPrefix(trimmed, "#") {
		return StatusPlaceholder, "placeholder anchor"
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "javascript:") {
		return StatusJavaScript, "javascript hrefs do not work in email clients"
	}
	if strings.Contains(trimmed, "*|") && strings.Contains(trimmed, "|*") {
		return StatusMergeTag, ""
	}
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return StatusOK, ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return StatusMalformed, err.Error()
	}
	if u.Scheme == "" || u.Host == "" {
		return StatusRelative, "email links must be absolute URLs"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return StatusScheme, fmt.Sprintf("unsupported scheme %q", u.Scheme)
	}
	return StatusOK, ""
}

func (c *Checker) probeURL(ctx context.Context, rawURL string) (Status, string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return StatusMalformed, err.Error()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusUnreachable, err.Error()
	}
	defer resp.Body.Close()

	// Some servers reject HEAD outright; that still proves the host answers.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusMethodNotAllowed {
		return StatusUnreachable, fmt.Sprintf("HEAD returned %d", resp.StatusCode)
	}
	return StatusOK, ""
}
