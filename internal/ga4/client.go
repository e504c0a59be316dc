package ga4

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the GA4 collection endpoint.
const DefaultEndpoint = "https://www.google-analytics.com/g/collect"

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 10 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 5 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 5 * time.Second
)

// Sentinel errors for collector sends.
var (
	ErrEmptyReport     = errors.New("ga4: report has no events")
	ErrCollectorStatus = errors.New("ga4: unexpected collector status")
)

// NewHTTPClient creates an HTTP client configured for collector sends.
// It does not follow redirects.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Client sends reports to a GA4 collector.
type Client struct {
	endpoint string
	http     *http.Client
	now      func() time.Time
}

// NewClient creates a collector client. An empty endpoint selects
// DefaultEndpoint and a nil httpClient selects NewHTTPClient().
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{
		endpoint: endpoint,
		http:     httpClient,
		now:      time.Now,
	}
}

// Send performs the collector request for r.
func (c *Client) Send(ctx context.Context, r *Report) error {
	events := r.All()
	if len(events) == 0 {
		return ErrEmptyReport
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	target.RawQuery = c.query(r).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(EncodeEvents(events)))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	if ua := r.Request.Header.Get("User-Agent"); ua != "" {
		req.Header.Set("User-Agent", TruncateUserAgent(ua))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d", ErrCollectorStatus, resp.StatusCode)
	}
	return nil
}

// query builds the per-report parameters shared by all events.
func (c *Client) query(r *Report) url.Values {
	ip := r.Conn.IP()
	ua := r.Request.Header.Get("User-Agent")

	q := url.Values{}
	q.Set("v", "2")
	q.Set("tid", r.MeasurementID)
	q.Set("cid", ClientID(ip, ua, c.now()))
	q.Set("dl", r.Request.Location)
	if ref := SanitizeReferrer(r.Request.Header.Get("Referer")); ref != "" {
		q.Set("dr", ref)
	}
	if lang := PrimaryLanguage(r.Request.Header.Get("Accept-Language")); lang != "" {
		q.Set("ul", lang)
	}
	if ip != "" {
		q.Set("_uip", ip)
	}
	return q
}

// EncodeEvents renders events as collector body lines, one per event.
// String and bool parameters use the ep. prefix, numbers use epn.
func EncodeEvents(events []Event) string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, encodeEvent(e))
	}
	return strings.Join(lines, "\r\n")
}

func encodeEvent(e Event) string {
	parts := []string{"en=" + url.QueryEscape(e.Name)}

	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		prefix, value := encodeParam(e.Params[k])
		parts = append(parts, prefix+url.QueryEscape(k)+"="+url.QueryEscape(value))
	}
	return strings.Join(parts, "&")
}

func encodeParam(v any) (string, string) {
	switch val := v.(type) {
	case string:
		return "ep.", val
	case bool:
		return "ep.", strconv.FormatBool(val)
	case int:
		return "epn.", strconv.Itoa(val)
	case int64:
		return "epn.", strconv.FormatInt(val, 10)
	case float64:
		return "epn.", strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return "ep.", fmt.Sprint(val)
	}
}
