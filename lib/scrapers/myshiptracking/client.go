package myshiptracking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"shiptrack/lib/restyutil"
	"shiptrack/lib/telemetry"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseUrl     = "https://www.myshiptracking.com"
	DefaultPageDelay   = 500 * time.Millisecond
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 5 * time.Second
	DefaultTimeout     = 30 * time.Second
)

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to RandomUserAgent
	UserAgents UserAgentProvider
	// pause between two page fetches of the same listing
	PageDelay time.Duration
	// attempts of a whole listing fetch, including the first one
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
	// route requests through the cloudflare-friendly transport
	CloudflareBypass bool
	// when set, full HTTP messages are dumped here while debug logging is on
	InstrumentOutput restyutil.InstrumentOutput
}

type Client struct {
	BaseUrl string
	Http    *resty.Client

	userAgents  UserAgentProvider
	pageDelay   time.Duration
	maxAttempts int
	retryDelay  time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	// waits out the pause between attempts, nil uses a real timer
	retryTimer  backoff.Timer
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %s", ErrInvalidArgument, err.Error())
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("%w: base url %q is not absolute", ErrInvalidArgument, opts.BaseUrl)
	}
	if opts.UserAgents == nil {
		opts.UserAgents = RandomUserAgent
	}
	if opts.PageDelay == 0 {
		opts.PageDelay = DefaultPageDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	telemetry.InstrumentResty(client, "scrapers/myshiptracking/http")
	restyutil.InstrumentClient(client, opts.InstrumentOutput)

	return &Client{
		BaseUrl:     strings.TrimSuffix(opts.BaseUrl, "/"),
		Http:        client,
		userAgents:  opts.UserAgents,
		pageDelay:   opts.PageDelay,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		sleep:       sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) fetchPage(ctx context.Context, link string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "fetchPage", trace.WithAttributes(
		attribute.String("url", link),
	))
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgents.UserAgent()).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, &TransportError{Url: link, Err: err}
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "unexpected status")
		return nil, &TransportError{Url: link, StatusCode: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}
	return doc, nil
}

// readTable runs rule over every row of the page's table body.
func readTable[T Record](c *Client, doc *goquery.Document, rule Rule[T], out []T) ([]T, error) {
	body := doc.Find("tbody.table-body").First()
	if body.Length() == 0 {
		return out, markupErrorf("table", "no table body")
	}
	rows := body.ChildrenFiltered("tr")
	for i := range rows.Nodes {
		record, err := rule(NewRow(c.BaseUrl, rows.Eq(i)))
		if err != nil {
			return out, err
		}
		out = append(out, record)
	}
	return out, nil
}

// fetchPages is one attempt of a listing fetch: the first page decides how
// many pages there are, each following page is requested with "&page=<i>".
func fetchPages[T Record](ctx context.Context, c *Client, link string, rule Rule[T]) ([]T, error) {
	span := trace.SpanFromContext(ctx)

	doc, err := c.fetchPage(ctx, link)
	if err != nil {
		return nil, err
	}

	pages, err := ResolvePageCount(doc)
	if err != nil {
		// an unreadable footer is treated as a single page listing
		slog.WarnContext(
			ctx, "could not resolve page count, reading the first page only",
			"url", link,
			"err", err,
		)
		span.AddEvent("pagination fallback", trace.WithAttributes(
			attribute.String("url", link),
			attribute.String("err", err.Error()),
		))
		paginationFallbacks.Add(ctx, 1)
		pages = 1
	}
	span.SetAttributes(attribute.Int("pages", pages))

	var records []T
	for i := 1; i <= pages; i++ {
		if i > 1 {
			err = c.sleep(ctx, c.pageDelay)
			if err != nil {
				return nil, err
			}
			doc, err = c.fetchPage(ctx, fmt.Sprintf("%s&page=%d", link, i))
			if err != nil {
				return nil, err
			}
		}
		slog.DebugContext(ctx, "analyzing page", "url", link, "page", i, "pages", pages)

		records, err = readTable(c, doc, rule, records)
		if err != nil {
			slog.DebugContext(ctx, "failed to read table", "url", link, "page", i, "err", err)
			return nil, err
		}
	}
	return records, nil
}

// fetchTable retries the whole listing fetch, nothing from a failed attempt
// is kept. ErrInvalidArgument ends the retries immediately and the last
// error is returned as is once the attempts run out.
func fetchTable[T Record](ctx context.Context, c *Client, link string, rule Rule[T]) ([]T, error) {
	ctx, span := tracer.Start(ctx, "client:FetchTable", trace.WithAttributes(
		attribute.String("url", link),
	))
	defer span.End()

	var result []T
	attempt := 0
	operation := func() error {
		attempt++
		records, err := fetchPages(ctx, c, link, rule)
		if errors.Is(err, ErrInvalidArgument) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		result = records
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.maxAttempts-1)),
		ctx,
	)
	err := backoff.RetryNotifyWithTimer(operation, policy, func(err error, next time.Duration) {
		attemptFailures.Add(ctx, 1)
		slog.WarnContext(
			ctx, "fetch attempt failed",
			"url", link,
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"retry_in", next,
			"err", err,
		)
	}, c.retryTimer)
	span.SetAttributes(attribute.Int("attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch table")
		return nil, err
	}

	slog.DebugContext(ctx, "fetched table", "url", link, "records", len(result), "attempts", attempt)
	return result, nil
}

// AsRecords widens a slice of one record kind to the Record interface.
func AsRecords[T Record](records []T) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

// FetchTable fetches every page of the listing at link and extracts its rows
// as records of the given kind.
func (c *Client) FetchTable(ctx context.Context, link string, kind Kind) ([]Record, error) {
	switch kind {
	case KindPort:
		records, err := fetchTable(ctx, c, link, ExtractPort)
		return AsRecords(records), err
	case KindInPortVessel:
		records, err := fetchTable(ctx, c, link, ExtractInPortVessel)
		return AsRecords(records), err
	case KindArrival:
		records, err := fetchTable(ctx, c, link, ExtractArrival)
		return AsRecords(records), err
	case KindPortCall:
		records, err := fetchTable(ctx, c, link, ExtractPortCall)
		return AsRecords(records), err
	case KindVesselEvent:
		records, err := fetchTable(ctx, c, link, ExtractVesselEvent)
		return AsRecords(records), err
	}
	return nil, fmt.Errorf("%w: unknown record kind %s", ErrInvalidArgument, kind)
}
