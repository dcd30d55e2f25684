package myshiptracking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSite struct {
	lock       sync.Mutex
	requests   []string
	userAgents []string
	// keyed by page number, page 1 is the listing without &page
	pages  map[int]string
	status int
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.requests = append(s.requests, r.URL.RequestURI())
	s.userAgents = append(s.userAgents, r.Header.Get("User-Agent"))

	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, _ = strconv.Atoi(p)
	}
	body, ok := s.pages[page]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

func (s *fakeSite) requestCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.requests)
}

type testClient struct {
	*Client
	delays []time.Duration
}

func newTestClient(t testing.TB, site *fakeSite) (*testClient, func()) {
	server := httptest.NewServer(site)

	agents := 0
	client, err := NewClient(ClientOptions{
		BaseUrl: server.URL,
		UserAgents: UserAgentFunc(func() string {
			agents++
			return "test-agent/" + strconv.Itoa(agents)
		}),
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)

	tc := &testClient{Client: client}
	client.sleep = func(ctx context.Context, d time.Duration) error {
		tc.delays = append(tc.delays, d)
		return nil
	}
	return tc, server.Close
}

func TestFetchTableThreePages(t *testing.T) {
	site := &fakeSite{pages: map[int]string{
		1: listingPage(footer(2, 5), portRow("1", "Aberdeen", "Scotland"), portRow("2", "Antwerp", "Belgium")),
		2: listingPage(footer(2, 5), portRow("3", "Bilbao", "Spain"), portRow("4", "Bremen", "Germany")),
		3: listingPage(footer(2, 5), portRow("5", "Calais", "France")),
	}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()

	ports, err := client.GetPorts(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{
		"/ports?sort=ID",
		"/ports?sort=ID&page=2",
		"/ports?sort=ID&page=3",
	}, site.requests)
	require.Equal(t, []time.Duration{DefaultPageDelay, DefaultPageDelay}, client.delays)
	// every page gets a fresh user agent
	require.Equal(t, []string{"test-agent/1", "test-agent/2", "test-agent/3"}, site.userAgents)

	ids := make([]string, len(ports))
	for i, p := range ports {
		ids[i] = Value(p.Id)
	}
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
	require.Equal(t, "Belgium", Value(ports[1].Country))
	require.Equal(t, client.BaseUrl+"/ports/port-of-calais-in-xx-france-id-5", Value(ports[4].Url))
}

func TestFetchTableFooterFallback(t *testing.T) {
	site := &fakeSite{pages: map[int]string{
		1: listingPage("", portRow("1", "Aberdeen", "Scotland"), portRow("2", "Antwerp", "Belgium")),
		2: listingPage("", portRow("3", "Bilbao", "Spain")),
	}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()

	records, err := client.FetchTable(context.Background(), client.BaseUrl+"/ports?sort=ID", KindPort)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 1, site.requestCount())
	require.Empty(t, client.delays)
}

func TestFetchTableEmptyListing(t *testing.T) {
	site := &fakeSite{pages: map[int]string{
		1: listingPage(footer(50, 0)),
	}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()

	events, err := client.GetVesselEvents(context.Background(), "244123000")
	require.NoError(t, err)
	require.Empty(t, events)
	require.Equal(t, []string{"/vessel-events?sort=TIME&mmsi=244123000"}, site.requests)
}

func TestFetchTableRetriesMarkupMismatch(t *testing.T) {
	// the footer says one page but there is no table body to read
	site := &fakeSite{pages: map[int]string{
		1: `<html><body>` + footer(50, 10) + `</body></html>`,
	}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()

	_, err := client.GetInPortVessels(context.Background(), "137")
	require.ErrorIs(t, err, ErrMarkupMismatch)
	require.Equal(t, DefaultMaxAttempts, site.requestCount())
}

func TestFetchTableRetriesRowErrors(t *testing.T) {
	site := &fakeSite{pages: map[int]string{
		1: listingPage(footer(50, 1), `<tr><td>only one cell</td></tr>`),
	}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()
	client.maxAttempts = 3

	_, err := client.GetArrivals(context.Background(), "137")
	var markupErr *MarkupError
	require.ErrorAs(t, err, &markupErr)
	require.Equal(t, "arrivals", markupErr.Rule)
	require.Equal(t, 3, site.requestCount())
}

func TestFetchTableRetriesTransportFailure(t *testing.T) {
	site := &fakeSite{status: http.StatusServiceUnavailable}
	client, cleanup := newTestClient(t, site)
	defer cleanup()

	_, err := client.GetPortCalls(context.Background(), "137")
	require.ErrorIs(t, err, ErrTransport)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
	require.Equal(t, DefaultMaxAttempts, site.requestCount())
}

type recordingTimer struct {
	delays []time.Duration
	c      chan time.Time
}

func (r *recordingTimer) Start(d time.Duration) {
	r.delays = append(r.delays, d)
	r.c = make(chan time.Time, 1)
	r.c <- time.Now()
}

func (r *recordingTimer) Stop() {}

func (r *recordingTimer) C() <-chan time.Time {
	return r.c
}

func TestFetchTableWaitsRetryDelayBetweenAttempts(t *testing.T) {
	cases := []struct {
		name        string
		maxAttempts int
		retryDelay  time.Duration
	}{
		{"defaults", DefaultMaxAttempts, time.Millisecond},
		{"three attempts", 3, 250 * time.Millisecond},
		{"single attempt", 1, time.Second},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			site := &fakeSite{status: http.StatusBadGateway}
			client, cleanup := newTestClient(t, site)
			defer cleanup()
			client.maxAttempts = c.maxAttempts
			client.retryDelay = c.retryDelay
			timer := &recordingTimer{}
			client.retryTimer = timer

			_, err := client.GetPorts(context.Background())
			require.ErrorIs(t, err, ErrTransport)
			require.Equal(t, c.maxAttempts, site.requestCount())

			want := make([]time.Duration, c.maxAttempts-1)
			for i := range want {
				want[i] = c.retryDelay
			}
			require.Equal(t, want, append([]time.Duration{}, timer.delays...))
			// page pacing is separate from the retry pause
			require.Empty(t, client.delays)
		})
	}
}

func TestFetchTableDiscardsFailedAttempts(t *testing.T) {
	site := &fakeSite{pages: map[int]string{
		1: listingPage(footer(1, 2), portRow("1", "Aberdeen", "Scotland")),
	}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()

	// page 2 appears after the first attempt has failed on it
	client.sleep = func(ctx context.Context, d time.Duration) error {
		if site.requestCount() >= 2 {
			site.lock.Lock()
			site.pages[2] = listingPage(footer(1, 2), portRow("2", "Antwerp", "Belgium"))
			site.lock.Unlock()
		}
		return nil
	}

	ports, err := client.GetPorts(context.Background())
	require.NoError(t, err)
	require.Len(t, ports, 2)
	require.Equal(t, []string{
		"/ports?sort=ID",
		"/ports?sort=ID&page=2",
		"/ports?sort=ID",
		"/ports?sort=ID&page=2",
	}, site.requests)
}

func TestFetchTableInvalidArgument(t *testing.T) {
	site := &fakeSite{pages: map[int]string{}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()

	_, err := client.FetchTable(context.Background(), client.BaseUrl+"/ports?sort=ID", Kind(0))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = client.GetArrivals(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = client.SearchPort(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidArgument)

	require.Equal(t, 0, site.requestCount())
}

func TestFetchTableInvalidArgumentIsNotRetried(t *testing.T) {
	site := &fakeSite{pages: map[int]string{
		1: listingPage(footer(50, 1), portRow("1", "Aberdeen", "Scotland")),
	}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()

	rule := func(row Row) (Port, error) {
		return Port{}, ErrInvalidArgument
	}
	_, err := fetchTable(context.Background(), client.Client, client.BaseUrl+"/ports?sort=ID", rule)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, 1, site.requestCount())
}

func TestQueryUrls(t *testing.T) {
	site := &fakeSite{pages: map[int]string{1: listingPage(footer(50, 0))}}
	client, cleanup := newTestClient(t, site)
	defer cleanup()
	ctx := context.Background()

	_, err := client.SearchPort(ctx, "Port of Rotterdam")
	require.NoError(t, err)
	_, err = client.GetInPortVessels(ctx, "137")
	require.NoError(t, err)
	_, err = client.GetArrivals(ctx, "137")
	require.NoError(t, err)
	_, err = client.GetPortCalls(ctx, "137")
	require.NoError(t, err)
	_, err = client.GetVesselLastPorts(ctx, "244123000")
	require.NoError(t, err)

	require.Equal(t, []string{
		"/ports?sort=ID&search=port+of+rotterdam",
		"/inport?sort=TIME&pid=137",
		"/estimate?sort=TIME&pid=137",
		"/ports-arrivals-departures/?sort=TIME&pid=137",
		"/ports-arrivals-departures/?sort=TIME&mmsi=244123000",
	}, site.requests)
}

func TestNewClientRejectsRelativeBaseUrl(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "myshiptracking.com"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
