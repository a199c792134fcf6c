package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/motogp-ics/internal/config"
	"github.com/pfrederiksen/motogp-ics/internal/event"
	"github.com/pfrederiksen/motogp-ics/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func newTestScraper(calendarURL string) *Scraper {
	cfg := config.DefaultConfig()
	cfg.CalendarURL = calendarURL
	cfg.Timeout = 2 * time.Second
	return New(cfg)
}

func TestParseEntries(t *testing.T) {
	s := newTestScraper("https://www.motogp.com/en/calendar")
	entries := s.parseEntries(loadFixture(t, "calendar.html"), "https://www.motogp.com/en/calendar")

	assert.Equal(t, []event.Entry{
		{
			Title:   "Qatar Airways Grand Prix of Qatar",
			Venue:   "Lusail International Circuit",
			Country: "QATAR",
			URL:     "https://www.motogp.com/en/event/qatar",
		},
		{
			Title:   "Official Jerez Test",
			Venue:   "Circuito de Jerez - Angel Nieto",
			Country: "SPAIN",
			URL:     "https://www.motogp.com/en/event/jerez-test",
		},
		{
			Title:   "Gran Premio de España",
			Venue:   "Circuito de Jerez - Angel Nieto",
			Country: "SPAIN",
			URL:     "https://www.motogp.com/en/event/spain",
		},
	}, entries)
	assert.True(t, entries[1].IsTest())
}

func TestParseSchedule(t *testing.T) {
	s := newTestScraper("")
	rows := s.parseSchedule(loadFixture(t, "schedule.html"))

	assert.Equal(t, []schedule.Row{
		{Tier: "MotoGP Free Practice Nr. 1", Category: "FP1", Start: "2024-04-26T09:45:00+0200"},
		{Tier: "Moto2 Free Practice Nr. 1", Category: "FP1", Start: "2024-04-26T10:45:00+0200"},
		{Tier: "MotoGP Race", Category: "RAC", Start: "2024-04-28T14:00:00+0200"},
	}, rows)
}

func TestParseScheduleCustomSelectors(t *testing.T) {
	html := `<table>
		<tr class="row"><td>Q</td><td class="tier">A</td><td><time datetime="2024-04-27T10:50:00+0200"></time></td></tr>
	</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Selectors = config.Selectors{
		ScheduleRow:  "tr.row",
		Tier:         "td.tier",
		Cell:         "td",
		Time:         "time",
		TimeAttr:     "datetime",
		CategoryCell: 0,
	}

	rows := New(cfg).parseSchedule(doc)
	assert.Equal(t, []schedule.Row{{Tier: "A", Category: "Q", Start: "2024-04-27T10:50:00+0200"}}, rows)
}

func TestFetchEntries(t *testing.T) {
	page, err := os.ReadFile("testdata/calendar.html")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "motogp-ics")
		w.Write(page)
	}))
	defer server.Close()

	entries, err := newTestScraper(server.URL+"/en/calendar").FetchEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, server.URL+"/en/event/spain", entries[2].URL, "relative links resolve against the calendar page")
}

func TestFetchSchedule(t *testing.T) {
	page, err := os.ReadFile("testdata/schedule.html")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en/event/spain" {
			http.NotFound(w, r)
			return
		}
		w.Write(page)
	}))
	defer server.Close()

	s := newTestScraper(server.URL)

	rows, err := s.FetchSchedule(context.Background(), server.URL+"/en/event/spain#schedule")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = s.FetchSchedule(context.Background(), server.URL+"/en/event/nowhere")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Contains(t, fe.Error(), "404")
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		ctx     func() (context.Context, context.CancelFunc)
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			ctx:    func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
			status: http.StatusInternalServerError,
		},
		{
			name: "cancelled context",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html></html>"))
			},
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			ctx, cancel := tt.ctx()
			defer cancel()

			_, err := newTestScraper(server.URL).FetchEntries(ctx)
			var fe *FetchError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, server.URL, fe.URL)
			assert.Equal(t, tt.status, fe.StatusCode)
			if tt.status == 0 {
				assert.True(t, errors.Is(err, context.Canceled))
			}
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestScraper(url).FetchEntries(context.Background())
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://www.motogp.com/en/calendar", "https://www.motogp.com/en/event/qatar", "https://www.motogp.com/en/event/qatar"},
		{"https://www.motogp.com/en/calendar", "/en/event/spain", "https://www.motogp.com/en/event/spain"},
		{"https://www.motogp.com/en/calendar", "event/spain", "https://www.motogp.com/en/event/spain"},
		{"https://www.motogp.com/en/calendar", "", "https://www.motogp.com/en/calendar"},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveURL(tt.base, tt.href))
		})
	}
}

func TestSquash(t *testing.T) {
	assert.Equal(t, "Official Jerez Test", squash("  Official Jerez\n\t  Test "))
	assert.Equal(t, "", squash(" \n "))
}
