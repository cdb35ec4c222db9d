package testutils

import (
	"embed"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

//go:embed vlrdata
var vlrdata embed.FS

// FakeVLRServer serves canned vlr.gg pages for one fictional event
// (id 2097, slug champions-2025) with three matches: a completed bo3
// (10001), an upcoming match (10002), and a completed match whose stats
// only render map-by-map (10003).
type FakeVLRServer struct {
	s *httptest.Server
}

func NewFakeVLRServer() *FakeVLRServer {
	r := chi.NewRouter()
	r.Get("/event/matches/{eventID}", eventMatchesHandler)
	r.Get("/event/matches/{eventID}/{slug}", eventMatchesHandler)
	r.Get("/event/stats/{eventID}", eventStatsHandler)
	r.Get("/event/stats/{eventID}/{slug}", eventStatsHandler)
	r.Get("/{matchID}/{slug}", matchHandler)

	return &FakeVLRServer{
		s: httptest.NewServer(r),
	}
}

func (f *FakeVLRServer) Close() {
	f.s.Close()
}

func (f *FakeVLRServer) URL() string {
	return f.s.URL
}

// EventURL is the event page URL a user would paste in.
func (f *FakeVLRServer) EventURL() string {
	return f.s.URL + "/event/2097/champions-2025"
}

func eventMatchesHandler(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "eventID") != "2097" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	serveVLRFile(w, "event_matches.html")
}

func eventStatsHandler(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "eventID") != "2097" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	serveVLRFile(w, "event_stats.html")
}

func matchHandler(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "matchID") {
	case "10001":
		serveVLRFile(w, "match_completed.html")
	case "10002":
		serveVLRFile(w, "match_upcoming.html")
	case "10003":
		serveVLRFile(w, "match_fallback.html")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func serveVLRFile(w http.ResponseWriter, name string) {
	b, err := vlrdata.ReadFile(fmt.Sprintf("vlrdata/%s", name))
	if err != nil {
		log.Printf("error reading vlrdata/%s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
