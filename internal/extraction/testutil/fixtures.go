package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"rta-sync/internal/extraction/domain/model"
)

// LabsDataset returns a valid labs dataset pointing at sourceURL
func LabsDataset(sourceURL string) model.Dataset {
	return model.Dataset{
		Name:      "labs",
		SourceURL: sourceURL,
		Partition: "labs_json",
		Index:     model.IndexSpec{DateField: "lab_date", IDField: "empi"},
		Frequency: 15 * time.Minute,
	}
}

// Credentials returns throwaway basic-auth credentials
func Credentials() model.Credentials {
	return model.Credentials{Username: "reader", Password: "secret"}
}

// LabRecord builds one labs item
func LabRecord(empi, labDate string) model.Record {
	return model.Record{"empi": empi, "lab_date": labDate, "result": "7.1"}
}

// LabRecords builds n labs items dated the same day
func LabRecords(n int, prefix string) []model.Record {
	out := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, LabRecord(fmt.Sprintf("%s-%d", prefix, i), "2024-03-10T08:00:00Z"))
	}
	return out
}

// PageServer serves a chain of pages at /page/0, /page/1, ... with each page
// linking to the next with an absolute URL. It checks basic auth.
type PageServer struct {
	*httptest.Server

	mu        sync.Mutex
	pages     [][]model.Record
	hits      map[string]int
	requestID string
	// Username and Password are the accepted credentials
	Username string
	Password string
}

// NewPageServer starts a server for the given pages. Close it when done.
func NewPageServer(pages ...[]model.Record) *PageServer {
	ps := &PageServer{pages: pages, hits: make(map[string]int), Username: "reader", Password: "secret"}
	ps.Server = httptest.NewServer(http.HandlerFunc(ps.serve))
	return ps
}

// FirstURL is the entry point of the chain
func (ps *PageServer) FirstURL() string {
	return ps.URL + "/page/0"
}

// Hits returns how many times path was requested
func (ps *PageServer) Hits(path string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.hits[path]
}

// LastRequestID returns the X-Request-Id of the most recent request
func (ps *PageServer) LastRequestID() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.requestID
}

// TotalHits returns the number of page requests served
func (ps *PageServer) TotalHits() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	total := 0
	for _, n := range ps.hits {
		total += n
	}
	return total
}

func (ps *PageServer) serve(w http.ResponseWriter, r *http.Request) {
	ps.mu.Lock()
	ps.hits[r.URL.Path]++
	ps.requestID = r.Header.Get("X-Request-Id")
	ps.mu.Unlock()

	if u, p, ok := r.BasicAuth(); !ok || u != ps.Username || p != ps.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var idx int
	if _, err := fmt.Sscanf(r.URL.Path, "/page/%d", &idx); err != nil || idx < 0 || idx >= len(ps.pages) {
		http.NotFound(w, r)
		return
	}

	page := model.Page{Items: ps.pages[idx], Links: []model.Link{{Rel: "self", Href: ps.URL + r.URL.Path}}}
	if idx+1 < len(ps.pages) {
		page.Links = append(page.Links, model.Link{Rel: model.RelNext, Href: fmt.Sprintf("%s/page/%d", ps.URL, idx+1)})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}
