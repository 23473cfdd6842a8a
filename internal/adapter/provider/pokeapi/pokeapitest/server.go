// Package pokeapitest serves a small, fixed PokeAPI universe for tests.
package pokeapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Server is an httptest server that counts requests per path and can be told
// to fail individual paths.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	failures map[string]int
}

// Entity is one row of the fixture index.
type Entity struct {
	Name string
	ID   int
}

// Index is the fixture root index, in index order. Ids are not contiguous.
var Index = []Entity{
	{Name: "bulbasaur", ID: 1},
	{Name: "ivysaur", ID: 2},
	{Name: "charmander", ID: 4},
}

// NewServer starts the fixture server and closes it on test cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		hits:     make(map[string]int),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Fail makes every request to path answer with status.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Heal removes a failure registered with Fail.
func (s *Server) Heal(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// Hits returns the number of requests received for path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of requests received for all paths.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

// MaxHits returns the highest per-path request count.
func (s *Server) MaxHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n = max(n, h)
	}
	return n
}

// ResetHits zeroes the request counters.
func (s *Server) ResetHits() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = make(map[string]int)
}

// Abs returns the absolute url for an API path.
func (s *Server) Abs(path string) string {
	return s.URL + path
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, failing := s.failures[r.URL.Path]
	s.mu.Unlock()

	if failing {
		w.WriteHeader(status)
		return
	}

	if r.URL.Path == "/pokemon" {
		s.serveIndex(w, r)
		return
	}

	body, ok := s.routes()[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	type ref struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	results := []ref{}
	for i := offset; i < len(Index) && i < offset+limit; i++ {
		results = append(results, ref{Name: Index[i].Name, URL: s.Abs(fmt.Sprintf("/pokemon/%d/", Index[i].ID))})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":   len(Index),
		"results": results,
	})
}

func (s *Server) routes() map[string]string {
	base := s.URL
	r := strings.NewReplacer("BASE", base)
	out := make(map[string]string, len(fixtures))
	for path, body := range fixtures {
		out[path] = r.Replace(body)
	}
	return out
}
