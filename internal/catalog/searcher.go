package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

// DefaultDebounce is how long the query must stay unchanged before a fetch starts.
const DefaultDebounce = 400 * time.Millisecond

// State is the search view: the current query and the results applied for it.
type State struct {
	Query     string           `json:"query"`
	Loading   bool             `json:"loading"`
	Results   []swapi.Starship `json:"results"`
	Error     string           `json:"error,omitempty"`
	Err       error            `json:"-"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Searcher debounces query changes and applies only the newest fetch's results.
// A new query cancels the pending timer and any in-flight fetch; a fetch whose
// generation has been superseded is discarded even if it completes.
type Searcher struct {
	fetcher  Fetcher
	logg     *logger.Logger
	debounce time.Duration

	mu         sync.Mutex
	state      State
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	closed     bool
	inflight   sync.WaitGroup
}

// NewSearcher builds a searcher; debounce <= 0 selects DefaultDebounce.
func NewSearcher(fetcher Fetcher, logg *logger.Logger, debounce time.Duration) *Searcher {
	if logg == nil {
		logg = logger.Nop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Searcher{
		fetcher:  fetcher,
		logg:     logg,
		debounce: debounce,
		state:    State{Results: []swapi.Starship{}},
	}
}

// SetQuery records a new query. Blank queries clear the results immediately;
// anything else is fetched once the debounce interval passes without another call.
func (s *Searcher) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	gen := s.supersedeLocked(query)
	term := strings.TrimSpace(query)
	if term == "" {
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.run(gen, term) })
}

// Refresh re-issues the current query without waiting for the debounce.
func (s *Searcher) Refresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	query := s.state.Query
	gen := s.supersedeLocked(query)
	s.mu.Unlock()

	if term := strings.TrimSpace(query); term != "" {
		go s.run(gen, term)
	}
}

// State returns a copy of the current search state.
func (s *Searcher) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Results = append([]swapi.Starship(nil), s.state.Results...)
	return out
}

// Close stops the timer, cancels any in-flight fetch and waits for it to return.
func (s *Searcher) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.stopLocked()
	s.mu.Unlock()

	s.inflight.Wait()
}

// supersedeLocked bumps the generation, stops pending work and resets the state
// for query, dropping the previous results. It returns the new generation.
func (s *Searcher) supersedeLocked(query string) uint64 {
	s.generation++
	s.stopLocked()

	pending := strings.TrimSpace(query) != ""
	s.state.Query = query
	s.state.Loading = pending
	s.state.Error = ""
	s.state.Err = nil
	s.state.Results = []swapi.Starship{}
	if !pending {
		s.state.UpdatedAt = time.Now().UTC()
	}
	return s.generation
}

func (s *Searcher) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) run(gen uint64, term string) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()
	defer cancel()

	ctx = s.logg.WithSearchTerm(ctx, term)
	results, err := s.fetcher.FetchStarships(ctx, term)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logg.Debug(ctx, "discarding superseded search result")
		return
	}
	s.cancel = nil

	if err != nil {
		if swapi.IsCancelled(err) {
			s.logg.Info(ctx, "search cancelled")
			return
		}
		s.logg.Error(ctx, "search failed", err)
		s.state.Loading = false
		s.state.Results = []swapi.Starship{}
		s.state.Err = MapError(err)
		s.state.Error = MapError(err).Message()
		s.state.UpdatedAt = time.Now().UTC()
		return
	}

	if results == nil {
		results = []swapi.Starship{}
	}
	s.state.Loading = false
	s.state.Results = results
	s.state.UpdatedAt = time.Now().UTC()
}
