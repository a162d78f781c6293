// Package mockservice is an in-memory stand-in for the trigger service that
// TriggerBoard polls. It fires its triggers on their schedules, archives
// events after a minute and deletes them a minute later, and answers
// GET /triggered_events/fetch_events with the same envelope and filters as
// the real service. New triggers are accepted on POST /triggers/create_trigger.
package mockservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"
)

const (
	// FetchPath is the events endpoint.
	FetchPath = "/triggered_events/fetch_events"

	// LogPath fires a trigger by id.
	LogPath = "/triggered_events/log_event"

	// CreatePath accepts a new trigger.
	CreatePath = "/triggers/create_trigger"

	// TriggerTimeLayout is the format of trigger_time in a create request.
	TriggerTimeLayout = "2006-01-02-15:04"

	timeLayout = "2006-01-02 15:04"

	maxCreateBody = 64 << 10

	archiveAfter = 60 * time.Second
	deleteAfter  = 120 * time.Second
)

// Event statuses.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Trigger types.
const (
	TypeScheduled = "scheduled"
	TypeAPI       = "api"
)

var (
	// ErrUnknownTrigger is returned by [Service.Fire] for an id with no trigger.
	ErrUnknownTrigger = errors.New("trigger ID not found")

	// ErrInvalidTrigger is returned by [Service.Create] for a request the
	// service refuses.
	ErrInvalidTrigger = errors.New("invalid trigger")
)

// Trigger is a configured trigger. It first fires at StartAt, or one
// Interval after the scheduler first sees it when StartAt is zero, then every
// Interval. A trigger with neither only fires through the log endpoint.
type Trigger struct {
	ID       int64
	Name     string
	Type     string
	Interval time.Duration
	StartAt  time.Time
	Message  string
	Payload  map[string]string
}

// CreateRequest is the body of POST /triggers/create_trigger. A non-empty
// APIPayload makes an api trigger that fires at once; otherwise the trigger
// is scheduled from TriggerTime (default now) plus Interval minutes.
type CreateRequest struct {
	TriggerName    string            `json:"trigger_name"`
	TriggerTime    string            `json:"trigger_time,omitempty"`
	Interval       int               `json:"interval,omitempty"`
	TriggerMessage string            `json:"trigger_message,omitempty"`
	APIPayload     map[string]string `json:"api_payload,omitempty"`
}

// triggerRecord is a trigger as served on the wire.
type triggerRecord struct {
	ID             int64             `json:"id"`
	TriggerName    string            `json:"trigger_name"`
	TriggerType    string            `json:"trigger_type"`
	TriggerTime    string            `json:"trigger_time,omitempty"`
	Interval       int               `json:"interval,omitempty"`
	TriggerMessage string            `json:"trigger_message"`
	APIPayload     map[string]string `json:"api_payload,omitempty"`
}

func (t Trigger) record() triggerRecord {
	r := triggerRecord{
		ID:             t.ID,
		TriggerName:    t.Name,
		TriggerType:    t.Type,
		Interval:       int(t.Interval / time.Minute),
		TriggerMessage: t.Message,
		APIPayload:     t.Payload,
	}
	if !t.StartAt.IsZero() {
		r.TriggerTime = t.StartAt.Format(timeLayout)
	}
	return r
}

// Event is one triggered event as served on the wire.
type Event struct {
	ID           int64  `json:"id"`
	TriggerID    int64  `json:"trigger_id"`
	TriggerName  string `json:"trigger_name"`
	TriggerType  string `json:"trigger_type"`
	Status       string `json:"status"`
	TriggeredAt  string `json:"triggered_at"`
	TriggerCount int64  `json:"trigger_count"`

	firedAt time.Time
}

type envelope[T any] struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Count      int    `json:"count"`
	Records    []T    `json:"records"`
	StatusBool bool   `json:"status_bool"`
}

// Filter narrows a fetch. Zero values match everything.
type Filter struct {
	TriggerID   int64
	TriggerName string
	TriggerType string
	Status      string
	NumRecords  int
}

func (f Filter) match(e Event) bool {
	switch {
	case f.TriggerID != 0 && e.TriggerID != f.TriggerID:
		return false
	case f.TriggerName != "" && e.TriggerName != f.TriggerName:
		return false
	case f.TriggerType != "" && e.TriggerType != f.TriggerType:
		return false
	case f.Status != "" && e.Status != f.Status:
		return false
	}
	return true
}

// Service holds the triggers and their events.
type Service struct {
	mu            sync.Mutex
	triggers      map[int64]Trigger
	counts        map[int64]int64
	due           map[int64]time.Time
	events        []Event
	nextID        int64
	nextTriggerID int64

	token  string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(s *Service) { s.token = token }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New returns a service with the given triggers and no events.
func New(triggers []Trigger, opts ...Option) *Service {
	s := &Service{
		triggers:      make(map[int64]Trigger, len(triggers)),
		counts:        make(map[int64]int64, len(triggers)),
		due:           make(map[int64]time.Time, len(triggers)),
		nextID:        1,
		nextTriggerID: 1,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, t := range triggers {
		s.triggers[t.ID] = t
		if t.ID >= s.nextTriggerID {
			s.nextTriggerID = t.ID + 1
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultTriggers is a small mixed set of scheduled and api triggers.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{ID: 1, Name: "nightly-backup", Type: TypeScheduled, Interval: 15 * time.Second},
		{ID: 2, Name: "cache-warmup", Type: TypeScheduled, Interval: 25 * time.Second},
		{ID: 3, Name: "deploy-hook", Type: TypeAPI, Interval: 40 * time.Second},
		{ID: 4, Name: "report-export", Type: TypeAPI},
	}
}

// Fire records a new active event for a trigger.
func (s *Service) Fire(triggerID int64) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.triggers[triggerID]
	if !ok {
		return Event{}, fmt.Errorf("%w: %d", ErrUnknownTrigger, triggerID)
	}
	return s.fireLocked(t, s.now()), nil
}

func (s *Service) fireLocked(t Trigger, now time.Time) Event {
	s.counts[t.ID]++
	e := Event{
		ID:           s.nextID,
		TriggerID:    t.ID,
		TriggerName:  t.Name,
		TriggerType:  t.Type,
		Status:       StatusActive,
		TriggeredAt:  now.Format(timeLayout),
		TriggerCount: s.counts[t.ID],
		firedAt:      now,
	}
	s.nextID++
	s.events = append(s.events, e)

	s.logger.Info("trigger fired", "trigger_id", t.ID, "trigger_name", t.Name, "event_id", e.ID)
	return e
}

// Create validates and stores a new trigger. An api trigger fires once
// immediately, the way the real service publishes it on creation.
func (s *Service) Create(req CreateRequest) (Trigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.TriggerName == "" {
		return Trigger{}, fmt.Errorf("%w: trigger_name is required", ErrInvalidTrigger)
	}
	if req.Interval < 0 {
		return Trigger{}, fmt.Errorf("%w: interval must not be negative", ErrInvalidTrigger)
	}

	now := s.now()
	t := Trigger{
		ID:      s.nextTriggerID,
		Name:    req.TriggerName,
		Type:    TypeScheduled,
		Message: req.TriggerMessage,
	}

	if len(req.APIPayload) > 0 {
		t.Type = TypeAPI
		t.Payload = req.APIPayload
	} else {
		startAt, err := firstRun(req, now)
		if err != nil {
			return Trigger{}, err
		}
		t.StartAt = startAt
		t.Interval = time.Duration(req.Interval) * time.Minute
	}

	s.nextTriggerID++
	s.triggers[t.ID] = t
	s.logger.Info("trigger created", "trigger_id", t.ID, "trigger_name", t.Name, "trigger_type", t.Type)

	if t.Type == TypeAPI {
		s.fireLocked(t, now)
	}
	return t, nil
}

// firstRun resolves when a scheduled trigger first fires. Times are whole
// minutes in the service clock's location.
func firstRun(req CreateRequest, now time.Time) (time.Time, error) {
	if req.TriggerTime == "" && req.Interval == 0 {
		return time.Time{}, fmt.Errorf("%w: trigger_time or interval is required", ErrInvalidTrigger)
	}

	current := now.Truncate(time.Minute)
	at := current
	if req.TriggerTime != "" {
		parsed, err := time.ParseInLocation(TriggerTimeLayout, req.TriggerTime, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: trigger_time must use YYYY-MM-DD-HH:mm", ErrInvalidTrigger)
		}
		at = parsed
	}
	at = at.Add(time.Duration(req.Interval) * time.Minute)

	if at.Before(current) {
		return time.Time{}, fmt.Errorf("%w: trigger time must be in the future", ErrInvalidTrigger)
	}
	return at, nil
}

// Triggers returns every trigger ordered by id.
func (s *Service) Triggers() []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Trigger, 0, len(s.triggers))
	for _, t := range s.triggers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tick fires every trigger that is due and returns the new events.
func (s *Service) Tick() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.triggers))
	for id := range s.triggers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	now := s.now()
	var fired []Event
	for _, id := range ids {
		t := s.triggers[id]
		next, ok := s.due[id]
		if !ok {
			switch {
			case !t.StartAt.IsZero():
				next = t.StartAt
			case t.Interval > 0:
				next = now.Add(t.Interval)
			default:
				continue
			}
			s.due[id] = next
		}
		if now.Before(next) {
			continue
		}

		fired = append(fired, s.fireLocked(t, now))
		if t.Interval <= 0 {
			// one-time trigger; fires again only through the log endpoint
			t.StartAt = time.Time{}
			s.triggers[id] = t
			delete(s.due, id)
			continue
		}
		for !next.After(now) {
			next = next.Add(t.Interval)
		}
		s.due[id] = next
	}
	return fired
}

// Sweep archives active events older than a minute and deletes archived
// events older than two minutes.
func (s *Service) Sweep() (archived, deleted int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	kept := s.events[:0]
	for _, e := range s.events {
		age := now.Sub(e.firedAt)
		if e.Status == StatusArchived && age >= deleteAfter {
			deleted++
			continue
		}
		if e.Status == StatusActive && age >= archiveAfter {
			e.Status = StatusArchived
			archived++
		}
		kept = append(kept, e)
	}
	s.events = kept
	return archived, deleted
}

// Events returns the matching events, newest first.
func (s *Service) Events(f Filter) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		if f.match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.NumRecords > 0 && len(out) > f.NumRecords {
		out = out[:f.NumRecords]
	}
	return out
}

// Run fires due triggers and sweeps old events once a second until ctx is
// cancelled. Triggers created while running are picked up on the next tick.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
			if a, d := s.Sweep(); a > 0 || d > 0 {
				s.logger.Info("events swept", "archived", a, "deleted", d)
			}
		}
	}
}

// Handler serves the fetch, log and create endpoints.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(FetchPath, s.authorize(s.handleFetch))
	mux.HandleFunc(LogPath, s.authorize(s.handleLog))
	mux.HandleFunc(CreatePath, s.authorize(s.handleCreate))
	return mux
}

func (s *Service) authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			s.writeEnvelope(w, http.StatusUnauthorized, "Invalid token", nil)
			return
		}
		next(w, r)
	}
}

func (s *Service) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		s.writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	events := s.Events(f)
	if len(events) == 0 {
		s.writeEnvelope(w, http.StatusNotFound, "No Records Found", nil)
		return
	}
	s.writeEnvelope(w, http.StatusOK, "Fetched triggered event logs successfully", events)
}

func (s *Service) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("trigger_id"), 10, 64)
	if err != nil {
		s.writeEnvelope(w, http.StatusBadRequest, "trigger_id must be an integer", nil)
		return
	}

	e, err := s.Fire(id)
	if err != nil {
		s.writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	s.writeEnvelope(w, http.StatusOK, "Trigger event logged successfully", []Event{e})
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCreateBody)).Decode(&req); err != nil {
		writeEnvelope[triggerRecord](s, w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	t, err := s.Create(req)
	if err != nil {
		writeEnvelope[triggerRecord](s, w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	writeEnvelope(s, w, http.StatusOK, fmt.Sprintf("Trigger '%s' created successfully", t.Name), []triggerRecord{t.record()})
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		TriggerName: q.Get("trigger_name"),
		TriggerType: q.Get("trigger_type"),
		Status:      q.Get("status"),
	}

	if v := q.Get("trigger_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Filter{}, errors.New("trigger_id must be an integer")
		}
		f.TriggerID = id
	}
	if v := q.Get("num_records"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Filter{}, errors.New("num_records must be a non-negative integer")
		}
		f.NumRecords = n
	}
	if f.Status != "" && f.Status != StatusActive && f.Status != StatusArchived {
		return Filter{}, fmt.Errorf("status must be %s or %s", StatusActive, StatusArchived)
	}
	return f, nil
}

func (s *Service) writeEnvelope(w http.ResponseWriter, code int, message string, records []Event) {
	writeEnvelope(s, w, code, message, records)
}

func writeEnvelope[T any](s *Service, w http.ResponseWriter, code int, message string, records []T) {
	if records == nil {
		records = []T{}
	}
	env := envelope[T]{
		Status:     "success",
		StatusCode: code,
		Message:    message,
		Timestamp:  s.now().Format(time.RFC3339),
		Count:      len(records),
		Records:    records,
		StatusBool: code == http.StatusOK,
	}
	if code != http.StatusOK {
		env.Status = "failure"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
