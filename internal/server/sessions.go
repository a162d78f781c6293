package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/triggerboard/internal/popup"
)

const (
	// popupCookie ties a browser to its own popup form.
	popupCookie = "triggerboard_popup"

	// maxPopupSessions caps the number of forms held at once. The least
	// recently used form is evicted when a new browser arrives at the cap.
	maxPopupSessions = 1024

	// popupSessionTTL is how long an untouched form is kept.
	popupSessionTTL = 30 * time.Minute
)

type popupSession struct {
	form     *popup.Form
	lastSeen time.Time
}

// popupSessions holds one popup form per browser, keyed by a random id.
type popupSessions struct {
	newForm func() *popup.Form
	now     func() time.Time
	max     int
	ttl     time.Duration

	mu   sync.Mutex
	byID map[string]*popupSession
}

func newPopupSessions(newForm func() *popup.Form) *popupSessions {
	return &popupSessions{
		newForm: newForm,
		now:     time.Now,
		max:     maxPopupSessions,
		ttl:     popupSessionTTL,
		byID:    make(map[string]*popupSession),
	}
}

// form returns the form for id. An unknown or expired id gets a fresh form
// under a newly generated id, which is returned alongside it.
func (p *popupSessions) form(id string) (string, *popup.Form) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if sess, ok := p.byID[id]; ok && now.Sub(sess.lastSeen) < p.ttl {
		sess.lastSeen = now
		return id, sess.form
	}

	p.pruneLocked(now)
	if len(p.byID) >= p.max {
		p.evictOldestLocked()
	}

	id = uuid.NewString()
	sess := &popupSession{form: p.newForm(), lastSeen: now}
	p.byID[id] = sess
	return id, sess.form
}

// Len returns the number of live forms.
func (p *popupSessions) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byID)
}

func (p *popupSessions) pruneLocked(now time.Time) {
	for id, sess := range p.byID {
		if now.Sub(sess.lastSeen) >= p.ttl {
			delete(p.byID, id)
		}
	}
}

func (p *popupSessions) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range p.byID {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	delete(p.byID, oldestID)
}

// popupForm resolves the caller's form from its cookie, issuing a new cookie
// when the browser has no live session. It must run before the response
// header is written.
func (s *Server) popupForm(w http.ResponseWriter, r *http.Request) *popup.Form {
	var id string
	if c, err := r.Cookie(popupCookie); err == nil {
		id = c.Value
	}

	sid, form := s.popups.form(id)
	if sid != id {
		http.SetCookie(w, &http.Cookie{
			Name:     popupCookie,
			Value:    sid,
			Path:     "/api/popup",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
	return form
}
