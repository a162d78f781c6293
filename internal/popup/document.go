package popup

import (
	"fmt"
	"sort"
	"sync"
)

// State is a serializable view of a [Document].
type State struct {
	// Open reports whether the popup container carries the active class.
	Open bool `json:"open"`

	// TriggerType is the current trigger-type selector value.
	TriggerType string `json:"trigger_type"`

	// ScheduleType is the checked schedule radio value, "" if none.
	ScheduleType string `json:"schedule_type"`

	// Display maps each panel id to its visibility.
	Display map[string]Display `json:"display"`
}

// Document is an in-memory element tree with the dashboard's standard ids.
//
// It implements the handles a [Controller] needs and is safe for concurrent
// use. Use [Document.Update] to make a sequence of changes atomic with
// respect to [Document.State].
type Document struct {
	opMu sync.Mutex

	mu           sync.RWMutex
	classes      map[string]map[string]struct{}
	display      map[string]Display
	triggerType  string
	scheduleOpts []string
	checked      string
}

// NewDocument returns a document in its initial layout: popup closed,
// "scheduled" selected with its panel shown, "onetime" checked with its
// panel shown.
func NewDocument() *Document {
	return &Document{
		classes: map[string]map[string]struct{}{
			IDPopup:            {},
			IDScheduledOptions: {},
			IDAPIOptions:       {},
			IDOnetimeOptions:   {},
			IDIntervalOptions:  {},
		},
		display: map[string]Display{
			IDPopup:            DisplayBlock,
			IDScheduledOptions: DisplayBlock,
			IDAPIOptions:       DisplayNone,
			IDOnetimeOptions:   DisplayBlock,
			IDIntervalOptions:  DisplayNone,
		},
		triggerType:  TriggerTypeScheduled,
		scheduleOpts: []string{ScheduleOneTime, ScheduleInterval},
		checked:      ScheduleOneTime,
	}
}

// Elements returns the handle set for a [Controller].
func (d *Document) Elements() Elements {
	panels := make(map[string]Element, len(d.scheduleOpts))
	for _, v := range d.scheduleOpts {
		panels[v] = d.element(PanelID(v))
	}

	return Elements{
		Popup:            d.element(IDPopup),
		TriggerType:      selectorHandle{doc: d},
		ScheduledOptions: d.element(IDScheduledOptions),
		APIOptions:       d.element(IDAPIOptions),
		ScheduleType:     radioHandle{doc: d},
		SchedulePanels:   panels,
	}
}

// Element returns the handle for id, if the document has such an element.
func (d *Document) Element(id string) (Element, bool) {
	d.mu.RLock()
	_, ok := d.display[id]
	d.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return d.element(id), true
}

func (d *Document) element(id string) Element {
	return elementHandle{doc: d, id: id}
}

// Update runs fn while holding the document's operation lock.
func (d *Document) Update(fn func()) {
	d.opMu.Lock()
	defer d.opMu.Unlock()
	fn()
}

// Select sets the trigger-type selector value. Any value is accepted; the
// controller treats everything other than "scheduled" as api.
func (d *Document) Select(value string) {
	d.mu.Lock()
	d.triggerType = value
	d.mu.Unlock()
}

// Check checks the schedule radio with the given value.
func (d *Document) Check(value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, v := range d.scheduleOpts {
		if v == value {
			d.checked = value
			return nil
		}
	}
	return fmt.Errorf("unknown schedule type %q", value)
}

// ScheduleOptions returns the values of the schedule radio group.
func (d *Document) ScheduleOptions() []string {
	cp := make([]string, len(d.scheduleOpts))
	copy(cp, d.scheduleOpts)
	return cp
}

// State returns a consistent snapshot of the document. It must not be
// called from inside [Document.Update].
func (d *Document) State() State {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	d.mu.RLock()
	defer d.mu.RUnlock()

	display := make(map[string]Display, len(d.display))
	for id, v := range d.display {
		if id == IDPopup {
			continue
		}
		display[id] = v
	}

	_, open := d.classes[IDPopup][ActiveClass]
	return State{
		Open:         open,
		TriggerType:  d.triggerType,
		ScheduleType: d.checked,
		Display:      display,
	}
}

// Classes returns the sorted class list of an element.
func (d *Document) Classes(id string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]string, 0, len(d.classes[id]))
	for c := range d.classes[id] {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type elementHandle struct {
	doc *Document
	id  string
}

func (h elementHandle) AddClass(name string) {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	set, ok := h.doc.classes[h.id]
	if !ok {
		set = make(map[string]struct{})
		h.doc.classes[h.id] = set
	}
	set[name] = struct{}{}
}

func (h elementHandle) RemoveClass(name string) {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	delete(h.doc.classes[h.id], name)
}

func (h elementHandle) HasClass(name string) bool {
	h.doc.mu.RLock()
	defer h.doc.mu.RUnlock()
	_, ok := h.doc.classes[h.id][name]
	return ok
}

func (h elementHandle) SetDisplay(v Display) {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	h.doc.display[h.id] = v
}

func (h elementHandle) Display() Display {
	h.doc.mu.RLock()
	defer h.doc.mu.RUnlock()
	return h.doc.display[h.id]
}

type selectorHandle struct{ doc *Document }

func (h selectorHandle) Value() string {
	h.doc.mu.RLock()
	defer h.doc.mu.RUnlock()
	return h.doc.triggerType
}

type radioHandle struct{ doc *Document }

func (h radioHandle) Checked() string {
	h.doc.mu.RLock()
	defer h.doc.mu.RUnlock()
	return h.doc.checked
}
