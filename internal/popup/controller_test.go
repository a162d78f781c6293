package popup

import (
	"strings"
	"testing"
)

// fakeElement is a minimal Element for controller tests that do not need a
// full Document.
type fakeElement struct {
	classes map[string]bool
	display Display
}

func newFakeElement(d Display) *fakeElement {
	return &fakeElement{classes: map[string]bool{}, display: d}
}

func (e *fakeElement) AddClass(name string)      { e.classes[name] = true }
func (e *fakeElement) RemoveClass(name string)   { delete(e.classes, name) }
func (e *fakeElement) HasClass(name string) bool { return e.classes[name] }
func (e *fakeElement) SetDisplay(d Display)      { e.display = d }
func (e *fakeElement) Display() Display          { return e.display }

type fakeSelector string

func (s fakeSelector) Value() string { return string(s) }

type fakeRadio string

func (r fakeRadio) Checked() string { return string(r) }

func newTestController(t *testing.T) (*Controller, *Document) {
	t.Helper()
	doc := NewDocument()
	c, err := NewController(doc.Elements())
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	return c, doc
}

func TestNewController_RequiresHandles(t *testing.T) {
	valid := func() Elements {
		return Elements{
			Popup:            newFakeElement(DisplayBlock),
			TriggerType:      fakeSelector("scheduled"),
			ScheduledOptions: newFakeElement(DisplayNone),
			APIOptions:       newFakeElement(DisplayNone),
			ScheduleType:     fakeRadio("onetime"),
			SchedulePanels: map[string]Element{
				"onetime":  newFakeElement(DisplayNone),
				"interval": newFakeElement(DisplayNone),
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Elements)
		wantErr string
	}{
		{"popup", func(e *Elements) { e.Popup = nil }, "popup"},
		{"selector", func(e *Elements) { e.TriggerType = nil }, "trigger type"},
		{"scheduled panel", func(e *Elements) { e.ScheduledOptions = nil }, "scheduled options"},
		{"api panel", func(e *Elements) { e.APIOptions = nil }, "api options"},
		{"radio group", func(e *Elements) { e.ScheduleType = nil }, "radio group"},
		{"no schedule panels", func(e *Elements) { e.SchedulePanels = nil }, "schedule panel"},
		{"nil schedule panel", func(e *Elements) { e.SchedulePanels["interval"] = nil }, "interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			els := valid()
			tt.mutate(&els)
			_, err := NewController(els)
			if err == nil {
				t.Fatal("NewController() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := NewController(valid()); err != nil {
		t.Errorf("NewController(valid) error = %v", err)
	}
}

func TestController_OpenClose(t *testing.T) {
	c, doc := newTestController(t)

	if c.IsOpen() {
		t.Fatal("popup open initially")
	}

	c.OpenPopup()
	if !c.IsOpen() || !doc.State().Open {
		t.Error("popup not open after OpenPopup()")
	}

	// opening twice keeps a single active marker
	c.OpenPopup()
	if got := doc.Classes(IDPopup); len(got) != 1 || got[0] != ActiveClass {
		t.Errorf("classes = %v, want [active]", got)
	}

	c.ClosePopup()
	if c.IsOpen() || doc.State().Open {
		t.Error("popup still open after ClosePopup()")
	}
}

// TestController_OpenCloseRoundTrip verifies open then close restores the
// state observed before open.
func TestController_OpenCloseRoundTrip(t *testing.T) {
	c, doc := newTestController(t)

	before := doc.Classes(IDPopup)
	c.OpenPopup()
	c.ClosePopup()
	after := doc.Classes(IDPopup)

	if strings.Join(before, ",") != strings.Join(after, ",") {
		t.Errorf("classes before = %v, after = %v", before, after)
	}
}

func TestController_ToggleTriggerType(t *testing.T) {
	tests := []struct {
		value         string
		wantScheduled Display
		wantAPI       Display
	}{
		{"scheduled", DisplayBlock, DisplayNone},
		{"api", DisplayNone, DisplayBlock},
		{"", DisplayNone, DisplayBlock},
		{"Scheduled", DisplayNone, DisplayBlock},
		{"webhook", DisplayNone, DisplayBlock},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, doc := newTestController(t)
			doc.Select(tt.value)
			c.ToggleTriggerType()

			state := doc.State()
			if got := state.Display[IDScheduledOptions]; got != tt.wantScheduled {
				t.Errorf("scheduledOptions = %s, want %s", got, tt.wantScheduled)
			}
			if got := state.Display[IDAPIOptions]; got != tt.wantAPI {
				t.Errorf("apiOptions = %s, want %s", got, tt.wantAPI)
			}
		})
	}
}

func TestController_ToggleTriggerType_Recomputes(t *testing.T) {
	c, doc := newTestController(t)

	doc.Select("api")
	c.ToggleTriggerType()
	doc.Select("scheduled")
	c.ToggleTriggerType()

	state := doc.State()
	if state.Display[IDScheduledOptions] != DisplayBlock || state.Display[IDAPIOptions] != DisplayNone {
		t.Errorf("display = %v after switching back to scheduled", state.Display)
	}
}

func TestController_ToggleScheduleOptions(t *testing.T) {
	for _, value := range []string{ScheduleOneTime, ScheduleInterval} {
		t.Run(value, func(t *testing.T) {
			c, doc := newTestController(t)
			if err := doc.Check(value); err != nil {
				t.Fatalf("Check(%q) error = %v", value, err)
			}
			c.ToggleScheduleOptions()

			state := doc.State()
			for _, other := range []string{ScheduleOneTime, ScheduleInterval} {
				want := DisplayNone
				if other == value {
					want = DisplayBlock
				}
				if got := state.Display[PanelID(other)]; got != want {
					t.Errorf("%s = %s, want %s", PanelID(other), got, want)
				}
			}
		})
	}
}

// TestController_ToggleScheduleOptions_NothingChecked covers the unchecked
// precondition violation: every panel ends up hidden.
func TestController_ToggleScheduleOptions_NothingChecked(t *testing.T) {
	onetime := newFakeElement(DisplayBlock)
	interval := newFakeElement(DisplayBlock)

	c, err := NewController(Elements{
		Popup:            newFakeElement(DisplayBlock),
		TriggerType:      fakeSelector("api"),
		ScheduledOptions: newFakeElement(DisplayNone),
		APIOptions:       newFakeElement(DisplayNone),
		ScheduleType:     fakeRadio(""),
		SchedulePanels:   map[string]Element{"onetime": onetime, "interval": interval},
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}

	c.ToggleScheduleOptions()

	if onetime.Display() != DisplayNone || interval.Display() != DisplayNone {
		t.Errorf("onetime = %s, interval = %s, want both none", onetime.Display(), interval.Display())
	}
}

func TestController_ScheduleValues(t *testing.T) {
	c, _ := newTestController(t)

	got := c.ScheduleValues()
	if strings.Join(got, ",") != "interval,onetime" {
		t.Errorf("ScheduleValues() = %v", got)
	}

	got[0] = "mutated"
	if c.ScheduleValues()[0] != "interval" {
		t.Error("ScheduleValues() returned internal slice")
	}
}
