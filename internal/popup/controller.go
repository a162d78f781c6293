package popup

import (
	"errors"
	"fmt"
	"sort"
)

// Elements is the set of handles a [Controller] operates on.
type Elements struct {
	Popup            Element
	TriggerType      Selector
	ScheduledOptions Element
	APIOptions       Element
	ScheduleType     RadioGroup

	// SchedulePanels maps each schedule radio value to its panel.
	SchedulePanels map[string]Element
}

// Controller toggles popup and panel visibility.
//
// Controller holds no state of its own; every call recomputes visibility from
// the current value of the relevant form control.
type Controller struct {
	el          Elements
	panelValues []string
}

// NewController returns a controller over els. Every handle must be non-nil
// and at least one schedule panel must be present.
func NewController(els Elements) (*Controller, error) {
	switch {
	case els.Popup == nil:
		return nil, errors.New("popup element is required")
	case els.TriggerType == nil:
		return nil, errors.New("trigger type selector is required")
	case els.ScheduledOptions == nil:
		return nil, errors.New("scheduled options element is required")
	case els.APIOptions == nil:
		return nil, errors.New("api options element is required")
	case els.ScheduleType == nil:
		return nil, errors.New("schedule type radio group is required")
	case len(els.SchedulePanels) == 0:
		return nil, errors.New("at least one schedule panel is required")
	}

	values := make([]string, 0, len(els.SchedulePanels))
	for v, panel := range els.SchedulePanels {
		if panel == nil {
			return nil, fmt.Errorf("schedule panel %q is nil", v)
		}
		values = append(values, v)
	}
	sort.Strings(values)

	panels := make(map[string]Element, len(els.SchedulePanels))
	for v, panel := range els.SchedulePanels {
		panels[v] = panel
	}
	els.SchedulePanels = panels

	return &Controller{el: els, panelValues: values}, nil
}

// OpenPopup marks the popup container active.
func (c *Controller) OpenPopup() {
	c.el.Popup.AddClass(ActiveClass)
}

// ClosePopup removes the active marker from the popup container.
func (c *Controller) ClosePopup() {
	c.el.Popup.RemoveClass(ActiveClass)
}

// IsOpen reports whether the popup container is active.
func (c *Controller) IsOpen() bool {
	return c.el.Popup.HasClass(ActiveClass)
}

// ToggleTriggerType shows the scheduled panel when the selector reads
// "scheduled" and the api panel for any other value.
func (c *Controller) ToggleTriggerType() {
	c.el.ScheduledOptions.SetDisplay(DisplayNone)
	c.el.APIOptions.SetDisplay(DisplayNone)

	if c.el.TriggerType.Value() == TriggerTypeScheduled {
		c.el.ScheduledOptions.SetDisplay(DisplayBlock)
	} else {
		c.el.APIOptions.SetDisplay(DisplayBlock)
	}
}

// ToggleScheduleOptions hides every schedule panel, then shows the one keyed
// by the checked radio value. With no radio checked, or a value that has no
// panel, every panel stays hidden.
func (c *Controller) ToggleScheduleOptions() {
	for _, v := range c.panelValues {
		c.el.SchedulePanels[v].SetDisplay(DisplayNone)
	}

	if panel, ok := c.el.SchedulePanels[c.el.ScheduleType.Checked()]; ok {
		panel.SetDisplay(DisplayBlock)
	}
}

// ScheduleValues returns the radio values that have a panel, sorted.
func (c *Controller) ScheduleValues() []string {
	cp := make([]string, len(c.panelValues))
	copy(cp, c.panelValues)
	return cp
}
