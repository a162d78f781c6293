package popup

import (
	"errors"
	"fmt"
)

// Action names one user interaction with the popup.
type Action string

const (
	ActionOpen         Action = "open"
	ActionClose        Action = "close"
	ActionTriggerType  Action = "trigger_type"
	ActionScheduleType Action = "schedule_type"
)

// ErrUnknownAction is returned by [Form.Apply] for an action it does not know.
var ErrUnknownAction = errors.New("unknown popup action")

// Form binds a [Document] to the [Controller] that drives it. Front-ends
// apply user interactions through a Form so each one is atomic with respect
// to [Form.State].
type Form struct {
	doc  *Document
	ctrl *Controller
}

// NewForm returns a form over a fresh document.
func NewForm() *Form {
	doc := NewDocument()
	// the document always provides every handle
	ctrl, err := NewController(doc.Elements())
	if err != nil {
		panic(err)
	}
	return &Form{doc: doc, ctrl: ctrl}
}

// Apply performs one interaction. For [ActionTriggerType] the value is the
// new selector value; for [ActionScheduleType] it is the radio to check.
// Open and close ignore the value.
//
// A rejected interaction leaves the document unchanged.
func (f *Form) Apply(action Action, value string) error {
	var err error
	f.doc.Update(func() {
		switch action {
		case ActionOpen:
			f.ctrl.OpenPopup()
		case ActionClose:
			f.ctrl.ClosePopup()
		case ActionTriggerType:
			if value == "" {
				err = errors.New("trigger type cannot be empty")
				return
			}
			f.doc.Select(value)
			f.ctrl.ToggleTriggerType()
		case ActionScheduleType:
			if err = f.doc.Check(value); err != nil {
				return
			}
			f.ctrl.ToggleScheduleOptions()
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownAction, action)
		}
	})
	return err
}

// State returns a snapshot of the underlying document.
func (f *Form) State() State {
	return f.doc.State()
}

// ScheduleOptions returns the schedule radio values in display order.
func (f *Form) ScheduleOptions() []string {
	return f.doc.ScheduleOptions()
}
