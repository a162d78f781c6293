package popup

// Display is the visibility of a panel.
type Display string

const (
	// DisplayNone hides a panel.
	DisplayNone Display = "none"

	// DisplayBlock shows a panel.
	DisplayBlock Display = "block"
)

// ActiveClass marks the popup container as shown.
const ActiveClass = "active"

// Trigger types offered by the trigger-type selector.
const (
	TriggerTypeScheduled = "scheduled"
	TriggerTypeAPI       = "api"
)

// Schedule types offered by the schedule radio group.
const (
	ScheduleOneTime  = "onetime"
	ScheduleInterval = "interval"
)

// Element ids used by the dashboard markup.
const (
	IDPopup            = "popup"
	IDTriggerType      = "triggerType"
	IDScheduledOptions = "scheduledOptions"
	IDAPIOptions       = "apiOptions"
	IDOnetimeOptions   = "onetimeOptions"
	IDIntervalOptions  = "intervalOptions"
	NameScheduleType   = "scheduleType"
)

// Element is a handle on a visual element whose classes and display can change.
type Element interface {
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool
	SetDisplay(d Display)
	Display() Display
}

// Selector is a handle on a single-choice form control.
type Selector interface {
	Value() string
}

// RadioGroup is a handle on a group of radio buttons.
type RadioGroup interface {
	// Checked returns the value of the checked radio, or "" if none is.
	Checked() string
}

// PanelID returns the element id of the schedule panel for a radio value.
func PanelID(value string) string {
	return value + "Options"
}
