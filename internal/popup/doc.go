// Package popup implements the trigger-configuration popup shown by the
// TriggerBoard front-ends.
//
// The controller never looks elements up by id. It is handed an [Elements]
// set of capability handles at construction and only toggles visibility
// through them, so the same logic drives the web dashboard (via [Document])
// and the terminal UI.
//
// Visibility is a pure function of the last-read form control value: every
// toggle hides all panels of its group and then shows exactly one.
package popup
