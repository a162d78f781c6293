package triggerboard

import (
	"github.com/jpalmerr/triggerboard/internal/poller"
)

// Errors reported to [WithErrorCallback] callbacks when a fetch fails. The
// grid keeps its previous rows in every case. Use errors.Is to match them.
var (
	// ErrInvalidJSON means the response body was not JSON.
	ErrInvalidJSON = poller.ErrInvalidJSON

	// ErrMissingRecords means the records field was absent.
	ErrMissingRecords = poller.ErrMissingRecords

	// ErrRecordsNotArray means the records field was not an array.
	ErrRecordsNotArray = poller.ErrRecordsNotArray

	// ErrUnexpectedStatus means the endpoint answered with a non-2xx status.
	ErrUnexpectedStatus = poller.ErrUnexpectedStatus
)

// ExtractRecords decodes a trigger service response body into events.
//
// The field parameter locates the records array using dot notation; an empty
// field means "records". For example, "data.events" reads
// {"data": {"events": [...]}}.
//
// This is the decoding the board applies to every poll. It is exported for
// callers who fetch the endpoint themselves.
//
// Example:
//
//	events, err := triggerboard.ExtractRecords(body, "")
//	if errors.Is(err, triggerboard.ErrMissingRecords) {
//	    // body had no "records" field
//	}
func ExtractRecords(body []byte, field string) ([]TriggeredEvent, error) {
	records, err := poller.DecodeRecords(body, poller.SplitPath(field))
	if err != nil {
		return nil, err
	}
	return rowsToEvents(recordsToRows(records)), nil
}
