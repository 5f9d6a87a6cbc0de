package event

import (
	"strings"

	"github.com/opencrvs/crvs-search/internal/domain/event/field"
)

// Built-in metadata field ids.
const (
	FieldStatus               field.ID = "event.status"
	FieldUpdatedAt            field.ID = "event.updatedAt"
	FieldTrackingID           field.ID = "event.trackingId"
	FieldRegisteredAt         field.ID = "event.legalStatus.REGISTERED.createdAt"
	FieldRegisteredAtLocation field.ID = "event.legalStatus.REGISTERED.createdAtLocation"
	FieldRegistrationNumber   field.ID = "event.legalStatus.REGISTERED.registrationNumber"
)

const (
	legalStatusSegment   = "legalStatus."
	legalStatusesSegment = "legalStatuses."
)

// Index keys always addressed by quick search.
const (
	KeyTrackingID         = "trackingId"
	KeyRegistrationNumber = "legalStatuses.REGISTERED.registrationNumber"
	KeyEventType          = "eventType"
	KeyData               = "data"
)

// MetadataKey maps a metadata field id to the key the search index stores it
// under. It returns false for declaration field ids. Both "legalStatus." and
// "legalStatuses." spellings map to the plural index path.
func MetadataKey(id field.ID) (string, bool) {
	rest, ok := strings.CutPrefix(string(id), field.MetadataPrefix)
	if !ok || rest == "" {
		return "", false
	}
	if after, found := strings.CutPrefix(rest, legalStatusSegment); found {
		rest = legalStatusesSegment + after
	}
	return rest, true
}
