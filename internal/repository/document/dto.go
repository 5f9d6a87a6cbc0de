package document

import (
	"encoding/json"
	"fmt"

	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
)

// documentJSON is the stored shape of an event document.
type documentJSON struct {
	ID        string         `json:"id"`
	EventType string         `json:"eventType"`
	Actions   []event.Action `json:"actions"`
}

func toJSON(doc event.Document) ([]byte, error) {
	data, err := json.Marshal(documentJSON{
		ID:        doc.ID(),
		EventType: doc.EventType(),
		Actions:   doc.Actions(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// parseJSONGetResult decodes a JSON.GET $ reply, which wraps the root in an array.
func parseJSONGetResult(raw []byte) (event.Document, error) {
	var docs []documentJSON
	if err := json.Unmarshal(raw, &docs); err != nil {
		return event.Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	if len(docs) == 0 {
		return event.Document{}, domain.ErrDocumentNotFound
	}
	d := docs[0]
	return event.Reconstruct(d.ID, d.EventType, d.Actions), nil
}
