package engine

import (
	"encoding/json"
	"log"
	"time"

	"github.com/posfoundry/tablepos/internal/models"
)

// Sinks are observational: a failed emit is logged and never fails the
// operation that produced it.

func (e *Engine) emitOrder(event string, o *models.Order) {
	e.emit(event, map[string]any{
		"branch_id": e.branchID,
		"order_id":  o.ID,
		"table_id":  o.TableID,
		"status":    o.Status,
		"modified":  o.Modified,
		"paid":      o.Paid,
		"items":     len(o.Items),
	})
}

func (e *Engine) emit(event string, payload map[string]any) {
	payload["event"] = event
	payload["at"] = e.now().UTC().Format(time.RFC3339)
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to encode %s event: %v", event, err)
		return
	}
	if err := e.sink.WriteMessage(event, msg); err != nil {
		log.Printf("failed to emit %s event: %v", event, err)
	}
}
