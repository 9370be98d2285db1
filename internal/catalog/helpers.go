package catalog

import (
	"context"
	"encoding/json"
	"log"
)

// publishEvent notifies subscribers of a catalog change, best-effort.
// A nil redis client disables publishing entirely.
func (s *Server) publishEvent(ctx context.Context, eventType string, payload any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("catalog-service: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		log.Printf("catalog-service: publish event: %v", err)
	}
}
