package dto

import (
	"encoding/json"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"
)

type SecurityLogResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	IPAddress *string         `json:"ip_address,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func SecurityLogResponsesFromEntities(logs []entity.SecurityLog) []SecurityLogResponse {
	responses := make([]SecurityLogResponse, 0, len(logs))
	for _, log := range logs {
		response := SecurityLogResponse{
			ID:        log.ID.String(),
			Action:    string(log.Action),
			IPAddress: log.IPAddress,
			CreatedAt: log.CreatedAt,
		}
		if len(log.Metadata) > 0 {
			response.Metadata = json.RawMessage(log.Metadata)
		}
		responses = append(responses, response)
	}
	return responses
}
