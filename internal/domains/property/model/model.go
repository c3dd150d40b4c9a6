package model

import (
	"basera/shared/model"
)

const (
	TableName  = "properties"
	EntityName = "property"

	FieldID        = "id"
	FieldAgentID   = "agent_id"
	FieldTitle     = "title"
	FieldCity      = "city"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldStatus    = "status"
)

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Property is owned by the listing subsystem. The booking engine only reads
// it: coordinates feed the conflict check and agent_id scopes authorization
// and the repeat-customer discount.
type Property struct {
	ID        string   `db:"id"`
	AgentID   string   `db:"agent_id"`
	Title     string   `db:"title"`
	City      string   `db:"city"`
	Latitude  *float64 `db:"latitude"`
	Longitude *float64 `db:"longitude"`
	Status    string   `db:"status"`
	model.Metadata
}
