package schema

// SystemAuditLogTable represents the 'system.auditlog' table
type SystemAuditLogTable struct {
	Table      string
	ID         string
	Action     string
	ActorID    string
	Details    string
	IPAddress  string
	OccurredAt string
	CreatedAt  string
}

var SystemAuditLog = SystemAuditLogTable{
	Table:      "system.auditlog",
	ID:         "id",
	Action:     "action",
	ActorID:    "actorid",
	Details:    "details",
	IPAddress:  "ipaddress",
	OccurredAt: "occurredat",
	CreatedAt:  "createdat",
}
