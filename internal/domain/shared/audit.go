package shared

import "context"

// AuditEntry describes one mutating operation for the audit log side-channel
type AuditEntry struct {
	ModuleName  string         `json:"moduleName"`
	Action      string         `json:"action"`
	PerformedBy string         `json:"performedBy"`
	RecordID    string         `json:"recordId"`
	OldValues   any            `json:"oldValues,omitempty"`
	NewValues   any            `json:"newValues,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// AuditRecorder ships audit entries to the audit log sink. Implementations
// are fire-and-forget: delivery failures are logged, never surfaced, so the
// primary business operation is never blocked.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// NopAuditRecorder discards audit entries
type NopAuditRecorder struct{}

// Record implements AuditRecorder
func (NopAuditRecorder) Record(context.Context, AuditEntry) {}
