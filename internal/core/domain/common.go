package domain

import "time"

// ShowStatus is the single source of truth for the visibility of finance entities.
// It supersedes the legacy isArchived flag and the presence of deletedAt.
type ShowStatus string

const (
	ShowActive   ShowStatus = "active"
	ShowArchived ShowStatus = "archived"
	ShowDeleted  ShowStatus = "deleted"
)

// IsValid reports whether s is one of the known visibility states.
func (s ShowStatus) IsValid() bool {
	switch s {
	case ShowActive, ShowArchived, ShowDeleted:
		return true
	}
	return false
}

// SyncStatus is reserved for a future multi-device synchronization protocol.
// The ledger only ever writes SyncPending; nothing reads it yet.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedBy     string     `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time  `json:"lastUpdatedAt"`
	LastUpdatedBy string     `json:"lastUpdatedBy"` // UserID Reference
	SyncStatus    SyncStatus `json:"syncStatus"`
}

// NewAuditFields stamps creation and update fields with the same instant.
func NewAuditFields(userID string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
		SyncStatus:    SyncPending,
	}
}

// Touch records a modification and marks the entity as pending sync again.
func (a *AuditFields) Touch(userID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
	a.SyncStatus = SyncPending
}

// Session is the collaborator-supplied context every ledger operation runs under:
// an opaque user ID and the user's reporting (base) currency preference.
type Session struct {
	UserID       string
	BaseCurrency CurrencyCode
}
