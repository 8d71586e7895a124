// Package queue defines message payloads exchanged over the message broker.
package queue

// TenantProvisionedEvent is published after a restaurant's schema has been
// created and seeded.  It carries enough for downstream consumers to log,
// bill or trigger onboarding without querying the primary database.
type TenantProvisionedEvent struct {
	TenantID      uint64 `json:"tenant_id"`
	Slug          string `json:"slug"`
	DisplayName   string `json:"display_name"`
	SeededAccount string `json:"seeded_account"`
	ProvisionedAt string `json:"provisioned_at"`
}
