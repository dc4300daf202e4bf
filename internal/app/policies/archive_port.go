package policies

import (
	"context"

	"villastay/internal/domain/invoice"
)

// InvoiceArchiver persists finalized invoice snapshots to durable storage.
// Rendering (PDF, email) is an external collaborator; only the JSON record is
// kept here.
type InvoiceArchiver interface {
	Archive(ctx context.Context, doc invoice.Document) (location string, err error)
}
