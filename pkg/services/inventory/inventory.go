package inventory

import (
	"context"
	"iter"

	"github.com/de-tools/tagwarden/pkg/models/domain"
)

// Scanner enumerates and deletes the resources of one family.
//
// Scan returns a restartable lazy sequence: every call starts a fresh listing and
// pages are fetched while the sequence is consumed. A *domain.TagLookupError is
// yielded for a single unreadable resource and the sequence continues; any other
// error ends the sequence.
type Scanner interface {
	GetResourceType() domain.ResourceType
	Scan(ctx context.Context) iter.Seq2[domain.ResourceRecord, error]
	Delete(ctx context.Context, record domain.ResourceRecord) error
}
