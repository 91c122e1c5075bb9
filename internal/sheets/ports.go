package sheets

import (
	"context"

	"moneta/internal/core"
)

// Ports for outbound record stores.
type (
	RecordWriter interface {
		Append(ctx context.Context, rec core.Record) (id string, err error)
	}

	RecordLister interface {
		List(ctx context.Context) ([]core.Record, error)
	}

	RecordGetter interface {
		Get(ctx context.Context, id string) (core.Record, error)
	}

	// RecordReplacer swaps the stored fields of an existing record.
	// Edits are modeled as replace, never partial mutation.
	RecordReplacer interface {
		Replace(ctx context.Context, id string, rec core.Record) (core.Record, error)
	}

	RecordDeleter interface {
		Delete(ctx context.Context, id string) error
	}
)

// Store is the full read/write surface a primary backend provides.
type Store interface {
	RecordWriter
	RecordLister
	RecordGetter
	RecordReplacer
	RecordDeleter
}
