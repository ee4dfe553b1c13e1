package query

import (
	"context"

	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/goliatone/go-errors"
)

// Extractor builds results from database files.
type Extractor interface {
	Extract(ctx context.Context, kind dbinfo.ResultKind, path string) (*dbinfo.Result, error)
}

// InspectDatabaseHandler returns the extraction result without writing it.
type InspectDatabaseHandler struct {
	Extractor Extractor
}

func NewInspectDatabaseHandler(extractor Extractor) *InspectDatabaseHandler {
	return &InspectDatabaseHandler{Extractor: extractor}
}

func (h *InspectDatabaseHandler) Query(ctx context.Context, msg InspectDatabase) (*dbinfo.Result, error) {
	if h == nil || h.Extractor == nil {
		return nil, errors.New("extractor is required", errors.CategoryInternal).
			WithTextCode("EXTRACTOR_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return h.Extractor.Extract(ctx, msg.Kind, msg.Path)
}
