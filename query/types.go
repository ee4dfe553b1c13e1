package query

import (
	"strings"

	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/goliatone/go-errors"
)

// InspectDatabase requests the metadata or data tables of a database file.
type InspectDatabase struct {
	Path string
	Kind dbinfo.ResultKind
}

func (InspectDatabase) Type() string { return "dbinfo:inspect" }

func (msg InspectDatabase) Validate() error {
	if strings.TrimSpace(msg.Path) == "" {
		return errors.New("database path is required", errors.CategoryValidation).
			WithTextCode("PATH_REQUIRED")
	}
	switch msg.Kind {
	case "", dbinfo.ResultMetadata, dbinfo.ResultData:
		return nil
	default:
		return errors.New("kind must be metadata or data", errors.CategoryValidation).
			WithTextCode("KIND_INVALID")
	}
}
