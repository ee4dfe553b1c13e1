package dbinfo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TableFilter reports whether a table takes part in an extraction.
type TableFilter func(name string) bool

// IncludeExclude builds a case-insensitive filter. An empty include list
// admits every table not excluded.
func IncludeExclude(include, exclude []string) TableFilter {
	if len(include) == 0 && len(exclude) == 0 {
		return nil
	}
	in := toSet(include)
	out := toSet(exclude)
	return func(name string) bool {
		key := strings.ToLower(name)
		if _, skip := out[key]; skip {
			return false
		}
		if len(in) == 0 {
			return true
		}
		_, ok := in[key]
		return ok
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// Extractor opens a database file and builds metadata or data tables for
// each of its user tables.
type Extractor struct {
	Provider     Provider
	Logger       Logger
	Filter       TableFilter
	Introspector Introspector
	Materializer Materializer
	IDGenerator  func() string
}

// NewExtractor creates an extractor for the given provider.
func NewExtractor(provider Provider) *Extractor {
	return &Extractor{
		Provider:    provider,
		Logger:      NopLogger{},
		IDGenerator: uuid.NewString,
	}
}

// GetDBInfoMetadata extracts one metadata table per user table of path.
func GetDBInfoMetadata(ctx context.Context, provider Provider, path string) (*Result, error) {
	return NewExtractor(provider).Metadata(ctx, path)
}

// GetDBInfoData extracts one data table per user table of path.
func GetDBInfoData(ctx context.Context, provider Provider, path string) (*Result, error) {
	return NewExtractor(provider).Data(ctx, path)
}

// Metadata introspects the schema of every user table. Tables whose catalog
// query fails are skipped and listed in Result.Skipped.
func (e *Extractor) Metadata(ctx context.Context, path string) (*Result, error) {
	return e.extract(ctx, path, ResultMetadata, func(ctx context.Context, conn Conn, table string) (*Table, error) {
		return e.Introspector.Introspect(ctx, conn, table)
	})
}

// Data materializes every row of every user table. Tables whose row query
// fails are skipped and listed in Result.Skipped.
func (e *Extractor) Data(ctx context.Context, path string) (*Result, error) {
	return e.extract(ctx, path, ResultData, func(ctx context.Context, conn Conn, table string) (*Table, error) {
		return e.Materializer.Materialize(ctx, conn, table)
	})
}

// Extract runs Metadata or Data depending on kind. An empty kind means
// metadata.
func (e *Extractor) Extract(ctx context.Context, kind ResultKind, path string) (*Result, error) {
	switch kind {
	case "", ResultMetadata:
		return e.Metadata(ctx, path)
	case ResultData:
		return e.Data(ctx, path)
	default:
		return nil, NewError(KindValidation, fmt.Sprintf("unknown result kind %q", kind), nil)
	}
}

type tableBuilder func(ctx context.Context, conn Conn, table string) (*Table, error)

func (e *Extractor) extract(ctx context.Context, path string, kind ResultKind, build tableBuilder) (*Result, error) {
	if e == nil || e.Provider == nil {
		return nil, NewError(KindConnection, "connection provider is required", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := e.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	id := DatabaseID(path)
	if id == "" {
		return nil, NewError(KindValidation, fmt.Sprintf("cannot derive database identifier from %q", path), nil)
	}

	stage, failKind := StageIntrospect, KindIntrospection
	if kind == ResultData {
		stage, failKind = StageQuery, KindQuery
	}

	result := NewResult(kind)
	if e.IDGenerator != nil {
		result.RunID = e.IDGenerator()
	}

	conn, err := e.Provider.Open(ctx, path)
	if err != nil {
		logger.Errorf("run=%s db=%s open failed: %v", result.RunID, id, err)
		if IsKind(err, KindConnection) {
			return nil, err
		}
		return nil, NewError(KindConnection, fmt.Sprintf("cannot open database %q", path), err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logger.Errorf("run=%s db=%s close failed: %v", result.RunID, id, cerr)
		}
	}()

	names, err := conn.Tables(ctx)
	if err != nil {
		logger.Errorf("run=%s db=%s table enumeration failed: %v", result.RunID, id, err)
		return nil, NewError(failKind, fmt.Sprintf("cannot enumerate tables of %q", path), err)
	}
	logger.Infof("run=%s db=%s %s extraction of %d tables", result.RunID, id, kind, len(names))

	set := result.Database(id)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, NewError(KindFromError(err), "extraction interrupted", err)
		}
		if e.Filter != nil && !e.Filter(name) {
			logger.Debugf("run=%s db=%s table=%s filtered out", result.RunID, id, name)
			continue
		}

		table, err := build(ctx, conn, name)
		if err == nil {
			err = set.Add(table)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, NewError(KindFromError(ctxErr), "extraction interrupted", ctxErr)
			}
			logger.Errorf("run=%s db=%s table=%s skipped: %v", result.RunID, id, name, err)
			result.Skipped = append(result.Skipped, Failure{
				Database: id,
				Table:    name,
				Stage:    stage,
				Err:      err,
			})
			continue
		}
		logger.Debugf("run=%s db=%s table=%s rows=%d", result.RunID, id, name, table.Len())
	}

	return result, nil
}
