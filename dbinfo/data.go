package dbinfo

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Materializer loads full table contents into data tables.
type Materializer struct{}

// Materialize fetches every row of table. There is no row cap at this layer.
func (Materializer) Materialize(ctx context.Context, conn Conn, table string) (*Table, error) {
	it, err := conn.Rows(ctx, table)
	if err != nil {
		return nil, NewError(KindQuery, fmt.Sprintf("row query for table %q failed", table), err)
	}
	defer func() {
		_ = it.Close()
	}()

	t, err := NewTable(table, it.Columns()...)
	if err != nil {
		return nil, NewError(KindQuery, fmt.Sprintf("table %q has an invalid column set", table), err)
	}

	for {
		row, err := it.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, NewError(KindQuery, fmt.Sprintf("row fetch for table %q failed", table), err)
		}
		if err := t.Append(row); err != nil {
			return nil, NewError(KindQuery, fmt.Sprintf("row fetch for table %q failed", table), err)
		}
	}
	return t, nil
}
