package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBatchCommand_RunHonorsLimits(t *testing.T) {
	var calls int
	executor := BatchExecutorFunc(func(ctx context.Context, msg DumpDatabase) error {
		calls++
		return nil
	})
	loader := func(ctx context.Context) ([]DumpDatabase, error) {
		return []DumpDatabase{
			{Path: "sales.db", OutputDir: "out"},
			{Path: "stock.db", OutputDir: "out"},
		}, nil
	}

	cmd := NewBatchDumpCommand(executor, loader, WithBatchLimits(BatchLimits{MaxRequests: 1, MinInterval: time.Millisecond}))
	cmd.sleep = func(time.Duration) {}

	count, err := cmd.run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 1 || calls != 1 {
		t.Fatalf("expected 1 dump, got count=%d calls=%d", count, calls)
	}
}

func TestBatchCommand_RunContinuesAfterFailure(t *testing.T) {
	var paths []string
	executor := BatchExecutorFunc(func(ctx context.Context, msg DumpDatabase) error {
		paths = append(paths, msg.Path)
		if msg.Path == "broken.db" {
			return errors.New("cannot open")
		}
		return nil
	})
	loader := func(ctx context.Context) ([]DumpDatabase, error) {
		return []DumpDatabase{
			{Path: "broken.db", OutputDir: "out"},
			{Path: "sales.db", OutputDir: "out"},
		}, nil
	}

	count, err := NewBatchDumpCommand(executor, loader).run(context.Background(), "")
	if err == nil {
		t.Fatalf("expected first error to be returned")
	}
	if count != 2 || len(paths) != 2 || paths[1] != "sales.db" {
		t.Fatalf("expected both dumps attempted, got %v", paths)
	}
}

func TestBatchCommand_LoadsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	content := `[{"path":"sales.db","kind":"data","format":"xlsx","output_dir":"out"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got []DumpDatabase
	executor := BatchExecutorFunc(func(ctx context.Context, msg DumpDatabase) error {
		got = append(got, msg)
		return nil
	})
	if _, err := NewBatchDumpCommand(executor, nil).run(context.Background(), path); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 || got[0].Kind != "data" || got[0].Format != "xlsx" || got[0].OutputDir != "out" {
		t.Fatalf("unexpected requests %+v", got)
	}
}

func TestBatchCommand_RequiresLoader(t *testing.T) {
	cmd := NewBatchDumpCommand(BatchExecutorFunc(func(context.Context, DumpDatabase) error { return nil }), nil)
	if _, err := cmd.run(context.Background(), ""); err == nil {
		t.Fatalf("expected loader error")
	}
	if cmd.CLIOptions().Path[0] != "dbinfo-batch" {
		t.Fatalf("unexpected cli path %v", cmd.CLIOptions().Path)
	}
}
