package command

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
)

// BatchLoader loads dump requests from a source.
type BatchLoader func(ctx context.Context) ([]DumpDatabase, error)

// BatchExecutor runs a single dump. *DumpDatabaseHandler implements it.
type BatchExecutor interface {
	Execute(ctx context.Context, msg DumpDatabase) error
}

// BatchExecutorFunc adapts a function to a BatchExecutor.
type BatchExecutorFunc func(ctx context.Context, msg DumpDatabase) error

func (f BatchExecutorFunc) Execute(ctx context.Context, msg DumpDatabase) error {
	if f == nil {
		return errors.New("batch executor is required", errors.CategoryInternal).
			WithTextCode("BATCH_EXECUTOR_NIL")
	}
	return f(ctx, msg)
}

// BatchCommand wires CLI/Cron execution for dumping several databases.
type BatchCommand struct {
	executor   BatchExecutor
	loader     BatchLoader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// NewBatchDumpCommand creates a CLI/Cron command that dumps every database
// returned by loader.
func NewBatchDumpCommand(executor BatchExecutor, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		executor: executor,
		loader:   loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"dbinfo-batch"},
			Description: "Dump a batch of database files",
			Group:       "dbinfo",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 0 * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler executes the batch.
func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// run dumps each request in order. A failing dump does not stop the batch;
// the first error is returned once every request has been attempted.
func (c *BatchCommand) run(ctx context.Context, from string) (int, error) {
	if c == nil {
		return 0, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.executor == nil {
		return 0, errors.New("batch executor is required", errors.CategoryValidation).
			WithTextCode("EXECUTOR_REQUIRED")
	}

	requests, err := c.loadRequests(ctx, from)
	if err != nil {
		return 0, err
	}

	count := 0
	var firstErr error
	for _, msg := range requests {
		if c.limits.MaxRequests > 0 && count >= c.limits.MaxRequests {
			break
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}
		msg.Result = nil
		if err := c.executor.Execute(ctx, msg); err != nil && firstErr == nil {
			firstErr = err
		}
		count++
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return count, firstErr
}

func (c *BatchCommand) loadRequests(ctx context.Context, from string) ([]DumpDatabase, error) {
	if strings.TrimSpace(from) != "" {
		return loadBatchRequestsFromFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to JSON batch dump requests'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.run(context.Background(), c.From)
	return err
}

func loadBatchRequestsFromFile(path string) ([]DumpDatabase, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var requests []DumpDatabase
	if err := json.Unmarshal(content, &requests); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return requests, nil
}
