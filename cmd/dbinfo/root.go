package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-dbinfo/command"
	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/goliatone/go-dbinfo/export"
	"github.com/spf13/cobra"
)

// errFailures signals a run that finished with failures already reported in
// the summary.
var errFailures = errors.New("one or more databases or tables failed")

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "dbinfo",
		Short: "Dump the schema or contents of database files to CSV or Excel",
		Long: `dbinfo opens SQLite, DuckDB and (through ODBC) Access database files
read-only and writes either their column metadata or their full table
contents as a CSV tree or an Excel workbook per database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default ./"+DefaultConfigFile+")")
	pf.String("env-file", ".env", "environment file loaded before reading config")
	pf.StringP("output-dir", "o", DefaultOutputDir, "output directory")
	pf.StringP("format", "f", string(export.FormatCSV), "output format: csv or xlsx")
	pf.String("separator", string(export.DefaultSeparator), `CSV field separator (use \t for tab)`)
	pf.Bool("include-record-count", false, "add a Records column to the workbook index sheet")
	pf.Int("max-records-per-table", export.DefaultMaxRecordsPerTable, "row cap per workbook sheet")
	pf.String("index-sheet", export.DefaultIndexSheetName, "workbook index sheet name")
	pf.String("timezone", "", "IANA zone for rendering datetimes (default UTC)")
	pf.String("datetime-layout", "", "Go layout for datetimes in CSV output")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.StringSlice("include", nil, "only extract these tables")
	pf.StringSlice("exclude", nil, "skip these tables")
	pf.String("odbc-driver", "", "database/sql driver name for .mdb/.accdb files")
	pf.String("odbc-dsn", "", "DSN template for the ODBC driver, %s receives the file path")
	pf.String("odbc-dialect", "access", "catalog dialect for the ODBC driver: access or ansi")

	root.AddCommand(
		newExtractCmd(dbinfo.ResultMetadata, "Dump column metadata of every table", out, errOut),
		newExtractCmd(dbinfo.ResultData, "Dump the rows of every table", out, errOut),
	)
	return root
}

func newExtractCmd(kind dbinfo.ResultKind, short string, out, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " [database files...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			envFile, _ := flags.GetString("env-file")
			if err := LoadEnvFile(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			cfgFile, _ := flags.GetString("config")
			cfg, err := LoadConfig(cfgFile, flags)
			if err != nil {
				return err
			}
			paths := cfg.Paths(args)
			if len(paths) == 0 {
				return fmt.Errorf("no database file given: pass a path, set database in config or %s", LegacyDatabaseEnv)
			}

			logger := newLogger(cfg.LogLevel, errOut)
			providers, err := buildProviders(cfg)
			if err != nil {
				return err
			}
			extractor := dbinfo.NewExtractor(providers)
			extractor.Logger = logger
			extractor.Filter = dbinfo.IncludeExclude(cfg.Tables.Include, cfg.Tables.Exclude)
			dumpers := export.DefaultDumperRegistry(cfg.CSVOptions(), cfg.XLSXOptions(), logger)
			handler := command.NewDumpDatabaseHandler(extractor, dumpers)

			outcomes := make([]outcome, 0, len(paths))
			failed := false
			for _, path := range paths {
				o := outcome{Path: path}
				o.Err = handler.Execute(cmd.Context(), command.DumpDatabase{
					Path:      path,
					Kind:      kind,
					Format:    export.Format(cfg.Format),
					OutputDir: cfg.OutputDir,
					Result:    &o.Result,
				})
				if o.Err != nil {
					logger.Errorf("db=%s %s dump failed: %v", path, kind, o.Err)
					if dbinfo.IsKind(o.Err, dbinfo.KindCanceled) {
						return o.Err
					}
				}
				failed = failed || o.Failed()
				outcomes = append(outcomes, o)
			}

			renderSummary(out, outcomes)
			if failed {
				return errFailures
			}
			return nil
		},
	}
}
