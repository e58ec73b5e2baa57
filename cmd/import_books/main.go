package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"library-ledger/library"

	"github.com/spf13/cobra"
)

func main() {
	var ledgerFile, backend string

	cmd := &cobra.Command{
		Use:          "import_books CATALOG.csv",
		Short:        "Add every id,title,author,copies row of a CSV catalog to the ledger",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := library.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("file") {
				cfg.File = ledgerFile
			}
			if cmd.Flags().Changed("backend") {
				cfg.Backend = backend
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
			manager, err := library.NewLibraryManager(cfg, logger)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer manager.Close()

			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			defer f.Close()

			success, failed, err := importCatalog(cmd.OutOrStdout(), manager, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nImport complete!\n")
			fmt.Fprintf(out, "Successfully imported: %d rows\n", success)
			fmt.Fprintf(out, "Errors: %d\n", failed)
			if failed > 0 {
				return fmt.Errorf("%d rows failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ledgerFile, "file", library.DefaultFile, "ledger file path")
	cmd.Flags().StringVar(&backend, "backend", library.BackendJSON, "storage backend: json or sqlite")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// importCatalog adds each CSV row through the manager. A first row whose
// copies column is "copies" is treated as a header.
func importCatalog(out io.Writer, manager *library.LibraryManager, r io.Reader) (success, failed int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return success, failed, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				fmt.Fprintf(out, "Row %d: ERROR - want id,title,author,copies\n", line)
				failed++
				continue
			}
			return success, failed, fmt.Errorf("read catalog: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[3]), "copies") {
			continue
		}

		fmt.Fprintf(out, "Importing: %s by %s... ", rec[1], rec[2])
		res := manager.AddBook(rec[0], rec[1], rec[2], rec[3])
		if !res.OK {
			fmt.Fprintf(out, "ERROR - %s\n", res.Message)
			failed++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (%s)\n", res.Message)
		success++
	}
}
