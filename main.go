package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strings"

	"library-ledger/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("operation failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app carries what every command needs once the root command has opened the ledger.
type app struct {
	mgr   *library.LibraryManager
	out   io.Writer
	in    *bufio.Scanner
	color bool

	// promptable is false when stdin is a non-interactive stream such as a pipe.
	promptable bool
}

func newRootCmd() *cobra.Command {
	var (
		file           string
		backend        string
		logLevel       string
		resetOnCorrupt bool
		a              = &app{}
	)

	root := &cobra.Command{
		Use:           "library",
		Short:         "Single-desk library catalog and loan ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := library.LoadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("file") {
				cfg.File = file
			}
			if flags.Changed("backend") {
				cfg.Backend = strings.ToLower(backend)
			}
			if flags.Changed("reset-on-corrupt") {
				cfg.ResetOnCorrupt = resetOnCorrupt
			}
			if flags.Changed("log-level") {
				if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
					return fmt.Errorf("--log-level: %w", err)
				}
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
			mgr, err := library.NewLibraryManager(cfg, logger)
			if err != nil {
				return fmt.Errorf("open ledger %s: %w", cfg.File, err)
			}

			a.mgr = mgr
			a.out = cmd.OutOrStdout()
			a.in = bufio.NewScanner(cmd.InOrStdin())
			a.color = a.out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
			a.promptable = cmd.InOrStdin() != os.Stdin || term.IsTerminal(int(os.Stdin.Fd()))
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.mgr == nil {
				return nil
			}
			return a.mgr.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&file, "file", library.DefaultFile, "ledger file path")
	pf.StringVar(&backend, "backend", library.BackendJSON, "storage backend: json or sqlite")
	pf.BoolVar(&resetOnCorrupt, "reset-on-corrupt", false, "treat an unreadable ledger file as empty")
	pf.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(
		&cobra.Command{
			Use:   "add ID TITLE AUTHOR COPIES",
			Short: "Add a book, or more copies of an existing book",
			Args:  cobra.ExactArgs(4),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.mutate(a.mgr.AddBook(args[0], args[1], args[2], args[3]))
			},
		},
		&cobra.Command{
			Use:   "issue ID BORROWER CONTACT",
			Short: "Lend a copy to a borrower for seven days",
			Args:  cobra.ExactArgs(3),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.mutate(a.mgr.IssueBook(args[0], args[1], args[2]))
			},
		},
		&cobra.Command{
			Use:   "return ID BORROWER",
			Short: "Take a copy back and report any fine",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.mutate(a.mgr.ReturnBook(args[0], args[1]))
			},
		},
		newDeleteCmd(a),
		&cobra.Command{
			Use:   "list",
			Short: "Show every book and its active loans",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.list("")
			},
		},
		&cobra.Command{
			Use:   "search [QUERY]",
			Short: "Show books whose title or author contains QUERY",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.list(strings.Join(args, " "))
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Rewrite a legacy ledger file in the current format",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				// Opening the ledger already ran the migration.
				if a.mgr.Ledger().Migrated() {
					fmt.Fprintln(a.out, "Ledger migrated to the current format.")
				} else {
					fmt.Fprintln(a.out, "Ledger is already in the current format.")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Interactive desk mode",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.runShell()
			},
		},
	)
	return root
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a book and all of its loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.delete(args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// mutate prints the outcome of a mutating operation and, on success, the refreshed listing.
func (a *app) mutate(res library.Result) error {
	fmt.Fprintln(a.out, res.Message)
	if !res.OK {
		return errReported
	}
	return a.list("")
}

func (a *app) delete(id string, confirmed bool) error {
	exists, err := a.mgr.HasBook(id)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(a.out, "Book ID not found.")
		return errReported
	}
	id = strings.TrimSpace(id)
	if !confirmed && !a.promptable {
		fmt.Fprintf(a.out, "Refusing to delete book ID %s without confirmation; pass --yes.\n", id)
		return errReported
	}
	if !confirmed && !a.confirm(fmt.Sprintf("Are you sure you want to delete book ID %s? [y/N] ", id)) {
		fmt.Fprintln(a.out, "Delete cancelled.")
		return nil
	}
	return a.mutate(a.mgr.DeleteBook(id))
}

func (a *app) confirm(prompt string) bool {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		fmt.Fprintln(a.out)
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(a.in.Text()))
	return answer == "y" || answer == "yes"
}

// list prints the catalog, filtered by query when it is non-empty.
func (a *app) list(query string) error {
	var (
		lines iter.Seq[library.Line]
		err   error
	)
	if query == "" {
		lines, err = a.mgr.Books()
	} else {
		lines, err = a.mgr.Search(query)
	}
	if err != nil {
		return err
	}
	for l := range lines {
		fmt.Fprintln(a.out, library.PrettyLine(l, a.color))
	}
	return nil
}
