package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"blobtool/internal/download"
	"blobtool/internal/filter"
	"blobtool/internal/listing"
	"blobtool/internal/storage"
)

const legacyArgCount = 6

const invalidCommandMessage = "The command was not valid, please specify any of the valid commands."

// legacyFilters maps the lower-cased command flag to its predicate kind.
var legacyFilters = map[string]filter.Kind{
	"-filternamecontains":   filter.NameContains,
	"-filternameexact":      filter.NameExact,
	"-filternamestartswith": filter.NameStartsWith,
	"-filternameendswith":   filter.NameEndsWith,
	"-filterdate":           filter.Date,
}

const legacyDownload = "-download"

// legacyInvocation is the positional form:
// <accountId> <secret> <container> <directory> -<command> <argument>.
// Arguments past the sixth are ignored.
type legacyInvocation struct {
	AccountID string
	Secret    string
	Container string
	Directory string
	Command   string
	Argument  string
}

func newLegacyInvocation(args []string) legacyInvocation {
	return legacyInvocation{
		AccountID: args[0],
		Secret:    args[1],
		Container: args[2],
		Directory: args[3],
		Command:   strings.ToLower(args[4]),
		Argument:  args[5],
	}
}

func runLegacy(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		switch args[0] {
		case "-h", "--help":
			return cmd.Help()
		case "--version":
			fmt.Fprintf(out, "%s version %s\n", cmd.Name(), cmd.Version)
			return nil
		}
	}

	if len(args) < legacyArgCount {
		fmt.Fprint(out, glossary)
		return nil
	}

	inv := newLegacyInvocation(args)

	var predicate filter.Predicate
	if inv.Command != legacyDownload {
		kind, ok := legacyFilters[inv.Command]
		if !ok {
			fmt.Fprintln(out, invalidCommandMessage)
			return reported(invocationError(invalidCommandMessage))
		}
		p, err := filter.New(kind, inv.Argument)
		if err != nil {
			message := fmt.Sprintf("The date %s is not valid.", inv.Argument)
			fmt.Fprintln(out, message)
			return reported(invocationError(message))
		}
		predicate = p
	}

	store, err := storeFor(cfg.WithCredentials(inv.AccountID, inv.Secret))
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx, cancel := operationContext(cmd)
	defer cancel()

	if inv.Command == legacyDownload {
		return runLegacyDownload(ctx, out, store, inv)
	}
	return runLegacyFilter(ctx, out, store, inv, predicate)
}

func runLegacyFilter(ctx context.Context, out io.Writer, store storage.Store, inv legacyInvocation, predicate filter.Predicate) error {
	fmt.Fprintln(out, "Starting to filter...")
	fmt.Fprintf(out, "All filtered documents in %s/%s:\n", inv.Container, inv.Directory)

	stats, err := listing.New(store, cfg.Recursive).Filter(ctx, inv.Container, inv.Directory, predicate, func(m listing.Match) error {
		_, err := fmt.Fprintln(out, listing.FormatLine(m))
		return err
	})
	if err != nil {
		return err
	}

	slog.Debug("Filter finished", "filter", predicate.String(), "scanned", stats.Scanned, "matched", stats.Matched)
	fmt.Fprintln(out, "Documents filtered successfully.")
	return nil
}

func runLegacyDownload(ctx context.Context, out io.Writer, store storage.Store, inv legacyInvocation) error {
	fmt.Fprintln(out, "Starting download...")

	result, err := newDownloader(store).Download(ctx, download.Request{
		Container: inv.Container,
		Directory: inv.Directory,
		FileName:  inv.Argument,
	})
	if err != nil {
		return err
	}

	slog.Debug("Download finished", "remote_path", result.RemotePath, "size", result.Size, "duration", result.DownloadDuration)
	fmt.Fprintf(out, "File downloaded to %s\n", result.LocalPath)
	return nil
}
