package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"blobtool/internal/filter"
	"blobtool/internal/listing"
	"blobtool/internal/models"
	"blobtool/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list <directory>",
	Short: "List the files in a directory that match a filter",
	Long: `List the files in a directory of the configured bucket that match exactly one filter.

Name filters compare case-insensitively against the full object name. The date filter
matches files last modified on the given calendar day in the local time zone; any time
of day in the argument is ignored.

Sub-directories are reported as entries of their own unless --recursive is set, in which
case every file below the directory is examined.`,
	Example: `  # Files whose name contains "invoice"
  blobtool list reports --contains invoice

  # Files modified on a given day, as JSON lines
  blobtool list reports --date 2020-01-20 --json

  # Every .csv below a directory, in another bucket
  blobtool list exports --ends-with .csv --recursive --bucket archive`,
	Args: invocationArgs(cobra.ExactArgs(1)),
	RunE: runList,
}

var listFilterFlags = []struct {
	name  string
	kind  filter.Kind
	usage string
}{
	{"contains", filter.NameContains, "Name contains the value"},
	{"exact", filter.NameExact, "Name equals the value"},
	{"starts-with", filter.NameStartsWith, "Name starts with the value"},
	{"ends-with", filter.NameEndsWith, "Name ends with the value"},
	{"date", filter.Date, "Last modified on the given date (e.g. 2020-01-20)"},
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	directory := args[0]

	predicate, err := listPredicate(cmd)
	if err != nil {
		utils.PrintError(out, err, "list")
		return reported(err)
	}

	container := getBucketName(cmd)
	if container == "" {
		err := invocationError("no bucket configured: set BUCKET_NAME or pass --bucket")
		utils.PrintError(out, err, "list")
		return reported(err)
	}

	recursive := cfg.Recursive
	if cmd.Flags().Changed("recursive") {
		recursive, _ = cmd.Flags().GetBool("recursive")
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := storeFor(cfg)
	if err != nil {
		err = fmt.Errorf("failed to create storage client: %w", err)
		utils.PrintError(out, err, "list")
		return reported(err)
	}

	ctx, cancel := operationContext(cmd)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Starting list operation...\n")
		cmd.Printf("  Bucket: %s\n", container)
		cmd.Printf("  Directory: %s\n", directory)
		cmd.Printf("  Filter: %s\n", predicate)
		cmd.Printf("  Recursive: %t\n", recursive)
	}

	start := time.Now()
	if !asJSON {
		fmt.Fprintln(out, "Starting to filter...")
		fmt.Fprintf(out, "All filtered documents in %s/%s:\n", container, directory)
	}

	stats, err := listing.New(store, recursive).Filter(ctx, container, directory, predicate, func(m listing.Match) error {
		if asJSON {
			var modified string
			if !m.Entry.LastModified.IsZero() {
				modified = utils.FormatTime(m.Entry.LastModified)
			}
			return utils.PrintJSONLine(out, models.ListItem{
				DisplayName:  m.DisplayName,
				Path:         m.Entry.Name,
				LastModified: modified,
				Size:         m.Entry.ContentLength,
				IsDirectory:  m.Entry.IsDirectory,
			})
		}
		_, err := fmt.Fprintln(out, listing.FormatLine(m))
		return err
	})
	if err != nil {
		utils.PrintError(out, err, "list")
		return reported(err)
	}

	if asJSON {
		return utils.PrintJSONLine(out, models.ListSummary{
			Container:      container,
			Directory:      directory,
			Filter:         predicate.String(),
			Scanned:        stats.Scanned,
			Matched:        stats.Matched,
			TotalSizeBytes: stats.TotalBytes,
			TotalSizeHuman: utils.FormatBytes(stats.TotalBytes),
			OperationTime:  utils.FormatTime(start),
		})
	}

	fmt.Fprintln(out, "Documents filtered successfully.")
	if isVerbose(cmd) {
		cmd.Printf("Scanned %d entries, %d matched (%s)\n", stats.Scanned, stats.Matched, utils.FormatBytes(stats.TotalBytes))
	}
	return nil
}

// listPredicate builds the predicate from the one filter flag that was set.
func listPredicate(cmd *cobra.Command) (filter.Predicate, error) {
	var set []string
	var kind filter.Kind
	var value string

	for _, f := range listFilterFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		set = append(set, "--"+f.name)
		kind = f.kind
		value, _ = cmd.Flags().GetString(f.name)
	}

	switch len(set) {
	case 0:
		return filter.Predicate{}, invocationError("exactly one filter is required: --contains, --exact, --starts-with, --ends-with or --date")
	case 1:
	default:
		return filter.Predicate{}, invocationError("only one filter may be given, got " + strings.Join(set, ", "))
	}

	p, err := filter.New(kind, value)
	if err != nil {
		return filter.Predicate{}, invocationError(fmt.Sprintf("The date %s is not valid.", value))
	}
	return p, nil
}

func init() {
	for _, f := range listFilterFlags {
		listCmd.Flags().String(f.name, "", f.usage)
	}
	listCmd.Flags().BoolP("recursive", "r", false, "Examine every file below the directory (default from RECURSIVE)")
	listCmd.Flags().Bool("json", false, "Write one JSON object per match followed by a summary")
	listCmd.Flags().Int("timeout", 0, "Timeout in seconds for the operation (default from OPERATION_TIMEOUT, 0 means none)")
}
