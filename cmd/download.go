package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"blobtool/internal/download"
	"blobtool/pkg/utils"
)

var downloadCmd = &cobra.Command{
	Use:   "download <directory> <fileName>",
	Short: "Download one file from a directory",
	Long: `Download one file from a directory of the configured bucket.

The file is streamed to disk in 4096-byte chunks and written under its own name, either in
the current directory or in --destination. An existing local file with the same name is
overwritten. If the transfer breaks, the partially written file is left in place.`,
	Example: `  # Download into the current directory
  blobtool download reports invoice-2020-01.json

  # Download to a specific destination
  blobtool download reports invoice-2020-01.json --destination /tmp/downloads/

  # Download from a different bucket
  blobtool download data export.csv --bucket my-other-bucket`,
	Args: invocationArgs(cobra.ExactArgs(2)),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	directory, fileName := args[0], args[1]
	destination, _ := cmd.Flags().GetString("destination")

	container := getBucketName(cmd)
	if container == "" {
		err := invocationError("no bucket configured: set BUCKET_NAME or pass --bucket")
		utils.PrintError(out, err, "download")
		return reported(err)
	}

	store, err := storeFor(cfg)
	if err != nil {
		err = fmt.Errorf("failed to create storage client: %w", err)
		utils.PrintError(out, err, "download")
		return reported(err)
	}

	ctx, cancel := operationContext(cmd)
	defer cancel()

	req := download.Request{
		Container:   container,
		Directory:   directory,
		FileName:    fileName,
		Destination: destination,
	}

	if isVerbose(cmd) {
		cmd.Printf("Starting download operation...\n")
		cmd.Printf("  Remote: %s/%s\n", container, req.RemoteKey())
		cmd.Printf("  Destination: %s\n", req.LocalPath())
	}

	result, err := newDownloader(store).Download(ctx, req)
	if err != nil {
		utils.PrintError(out, err, "download")
		return reported(err)
	}

	if err := utils.PrintJSON(out, result); err != nil {
		utils.PrintError(out, err, "download")
		return reported(err)
	}

	if isVerbose(cmd) {
		cmd.Println("Download operation completed successfully")
		cmd.Printf("Downloaded file: %s (%s)\n", result.LocalPath, result.SizeHuman)
	}
	return nil
}

func init() {
	downloadCmd.Flags().StringP("destination", "d", "", "Local destination directory (default: current directory)")
	downloadCmd.Flags().Int("timeout", 0, "Timeout in seconds for the operation (default from OPERATION_TIMEOUT, 0 means none)")
}
