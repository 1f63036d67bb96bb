// Package summary implements the summary command, an offline rendition of
// POST /api/users/get_uploads.
package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trailtracker/trailtracker/internal/analytics"
	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
)

// Options are the summary command's flags.
type Options struct {
	Username    string
	SortBy      string
	FilterValue string
	JSON        bool
}

// Command creates the summary command.
func Command(settings *conf.Settings) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a user's upload summary and recommendation",
		Long: "Group a user's uploads by camera (--sort-by animal) or by animal (--sort-by camera)\n" +
			"after filtering on --filter, and print the counts and the recommendation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds := datastore.New(settings, logger.Global().Module("datastore"), nil)
			if ds == nil {
				return errors.New(errors.NewStd("no database enabled in output settings")).
					Component("summary").
					Category(errors.CategoryConfiguration).
					Build()
			}
			if err := ds.Open(); err != nil {
				return err
			}
			defer func() { _ = ds.Close() }()

			return Run(cmd.OutOrStdout(), ds, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "user", "u", "", "Username whose uploads are summarised")
	cmd.Flags().StringVar(&opts.SortBy, "sort-by", string(analytics.AxisAnimal), "Filter axis: animal or camera")
	cmd.Flags().StringVarP(&opts.FilterValue, "filter", "f", "", "Animal or camera id to filter on")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the summary as JSON")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("filter")

	return cmd
}

// Run loads the user's snapshot from ds and writes the summary to out.
func Run(out io.Writer, ds datastore.Interface, opts Options) error {
	axis, err := analytics.ParseAxis(opts.SortBy)
	if err != nil {
		return err
	}

	snapshot, err := ds.GetSnapshot(opts.Username)
	if err != nil {
		return err
	}

	summary, err := analytics.GetUploadSummary(snapshot.Uploads, snapshot.Pins, axis, opts.FilterValue)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return printTable(out, axis, summary)
}

func printTable(out io.Writer, axis analytics.Axis, summary analytics.Summary) error {
	header := "CAMERA"
	if axis == analytics.AxisCamera {
		header = "ANIMAL"
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tUPLOADS\n", header)
	for _, g := range summary.Groups {
		fmt.Fprintf(w, "%s\t%d\n", g.Label, g.Count)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, r := range summary.Recommendations {
		if _, err := fmt.Fprintln(out, r); err != nil {
			return err
		}
	}
	return nil
}
