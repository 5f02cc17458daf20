package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/kmbfeed/internal/kmb"
)

func newRoutesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List routes that publish arrival estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
			defer cancel()

			client, err := newClient(nil)
			if err != nil {
				return err
			}
			routes, err := client.Routes(ctx)
			if err != nil {
				return err
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), routes)
			}
			for _, r := range routes {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

func newETACmd() *cobra.Command {
	var (
		req    kmb.ETARequest
		format string
	)

	cmd := &cobra.Command{
		Use:   "eta",
		Short: "Show arrival estimates for one stop on a route",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Route == "" || req.Stop == "" {
				return fmt.Errorf("--route and --stop are required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
			defer cancel()

			client, err := newClient(nil)
			if err != nil {
				return err
			}
			arrivals, err := client.ETA(ctx, req)
			if err != nil {
				return err
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), arrivals)
			}
			return writeArrivals(cmd.OutOrStdout(), arrivals)
		},
	}

	cmd.Flags().StringVar(&req.Route, "route", "", "route number, e.g. 1A (required)")
	cmd.Flags().IntVar(&req.Bound, "bound", 1, "route direction: 1 or 2")
	cmd.Flags().StringVar(&req.Stop, "stop", "", "stop code, e.g. LA03S14500 (required)")
	cmd.Flags().IntVar(&req.StopSeq, "seq", 1, "stop sequence number on the route")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

func writeArrivals(w io.Writer, arrivals []kmb.Arrival) error {
	if len(arrivals) == 0 {
		_, err := fmt.Fprintln(w, "No arrivals.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ETA\tFLAGS\tREMARK")
	for _, a := range arrivals {
		var flags []string
		if a.IsScheduled {
			flags = append(flags, "scheduled")
		}
		if a.HasWheelchair {
			flags = append(flags, "wheelchair")
		}
		if a.IsDelayed {
			flags = append(flags, "delayed")
		}
		_, remark, _ := strings.Cut(a.Text, "\u3000")
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ETA, strings.Join(flags, ","), strings.TrimSpace(remark))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
