package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ariebrainware/clinic-admin/config"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/roster"
	"github.com/spf13/cobra"
)

type reconcileOptions struct {
	VisitID string
	All     bool
}

func (o reconcileOptions) validate() error {
	switch {
	case o.VisitID == "" && !o.All:
		return errors.New("either --visit or --all is required")
	case o.VisitID != "" && o.All:
		return errors.New("--visit and --all are mutually exclusive")
	}
	return nil
}

func printRoster(w io.Writer, visitID string, patients []model.Patient) {
	fmt.Fprintf(w, "visit %s: %d patients\n", visitID, len(patients))
	for _, p := range patients {
		fmt.Fprintf(w, "%4d  %-30s  %s\n", p.SerialNo, p.Name, p.FeeStatus)
	}
}

func printStats(w io.Writer, stats roster.Stats) {
	fmt.Fprintf(w, "repairs: submitted=%d succeeded=%d failed=%d dropped=%d\n",
		stats.Submitted, stats.Succeeded, stats.Failed, stats.Dropped)
}

func reconcileCmd() *cobra.Command {
	var opts reconcileOptions
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Renumber visit rosters and push serial repairs to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			stack := newRosterStack(config.LoadConfig())
			out := cmd.OutOrStdout()

			var runErr error
			if opts.All {
				report, err := stack.audit.Run(cmd.Context())
				runErr = err
				fmt.Fprintf(out, "doctors=%d visits=%d loaded=%d failed=%d\n",
					report.Doctors, report.Visits, report.Loaded, report.Failed)
			} else {
				patients, err := stack.audit.RunVisit(cmd.Context(), opts.VisitID)
				runErr = err
				if err == nil {
					printRoster(out, opts.VisitID, patients)
				}
			}

			// wait for submitted repairs before exiting
			stack.queue.Close()
			printStats(out, stack.queue.Stats())
			return runErr
		},
	}
	cmd.Flags().StringVar(&opts.VisitID, "visit", "", "visit id to reconcile")
	cmd.Flags().BoolVar(&opts.All, "all", false, "reconcile every visit of every doctor")
	return cmd
}
