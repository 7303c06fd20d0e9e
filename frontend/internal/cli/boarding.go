package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/portal-dev/portal/frontend/internal/auth"
	"github.com/portal-dev/portal/frontend/internal/boarding"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/validation"
)

func (a *App) boardingCmd() *cobra.Command {
	var (
		d      boarding.Draft
		outDir string
		noWait bool
	)
	cmd := &cobra.Command{
		Use:   "boarding",
		Short: "Issue a shuttle boarding code and count it down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}

			card := boarding.NewCard(boarding.OptionsFromConfig(a.Public.Boarding))
			if d.ValidDate == "" {
				d.ValidDate = card.Snapshot().Draft.ValidDate
			}
			if err := card.SetDraft(d); err != nil {
				return err
			}
			if _, err := card.Generate(); err != nil {
				if errors.Is(err, boarding.ErrIncompleteDraft) {
					return fail(cmd, auth.OpBoard, validation.FieldErrors(d.Problems()))
				}
				return err
			}

			for {
				if err := a.issue(cmd, card, outDir); err != nil {
					return err
				}
				if noWait {
					return nil
				}

				card.Run(cmd.Context(), a.Public.Boarding.TickInterval, func(s boarding.Snapshot) {
					writeCountdown(cmd, s)
				})
				if cmd.Context().Err() != nil {
					fmt.Fprintln(cmd.OutOrStdout())
					return nil
				}

				ok, err := a.confirm(cmd, "Refresh the code? [y/N]: ")
				if err != nil || !ok {
					return err
				}
				if _, err := card.Refresh(cmd.Context()); err != nil {
					m := modal.New()
					m.Error("Card error", "The boarding code could not be refreshed.")
					show(cmd, m)
					return ErrReported
				}
			}
		},
	}

	f := cmd.Flags()
	f.StringVar(&d.EmployeeID, "employee-id", "", "employee ID (required)")
	f.StringVar(&d.EmployeeName, "name", "", "employee name (required)")
	f.StringVar(&d.Department, "department", "", "department")
	f.StringVar(&d.BusRoute, "route", "", "bus route (required)")
	f.StringVar(&d.BoardingTime, "time", "", "boarding time, HH:MM")
	f.StringVar(&d.ValidDate, "date", "", "valid date, YYYY-MM-DD (default today)")
	f.StringVarP(&outDir, "out", "o", ".", "directory the card image is saved to")
	f.BoolVar(&noWait, "no-wait", false, "save the card and exit without the countdown")
	return cmd
}

// issue prints the symbol of the current code and saves the card image next to it.
func (a *App) issue(cmd *cobra.Command, card *boarding.Card, outDir string) error {
	s := card.Snapshot()
	symbol, err := boarding.SymbolText(s.Token.Payload)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprint(w, symbol)

	name, data, err := card.Download()
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("can't save boarding card: %w", err)
	}
	fmt.Fprintf(w, "Saved %s\n", path)
	return nil
}

func writeCountdown(cmd *cobra.Command, s boarding.Snapshot) {
	w := cmd.OutOrStdout()
	switch {
	case s.State != boarding.Active:
		fmt.Fprintln(w, "\rThis code has expired.      ")
	case s.Warning:
		fmt.Fprintf(w, "\rValid for %s (expiring soon)", s.RemainingText())
	default:
		fmt.Fprintf(w, "\rValid for %s                ", s.RemainingText())
	}
}
