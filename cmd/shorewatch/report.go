package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/viperioribus/shorewatch/internal/domain"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Submit a report for the selected beach and post",
	}
	cmd.AddCommand(newReportIncidentCmd())
	cmd.AddCommand(newReportEnvironmentCmd())
	return cmd
}

type incidentFlags struct {
	date         string
	hour         int
	minute       int
	personName   string
	age          int
	postalCode   string
	incidences   []string
	observations string
}

func newReportIncidentCmd() *cobra.Command {
	var flags incidentFlags

	cmd := &cobra.Command{
		Use:   "incident",
		Short: "Submit a person-related incident report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			date, err := parseDateFlag(flags.date)
			if err != nil {
				return err
			}
			fillTimeDefaults(cmd, &flags.hour, &flags.minute)

			incidences := make([]domain.Incidence, len(flags.incidences))
			for i, inc := range flags.incidences {
				incidences[i] = domain.Incidence(inc)
			}

			form := domain.IncidentReport{
				Date:         date,
				Hour:         flags.hour,
				Minute:       flags.minute,
				PersonName:   flags.personName,
				Age:          flags.age,
				PostalCode:   flags.postalCode,
				Incidences:   incidences,
				Observations: flags.observations,
				BeachName:    a.session.LoadSelection(ctx).ResolvedName(),
			}
			return printResult(a.pipeline.Submit(ctx, form))
		},
	}

	cmd.Flags().StringVar(&flags.date, "date", "", "Report date as YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&flags.hour, "hour", 0, "Hour of the incident, 0-23 (default current hour)")
	cmd.Flags().IntVar(&flags.minute, "minute", 0, "Minute of the incident, 0-59 (default current minute)")
	cmd.Flags().StringVar(&flags.personName, "name", "", "Name of the person involved")
	cmd.Flags().IntVar(&flags.age, "age", 0, "Age of the person involved")
	cmd.Flags().StringVar(&flags.postalCode, "postal-code", "", "Postal code of the person involved")
	cmd.Flags().StringArrayVar(&flags.incidences, "incidence", nil,
		"Incidence tag, repeatable (see 'shorewatch incidences')")
	cmd.Flags().StringVar(&flags.observations, "observations", "", "Free-text observations")

	return cmd
}

type environmentFlags struct {
	date        string
	hour        int
	minute      int
	windSpeed   float64
	temperature float64
	waveHeight  float64
}

func newReportEnvironmentCmd() *cobra.Command {
	var flags environmentFlags

	cmd := &cobra.Command{
		Use:   "environment",
		Short: "Submit an environmental conditions report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			date, err := parseDateFlag(flags.date)
			if err != nil {
				return err
			}
			fillTimeDefaults(cmd, &flags.hour, &flags.minute)

			form := domain.EnvironmentReport{
				Date:        date,
				Hour:        flags.hour,
				Minute:      flags.minute,
				WindSpeed:   flags.windSpeed,
				Temperature: flags.temperature,
				WaveHeight:  flags.waveHeight,
				BeachName:   a.session.LoadSelection(ctx).ResolvedName(),
			}
			return printResult(a.pipeline.Submit(ctx, form))
		},
	}

	cmd.Flags().StringVar(&flags.date, "date", "", "Report date as YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&flags.hour, "hour", 0, "Hour of the observation, 0-23 (default current hour)")
	cmd.Flags().IntVar(&flags.minute, "minute", 0, "Minute of the observation, 0-59 (default current minute)")
	cmd.Flags().Float64Var(&flags.windSpeed, "wind-speed", 0, "Wind speed in km/h")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", 0, "Air temperature in °C")
	cmd.Flags().Float64Var(&flags.waveHeight, "wave-height", 0, "Wave height in metres")

	return cmd
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return domain.Today(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// fillTimeDefaults sets hour and minute to the current time when the
// caller did not pass them explicitly.
func fillTimeDefaults(cmd *cobra.Command, hour, minute *int) {
	now := domain.Now()
	if !cmd.Flags().Changed("hour") {
		*hour = now.Hour()
	}
	if !cmd.Flags().Changed("minute") {
		*minute = now.Minute()
	}
}

// printResult renders the submission outcome; non-success becomes a CLI
// error so the exit code reflects it.
func printResult(result domain.SubmissionResult) error {
	switch result.Status {
	case domain.StatusSuccess:
		fmt.Println("Report submitted.")
		return nil
	case domain.StatusValidationFailed:
		fmt.Fprintln(os.Stderr, "The report is incomplete:")
		for _, fe := range result.FieldErrors {
			fmt.Fprintf(os.Stderr, "  - %s %s\n", fe.Field, fe.Reason)
		}
		return errors.New("validation failed")
	case domain.StatusAuthFailed:
		return errors.New("not authenticated; run 'shorewatch login'")
	case domain.StatusRejected:
		return fmt.Errorf("the backend rejected the report: %s", result.Message)
	default:
		return errors.New("network failure, the report was not submitted; try again")
	}
}
