package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/meetreminder/meetreminder/internal/app"
	"github.com/meetreminder/meetreminder/internal/config"
	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/meetreminder/meetreminder/internal/service"
	"github.com/spf13/cobra"
)

var (
	svc *app.App
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "remindctl",
	Short:             "Operate meeting reminders from the command line",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if svc != nil {
			svc.Close()
		}
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Register a reminder for a meeting today",
	RunE:  runSchedule,
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run one dispatch cycle now",
	RunE:  runDispatch,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every reminder and its status",
	RunE:  runList,
}

var reportCmd = &cobra.Command{
	Use:   "report [html-file]",
	Short: "Send an HTML report to the configured recipient",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

var scheduleReq service.ScheduleRequest
var reportSubject string

func init() {
	scheduleCmd.Flags().StringVar(&scheduleReq.Email, "email", "", "attendee email address")
	scheduleCmd.Flags().StringVar(&scheduleReq.Name, "name", "", "attendee full name")
	scheduleCmd.Flags().StringVar(&scheduleReq.Time, "time", "", "meeting start as HH:MM")
	scheduleCmd.Flags().StringVar(&scheduleReq.MeetURL, "meet-url", "", "meeting link")
	scheduleCmd.Flags().StringVar(&scheduleReq.Title, "title", "", "meeting title")
	_ = scheduleCmd.MarkFlagRequired("email")
	_ = scheduleCmd.MarkFlagRequired("time")

	reportCmd.Flags().StringVar(&reportSubject, "subject", "", "subject line (defaults to the configured report subject)")

	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(dispatchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, "console")

	svc, err = app.New(cmd.Context(), cfg, log)
	return err
}

func runSchedule(cmd *cobra.Command, args []string) error {
	status, err := svc.Scheduler.Schedule(cmd.Context(), scheduleReq)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}

func runDispatch(cmd *cobra.Command, args []string) error {
	result, err := svc.Dispatcher.Dispatch(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "processed=%d sent=%d cancelled=%d failed=%d\n",
		result.Processed, result.Sent, result.Cancelled, result.Failed)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	rows, err := svc.Scheduler.List(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRECIPIENT\tTIME\tTITLE\tSTATUS")
	for _, r := range rows {
		status := r.Status.Format(cfg.Reminder.SentFormat)
		if status == "" {
			status = "pending"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.RecipientEmail, r.ScheduledTime, r.Title, status)
	}
	return w.Flush()
}

func runReport(cmd *cobra.Command, args []string) error {
	html, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	err = svc.Mail.SendReport(cmd.Context(), reportSubject, string(html))
	if errors.Is(err, service.ErrReportRecipientMissing) {
		return fmt.Errorf("%w (set report.recipient)", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "sent")
	return nil
}
