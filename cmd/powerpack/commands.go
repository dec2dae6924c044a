package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/powerpack/internal/bridge"
	"github.com/muurk/powerpack/internal/config"
	"github.com/muurk/powerpack/internal/console"
	"github.com/muurk/powerpack/internal/discovery"
	"github.com/muurk/powerpack/internal/inlineedit"
	"github.com/muurk/powerpack/internal/logging"
	"github.com/muurk/powerpack/internal/looker"
	"github.com/muurk/powerpack/internal/ui"
	"github.com/muurk/powerpack/internal/urls"
)

// Command flags
var (
	outputFormat string
	assumeYes    bool
	scanTimeout  int
	sessionLen   int
)

func init() {
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(setEmailCmd)
	rootCmd.AddCommand(schedulesCmd)
	rootCmd.AddCommand(runScheduleCmd)
	rootCmd.AddCommand(embedURLCmd)
	rootCmd.AddCommand(scanCmd)
}

// session is a resolved target with a client that has not logged in yet
type session struct {
	target *config.Target
	client *looker.Client
	secret string
}

// newSession resolves the target instance and reads the client secret
func newSession() (*session, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	target, err := registry.Resolve(config.Overrides{
		Instance: instanceName,
		BaseURL:  baseURL,
		ClientID: clientID,
	})
	if err != nil {
		return nil, err
	}

	secret, err := config.ReadSecret(target.ClientID)
	if err != nil {
		return nil, err
	}

	client := looker.NewClient(target.BaseURL)
	client.SetTimeout(target.Timeout)

	return &session{target: target, client: client, secret: secret}, nil
}

// login authenticates and records the instance as used
func (s *session) login(ctx context.Context) error {
	if err := s.client.Login(ctx, s.target.ClientID, s.secret); err != nil {
		return err
	}

	if s.target.Name == "" {
		return nil
	}
	registry, err := config.LoadRegistry()
	if err != nil || registry.GetInstance(s.target.Name) == nil {
		return nil
	}
	registry.TouchInstance(s.target.Name)
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to record instance use", zap.Error(err))
	}
	return nil
}

func (s *session) label() string {
	if s.target.Name != "" {
		return s.target.Name
	}
	return s.target.BaseURL
}

// signalContext is cancelled on Ctrl+C or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runConsole launches the interactive console
func runConsole(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	prefs := registry.Preferences

	addr := prefs.BridgeAddr
	if cmd.Flags().Changed("bridge") {
		addr = bridgeAddr
	}

	opts := console.Options{
		API:      s.client,
		Login:    s.login,
		Instance: s.target.Name,
		BaseURL:  s.target.BaseURL,
	}

	if addr != "" {
		b := bridge.New(bridge.Config{
			Addr:      addr,
			Advertise: advertise || prefs.Advertise,
			Instance:  s.target.Name,
			BaseURL:   s.target.BaseURL,
		})
		if err := b.Start(); err != nil {
			return fmt.Errorf("failed to start host bridge: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := b.Shutdown(ctx); err != nil {
				logging.Warn("Bridge shutdown failed", zap.Error(err))
			}
		}()
		opts.Host = b
		opts.Changes = b.Changes()
	}

	p := tea.NewProgram(console.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console error: %w", err)
	}
	return nil
}

// usersCmd lists users
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	Long: `List users of the instance with their login e-mail credential.

Disabled users are listed too; their credentials are read-only.`,
	Example: `  # Detailed listing (default)
  powerpack users

  # One line per user
  powerpack users --format compact

  # JSON output for scripting
  powerpack users --format json`,
	RunE: runUsers,
}

func init() {
	usersCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
	schedulesCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

func runUsers(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}
	if err := s.login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	users, err := s.client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	return printFormatted(cmd, users, looker.FormatUsersCompact(users), looker.FormatUsersDetailed(users))
}

// printFormatted writes v in the selected --format
func printFormatted(cmd *cobra.Command, v any, compact, detailed string) error {
	out := cmd.OutOrStdout()
	switch outputFormat {
	case "compact":
		fmt.Fprint(out, compact)
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "detailed":
		fmt.Fprint(out, detailed)
	default:
		return fmt.Errorf("unknown format %q (use detailed, compact or json)", outputFormat)
	}
	return nil
}

// setEmailCmd sets one user's login e-mail
var setEmailCmd = &cobra.Command{
	Use:   "set-email <user-id> <email>",
	Short: "Set a user's login e-mail",
	Long: `Create or change the e-mail/password credential of a user.

A user without an e-mail credential gets one created; an existing
credential is updated. Disabled users cannot be changed.`,
	Example: `  powerpack set-email 42 jane@example.com`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSetEmail,
}

func runSetEmail(cmd *cobra.Command, args []string) error {
	userID, email := args[0], args[1]

	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Set login e-mail",
		Command: "set-email",
		Params: []ui.Field{
			{Key: "Instance", Value: s.label()},
			{Key: "User", Value: userID},
			{Key: "E-mail", Value: email},
		},
		StepNames: []string{"Authenticate", "Look up user", "Commit e-mail"},
		Hint:      hintFor,
		Output:    cmd.OutOrStdout(),
	})

	return runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
		onStep(1, ui.StepRunning, "")
		if err := s.login(ctx); err != nil {
			onStep(1, ui.StepFailed, err.Error())
			return nil, err
		}
		onStep(1, ui.StepComplete, s.target.BaseURL)

		onStep(2, ui.StepRunning, "")
		user, err := findUser(ctx, s.client, userID)
		if err != nil {
			onStep(2, ui.StepFailed, err.Error())
			return nil, err
		}
		onStep(2, ui.StepComplete, user.Name())

		onStep(3, ui.StepRunning, "")
		field := inlineedit.New(inlineedit.Record{
			ID:       user.ID,
			Value:    user.CredentialEmail(),
			Disabled: user.IsDisabled,
		}, s.client.Updater())
		op := field.Operation()

		field.Change(email)
		if err := field.Commit(ctx); err != nil {
			onStep(3, ui.StepFailed, err.Error())
			return nil, err
		}
		if field.Status() == inlineedit.StatusError {
			onStep(3, ui.StepFailed, "")
			return nil, field.Err()
		}
		onStep(3, ui.StepComplete, string(op))

		previous := user.CredentialEmail()
		if previous == "" {
			previous = "(none)"
		}
		return []ui.Field{
			{Key: "User", Value: fmt.Sprintf("%s (%s)", user.Name(), user.ID)},
			{Key: "Previous", Value: previous},
			{Key: "E-mail", Value: field.Committed()},
			{Key: "Admin", Value: urls.AdminUserURL(s.target.BaseURL, user.ID)},
		}, nil
	})
}

// findUser returns the user with id from the user list
func findUser(ctx context.Context, client *looker.Client, id string) (*looker.User, error) {
	users, err := client.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("user %s not found", id)
}

// hintFor maps an error to troubleshooting tips
func hintFor(err error) []string {
	switch {
	case errors.Is(err, inlineedit.ErrReadOnly):
		return []string{"The user is disabled. Re-enable the user before changing credentials."}
	case errors.Is(err, inlineedit.ErrEmptyValue):
		return []string{"Pass a non-empty e-mail address."}
	default:
		return looker.GetTroubleshootingHint(err)
	}
}

// schedulesCmd lists scheduled plans
var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "List scheduled plans",
	Long:  `List the delivery schedules of all users.`,
	Example: `  powerpack schedules
  powerpack schedules --format compact`,
	RunE: runSchedules,
}

func runSchedules(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}
	if err := s.login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	plans, err := s.client.ListScheduledPlans(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scheduled plans: %w", err)
	}

	return printFormatted(cmd, plans, looker.FormatSchedulesCompact(plans), looker.FormatSchedulesDetailed(plans))
}

// runScheduleCmd runs a scheduled plan once
var runScheduleCmd = &cobra.Command{
	Use:   "run-schedule <plan-id>",
	Short: "Run a scheduled plan once",
	Long: `Trigger an immediate one-off delivery of a scheduled plan.

Recipients receive the delivery straight away, so the command asks for
confirmation unless --yes is given.`,
	Example: `  powerpack run-schedule 17
  powerpack run-schedule 17 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRunSchedule,
}

func init() {
	runScheduleCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runRunSchedule(cmd *cobra.Command, args []string) error {
	planID := args[0]

	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}

	if !assumeYes {
		ok := ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			"Run scheduled plan "+planID+" now?",
			[]string{
				"Every destination of the plan receives a delivery immediately",
				"This cannot be undone",
			},
			"run",
		)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Run scheduled plan",
		Command: "run-schedule",
		Params: []ui.Field{
			{Key: "Instance", Value: s.label()},
			{Key: "Plan", Value: planID},
		},
		StepNames: []string{"Authenticate", "Queue delivery"},
		Hint:      looker.GetTroubleshootingHint,
		Output:    cmd.OutOrStdout(),
	})

	return runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Field, error) {
		onStep(1, ui.StepRunning, "")
		if err := s.login(ctx); err != nil {
			onStep(1, ui.StepFailed, err.Error())
			return nil, err
		}
		onStep(1, ui.StepComplete, s.target.BaseURL)

		onStep(2, ui.StepRunning, "")
		plan, err := s.client.RunScheduledPlanOnce(ctx, planID)
		if err != nil {
			onStep(2, ui.StepFailed, looker.GetShortErrorMessage(err))
			return nil, err
		}
		onStep(2, ui.StepComplete, "")

		return []ui.Field{
			{Key: "Plan", Value: planID},
			{Key: "Run", Value: plan.ID},
			{Key: "History", Value: urls.AdminSchedulesURL(s.target.BaseURL)},
		}, nil
	})
}

// embedURLCmd signs an SSO embed URL
var embedURLCmd = &cobra.Command{
	Use:   "embed-url <target-path>",
	Short: "Sign an SSO embed URL",
	Long: `Create a single-use SSO embed URL for a dashboard, look or explore.

The URL is printed on its own line so it can be piped to other tools.`,
	Example: `  powerpack embed-url /embed/dashboards/7
  powerpack embed-url /embed/looks/3 --session-length 600`,
	Args: cobra.ExactArgs(1),
	RunE: runEmbedURL,
}

func init() {
	embedURLCmd.Flags().IntVar(&sessionLen, "session-length", console.DefaultSessionLength, "Embed session length in seconds")
}

func runEmbedURL(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}
	if err := s.login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	embed, err := s.client.CreateSSOEmbedURL(ctx, looker.EmbedSSOParams{
		TargetURL:     args[0],
		SessionLength: sessionLen,
		ForceLogout:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to sign embed URL: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), embed.URL)
	return nil
}

// scanCmd finds consoles advertising a host bridge
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for consoles advertising a host bridge",
	Long: `Scan the local network for running consoles started with --advertise.

Host shells connect to the WebSocket URL shown for each console.`,
	Example: `  powerpack scan
  powerpack scan --timeout 10`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning for consoles (timeout: %ds)...\n\n", scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	consoles, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(consoles) == 0 {
		fmt.Fprintln(out, "No consoles found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Start the console with --advertise")
		fmt.Fprintln(out, "  - The bridge must listen on a LAN address, not 127.0.0.1")
		fmt.Fprintln(out, "  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Fprintf(out, "Found %d console(s):\n\n", len(consoles))
	for i, c := range consoles {
		fmt.Fprintf(out, "%d. %s\n", i+1, c.Instance)
		fmt.Fprintf(out, "   Host:     %s\n", c.Hostname)
		fmt.Fprintf(out, "   Shell:    %s\n", c.ShellURL())
		if v := c.GetMetadata("base_url"); v != "" {
			fmt.Fprintf(out, "   Instance: %s\n", v)
		}
		if v := c.GetMetadata("version"); v != "" {
			fmt.Fprintf(out, "   Version:  %s\n", v)
		}
		fmt.Fprintln(out)
	}

	return nil
}
