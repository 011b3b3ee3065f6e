package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-resolver/internal/config"
	"github.com/miradorstack/mirador-resolver/internal/formatter"
	"github.com/miradorstack/mirador-resolver/internal/utils"
	"github.com/miradorstack/mirador-resolver/internal/workflow"
)

type runOptions struct {
	page         string
	action       string
	errorMessage string
	consent      bool
	escalate     bool
	includeLogs  bool
	submit       bool
	fast         bool
	output       string
}

func newRunCmd(configPath *string) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Walk one failure through the resolver locally",
		Long: `Run the full resolver flow in-process: analysis, consented remediation and
escalation.

Examples:
  # Salesforce OAuth failure with the default pacing
  resolver run

  # A generic failure, skipping the remediation and escalating straight away
  resolver run --page Reports --action "Export report" --error "Export timed out" --consent=false

  # Machine-readable final state
  resolver run --fast -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runWalkthrough(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.page, "page", "Integrations", "Page the failure happened on")
	cmd.Flags().StringVar(&opts.action, "action", "Sync Salesforce integration", "Action the user attempted")
	cmd.Flags().StringVar(&opts.errorMessage, "error", "Unable to authenticate with Salesforce. OAuth token expired.", "Error message shown to the user")
	cmd.Flags().BoolVar(&opts.consent, "consent", true, "Consent to and run the automated remediation")
	cmd.Flags().BoolVar(&opts.escalate, "escalate", true, "Escalate to a support ticket when the resolver cannot fix the issue")
	cmd.Flags().BoolVar(&opts.includeLogs, "include-logs", true, "Attach logs to the escalation ticket")
	cmd.Flags().BoolVar(&opts.submit, "submit", false, "Submit the escalation ticket")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "Skip the simulated delays")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}

func runWalkthrough(ctx context.Context, out io.Writer, cfg *config.Config, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.fast {
		cfg.Workflow.AnalysisDelay = 0
		cfg.Workflow.StepDelay = 0
		cfg.Workflow.FinalizeDelay = 0
	}
	human := opts.output == formatter.FormatHuman

	logger := utils.NewLoggerTo(os.Stderr, cfg.Logging.Level, cfg.Logging.JSON)
	machine, err := buildMachine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		machine.Close()
		machine.Wait()
	}()

	events := make(chan workflow.Event, 64)
	machine.Subscribe(func(ev workflow.Event) { events <- ev })

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	start := func(suffix string) {
		if human {
			s.Suffix = " " + suffix
			s.Start()
		}
	}

	if !machine.Open(opts.page, opts.action, opts.errorMessage) {
		return fmt.Errorf("resolver is already open")
	}
	start("Analyzing the failure...")
	if _, err := waitFor(ctx, events, workflow.StateProposing); err != nil {
		s.Stop()
		return err
	}
	s.Stop()

	snap := machine.Snapshot()
	if human {
		printSuccess(out, "Analysis complete")
		formatter.DisplayAnalysis(out, *snap.Analysis)
	}

	if opts.consent {
		machine.ShowConsent()
		machine.ToggleConsent()
		if !machine.ConfirmAttempt() {
			return fmt.Errorf("remediation could not be started from %s", machine.State())
		}
		if err := followAttempt(ctx, out, events, s, human); err != nil {
			return err
		}
		snap = machine.Snapshot()
		if human {
			if snap.State == workflow.StateResolved {
				printSuccess(out, "Issue resolved")
			} else {
				printFailure(out, snap.Attempt.FailureReason)
			}
		}
	}

	if opts.escalate {
		if machine.State() == workflow.StateAttemptFailed && opts.includeLogs != machine.Snapshot().IncludeLogs {
			machine.ToggleIncludeLogs()
		}
		if machine.Escalate() && opts.submit {
			machine.SubmitTicket()
		}
	}

	return formatter.DisplaySnapshot(out, machine.Snapshot(), opts.output)
}

// followAttempt renders step progress until the attempt finishes.
func followAttempt(ctx context.Context, out io.Writer, events <-chan workflow.Event, s *spinner.Spinner, human bool) error {
	defer s.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			attempt := ev.Snapshot.Attempt
			if attempt == nil {
				continue
			}
			switch ev.To {
			case workflow.StateAttempting:
				if !human {
					continue
				}
				s.Stop()
				if ev.Cursor > 0 {
					fmt.Fprintf(out, "   %s\n", formatter.StepLine(attempt.Steps[ev.Cursor-1]))
				} else {
					color.New(color.FgYellow, color.Bold).Fprintf(out, "%s\n", attempt.Action)
				}
				s.Suffix = " " + attempt.Steps[ev.Cursor].Description
				s.Start()
			case workflow.StateAttemptFailed, workflow.StateResolved:
				if human && len(attempt.Steps) > 0 {
					s.Stop()
					fmt.Fprintf(out, "   %s\n", formatter.StepLine(attempt.Steps[len(attempt.Steps)-1]))
				}
				return nil
			}
		}
	}
}

func waitFor(ctx context.Context, events <-chan workflow.Event, state workflow.State) (workflow.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return workflow.Event{}, ctx.Err()
		case ev := <-events:
			if ev.To == state {
				return ev, nil
			}
		}
	}
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printFailure(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}
