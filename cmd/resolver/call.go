package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-resolver/internal/api"
	"github.com/miradorstack/mirador-resolver/internal/formatter"
)

// sessionMethods maps CLI verbs to argument-less session commands.
var sessionMethods = map[string]string{
	"close":          api.MethodClose,
	"show-consent":   api.MethodShowConsent,
	"toggle-consent": api.MethodToggleConsent,
	"confirm":        api.MethodConfirmAttempt,
	"escalate":       api.MethodEscalate,
	"toggle-logs":    api.MethodToggleIncludeLogs,
	"submit":         api.MethodSubmitTicket,
	"snapshot":       api.MethodGetSnapshot,
}

type callOptions struct {
	addr         string
	timeout      time.Duration
	page         string
	action       string
	errorMessage string
	feature      string
	output       string
}

func newCallCmd(configPath *string) *cobra.Command {
	opts := callOptions{}
	verbs := []string{"open", "record-failure", "clear-failures"}
	for verb := range sessionMethods {
		verbs = append(verbs, verb)
	}
	sort.Strings(verbs)

	cmd := &cobra.Command{
		Use:       "call VERB",
		Short:     "Send one command to a running resolver service",
		Long:      "Send one command to a running resolver service.\n\nVerbs: " + strings.Join(verbs, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: verbs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return callService(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "localhost:50051", "Resolver service address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "Request timeout")
	cmd.Flags().StringVar(&opts.page, "page", "", "Page the failure happened on (open)")
	cmd.Flags().StringVar(&opts.action, "action", "", "Action the user attempted (open)")
	cmd.Flags().StringVar(&opts.errorMessage, "error", "", "Error message shown to the user (open, record-failure)")
	cmd.Flags().StringVar(&opts.feature, "feature", "", "Feature identifier (record-failure, clear-failures)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}

func callService(cmd *cobra.Command, verb string, opts callOptions) error {
	conn, err := grpc.NewClient(opts.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", opts.addr, err)
	}
	defer conn.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, opts.timeout)
	defer cancel()

	client := api.NewResolverClient(conn)
	out := cmd.OutOrStdout()

	switch verb {
	case "record-failure":
		resp, err := client.RecordFailure(ctx, api.ToStructFailureRequest(api.FailureRequest{FeatureID: opts.feature, ErrorMessage: opts.errorMessage}))
		if err != nil {
			return err
		}
		res := api.FromStructFailureResult(resp)
		fmt.Fprintf(out, "%s: %d failure(s)\n", opts.feature, res.Count)
		if res.ShowHelp {
			formatter.DisplayFailurePrompt(out, opts.feature, res.Count, res.LastFailure, time.Now())
		}
		return nil
	case "clear-failures":
		if err := client.ClearFailures(ctx, api.ToStructFailureRequest(api.FailureRequest{FeatureID: opts.feature})); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: failures cleared\n", opts.feature)
		return nil
	}

	var resp *structpb.Struct
	switch method, ok := sessionMethods[verb]; {
	case verb == "open":
		resp, err = client.Open(ctx, api.ToStructOpenRequest(api.OpenRequest{Page: opts.page, Action: opts.action, ErrorMessage: opts.errorMessage}))
	case ok:
		resp, err = client.Command(ctx, method)
	default:
		return fmt.Errorf("unknown verb %q", verb)
	}
	if err != nil {
		return err
	}

	snap, applied, err := api.FromStructSnapshot(resp)
	if err != nil {
		return err
	}
	if !applied && verb != "snapshot" && opts.output == formatter.FormatHuman {
		printFailure(out, fmt.Sprintf("%s had no effect in state %s", verb, snap.State))
	}
	return formatter.DisplaySnapshot(out, snap, opts.output)
}
