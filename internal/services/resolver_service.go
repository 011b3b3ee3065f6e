package services

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-resolver/internal/api"
	"github.com/miradorstack/mirador-resolver/internal/metrics"
	"github.com/miradorstack/mirador-resolver/internal/tracker"
	"github.com/miradorstack/mirador-resolver/internal/workflow"
)

// ResolverService implements the gRPC Resolver service over one workflow machine.
type ResolverService struct {
	api.UnimplementedResolverServer

	logger   *slog.Logger
	machine  *workflow.Machine
	failures *tracker.FailureTracker
}

// NewResolverService constructs the resolver service facade and subscribes it
// to machine transitions for metrics and audit logging.
func NewResolverService(logger *slog.Logger, machine *workflow.Machine, failures *tracker.FailureTracker) *ResolverService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ResolverService{
		logger:   logger,
		machine:  machine,
		failures: failures,
	}
	if machine != nil {
		machine.Subscribe(s.observe)
	}
	return s
}

func (s *ResolverService) observe(ev workflow.Event) {
	metrics.ObserveTransition(string(ev.From), string(ev.To))

	switch ev.Command {
	case workflow.CommandAnalysisComplete:
		if ev.Snapshot.Analysis != nil {
			metrics.ObserveAnalysis(string(ev.Snapshot.Analysis.Confidence.Level))
		}
	case workflow.CommandEscalate:
		if ticket := ev.Snapshot.Ticket; ticket != nil {
			metrics.ObserveTicket(ticket.AttemptedRemediation != nil)
			s.logger.Info("escalation ticket composed",
				slog.String("ticket_id", ticket.ID),
				slog.Bool("attempted", ticket.AttemptedRemediation != nil),
				slog.Int("logs", len(ticket.Logs)),
			)
		}
	case workflow.CommandSubmitTicket:
		if ticket := ev.Snapshot.Ticket; ticket != nil {
			s.logger.Info("escalation ticket submitted", slog.String("ticket_id", ticket.ID))
		}
	}
}

// Open starts a resolver session for the reported failure.
func (s *ResolverService) Open(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	open, err := api.FromStructOpenRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.Debug("Open called", slog.String("page", open.Page), slog.String("action", open.Action))
	return s.apply(string(workflow.CommandOpen), func(m *workflow.Machine) bool {
		return m.Open(open.Page, open.Action, open.ErrorMessage)
	})
}

// Close discards the current session.
func (s *ResolverService) Close(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.apply(string(workflow.CommandClose), (*workflow.Machine).Close)
}

// ShowConsent plans the remediation for review.
func (s *ResolverService) ShowConsent(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.apply(string(workflow.CommandShowConsent), (*workflow.Machine).ShowConsent)
}

// ToggleConsent flips the consent checkbox.
func (s *ResolverService) ToggleConsent(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.apply(string(workflow.CommandToggleConsent), (*workflow.Machine).ToggleConsent)
}

// ConfirmAttempt starts the remediation once consent is given.
func (s *ResolverService) ConfirmAttempt(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.apply(string(workflow.CommandConfirmAttempt), (*workflow.Machine).ConfirmAttempt)
}

// Escalate composes the support ticket.
func (s *ResolverService) Escalate(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.apply(string(workflow.CommandEscalate), (*workflow.Machine).Escalate)
}

// ToggleIncludeLogs flips whether logs go on the ticket.
func (s *ResolverService) ToggleIncludeLogs(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.apply(string(workflow.CommandToggleIncludeLogs), (*workflow.Machine).ToggleIncludeLogs)
}

// SubmitTicket hands the ticket off.
func (s *ResolverService) SubmitTicket(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.apply(string(workflow.CommandSubmitTicket), (*workflow.Machine).SubmitTicket)
}

// GetSnapshot returns the current state without changing it.
func (s *ResolverService) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.machine == nil {
		return nil, status.Error(codes.FailedPrecondition, "resolver machine not configured")
	}
	return s.encode(s.machine.Snapshot(), false)
}

// RecordFailure counts a failed interaction and reports whether to offer help.
func (s *ResolverService) RecordFailure(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	if s.failures == nil {
		return nil, status.Error(codes.FailedPrecondition, "failure tracker not configured")
	}
	failure, err := api.FromStructFailureRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	showHelp := s.failures.RecordFailure(failure.FeatureID, failure.ErrorMessage)
	rec, _ := s.failures.Get(failure.FeatureID)
	if showHelp {
		metrics.ObserveHelpPrompt()
		s.logger.Info("failure threshold reached", slog.String("feature_id", failure.FeatureID), slog.Int("count", rec.Count))
	}
	return api.ToStructFailureResult(api.FailureResult{
		Count:        rec.Count,
		ShowHelp:     showHelp,
		ErrorMessage: rec.ErrorMessage,
		LastFailure:  rec.LastFailure,
	}), nil
}

// ClearFailures forgets the failure history of a feature.
func (s *ResolverService) ClearFailures(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	if s.failures == nil {
		return nil, status.Error(codes.FailedPrecondition, "failure tracker not configured")
	}
	failure, err := api.FromStructFailureRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.failures.Clear(failure.FeatureID)
	return &emptypb.Empty{}, nil
}

func (s *ResolverService) apply(command string, fn func(*workflow.Machine) bool) (*structpb.Struct, error) {
	if s.machine == nil {
		return nil, status.Error(codes.FailedPrecondition, "resolver machine not configured")
	}
	start := time.Now()
	applied := fn(s.machine)
	snap := s.machine.Snapshot()
	metrics.ObserveCommand(command, time.Since(start))
	if !applied {
		s.logger.Debug("command had no effect", slog.String("command", command), slog.String("state", string(snap.State)))
	}
	return s.encode(snap, applied)
}

func (s *ResolverService) encode(snap workflow.Snapshot, applied bool) (*structpb.Struct, error) {
	out, err := api.ToStructSnapshot(snap, applied)
	if err != nil {
		s.logger.Error("snapshot encoding failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to encode snapshot")
	}
	return out, nil
}
