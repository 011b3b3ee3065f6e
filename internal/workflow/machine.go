package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/miradorstack/mirador-resolver/internal/engine"
	"github.com/miradorstack/mirador-resolver/internal/models"
)

// Snapshot is a read-only copy of the machine's state and data.
type Snapshot struct {
	State        State                      `json:"state"`
	Context      *models.UserContext        `json:"context"`
	Analysis     *models.ResolverAnalysis   `json:"analysis"`
	Attempt      *models.RemediationAttempt `json:"attempt"`
	Ticket       *models.SupportTicket      `json:"ticket"`
	StepCursor   int                        `json:"currentStepIndex"`
	IncludeLogs  bool                       `json:"includeLogs"`
	HasConsented bool                       `json:"hasConsented"`
	IsOpen       bool                       `json:"isOpen"`
}

// Event describes one applied transition.
type Event struct {
	Command  Command
	From     State
	To       State
	Cursor   int
	Snapshot Snapshot
}

// Observer is notified of every applied transition, in order. Observers run
// while the machine is locked and must not call back into it.
type Observer func(Event)

// Options tunes timing and pluggable policies. Nil policies fall back to defaults;
// zero delays complete immediately.
type Options struct {
	AnalysisDelay time.Duration
	StepDelay     time.Duration
	FinalizeDelay time.Duration
	IncludeLogs   bool
	Environment   models.Environment

	Delayer  Delayer
	Executor StepExecutor
	Outcome  engine.OutcomePolicy
	IDs      IDGenerator
	Clock    func() time.Time
}

// DefaultOptions mirrors the pacing of the interactive product.
func DefaultOptions() Options {
	return Options{
		AnalysisDelay: 1500 * time.Millisecond,
		StepDelay:     1200 * time.Millisecond,
		FinalizeDelay: 800 * time.Millisecond,
		IncludeLogs:   true,
		Environment:   models.Environment{Browser: "Unknown Browser", OS: "Unknown OS", Version: "2.4.1"},
	}
}

type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Machine is the resolver workflow orchestrator. It owns the live context,
// analysis, attempt and ticket for one session at a time.
type Machine struct {
	logger    *slog.Logger
	analyzer  *engine.AnalysisComposer
	planner   *engine.RemediationPlanner
	escalator *engine.EscalationComposer
	opts      Options

	mu        sync.Mutex
	wg        sync.WaitGroup
	observers []Observer
	session   *session

	state       State
	context     *models.UserContext
	analysis    *models.ResolverAnalysis
	attempt     *models.RemediationAttempt
	ticket      *models.SupportTicket
	cursor      int
	includeLogs bool
	consented   bool
}

// NewMachine constructs a closed Machine.
func NewMachine(
	logger *slog.Logger,
	analyzer *engine.AnalysisComposer,
	planner *engine.RemediationPlanner,
	escalator *engine.EscalationComposer,
	opts Options,
) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	if analyzer == nil {
		analyzer = engine.NewAnalysisComposer(engine.NewKnowledgeMatcher(nil), engine.GenericForceLow)
	}
	if planner == nil {
		planner = engine.NewRemediationPlanner()
	}
	if escalator == nil {
		escalator = engine.NewEscalationComposer()
	}
	if opts.Delayer == nil {
		opts.Delayer = TimerDelayer{}
	}
	if opts.Executor == nil {
		opts.Executor = SimulatedExecutor{Delayer: opts.Delayer, Delay: opts.StepDelay}
	}
	if opts.Outcome == nil {
		opts.Outcome = engine.AlwaysFail{}
	}
	if opts.IDs == nil {
		opts.IDs = UUIDGenerator{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Machine{
		logger:      logger,
		analyzer:    analyzer,
		planner:     planner,
		escalator:   escalator,
		opts:        opts,
		state:       StateClosed,
		includeLogs: opts.IncludeLogs,
	}
}

// Subscribe registers an observer for subsequent transitions.
func (m *Machine) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Snapshot returns a deep copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// State returns the current state tag.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Wait blocks until background analysis and step goroutines have returned.
func (m *Machine) Wait() {
	m.wg.Wait()
}

// Open captures a new context and schedules its analysis. It only takes effect from closed.
func (m *Machine) Open(page, action, errorMessage string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accept(CommandOpen) {
		return false
	}

	m.endSession()
	m.reset()
	captured := models.UserContext{
		Page:         page,
		Action:       action,
		ErrorMessage: errorMessage,
		Timestamp:    m.opts.Clock().UTC(),
		Environment:  m.opts.Environment,
	}
	m.context = &captured
	sess := m.startSession()
	m.transition(CommandOpen, StateAnalyzing)

	m.wg.Add(1)
	go m.runAnalysis(sess, captured)
	return true
}

// Close discards the session from any open state and cancels pending work.
func (m *Machine) Close() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accept(CommandClose) {
		return false
	}
	m.endSession()
	m.reset()
	m.transition(CommandClose, StateClosed)
	return true
}

// ShowConsent plans the remediation so the user can review it before consenting.
func (m *Machine) ShowConsent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accept(CommandShowConsent) || m.context == nil || m.analysis == nil {
		return false
	}
	attempt := m.planner.Plan(*m.context, *m.analysis)
	m.attempt = &attempt
	m.consented = false
	m.transition(CommandShowConsent, StateConfirming)
	return true
}

// ToggleConsent flips the consent checkbox.
func (m *Machine) ToggleConsent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accept(CommandToggleConsent) {
		return false
	}
	m.consented = !m.consented
	m.transition(CommandToggleConsent, StateConfirming)
	return true
}

// ConfirmAttempt starts step execution. It requires consent and a planned attempt.
func (m *Machine) ConfirmAttempt() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accept(CommandConfirmAttempt) || !m.consented || m.attempt == nil {
		return false
	}
	m.cursor = 0
	if len(m.attempt.Steps) > 0 {
		m.attempt.Steps[0].Status = models.StepRunning
	}
	m.transition(CommandConfirmAttempt, StateAttempting)

	m.wg.Add(1)
	go m.runSteps(m.session, len(m.attempt.Steps))
	return true
}

// ToggleIncludeLogs flips whether logs are attached to the escalation ticket.
func (m *Machine) ToggleIncludeLogs() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accept(CommandToggleIncludeLogs) {
		return false
	}
	m.includeLogs = !m.includeLogs
	m.transition(CommandToggleIncludeLogs, StateAttemptFailed)
	return true
}

// Escalate composes the support ticket, with the attempt when one was made.
func (m *Machine) Escalate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accept(CommandEscalate) || m.context == nil || m.analysis == nil {
		return false
	}
	ticket := m.escalator.Compose(*m.context, *m.analysis, m.attempt, m.includeLogs)
	ticket.ID = m.opts.IDs.NewID()
	m.ticket = &ticket
	m.transition(CommandEscalate, StateEscalated)
	return true
}

// SubmitTicket marks the ticket as handed off.
func (m *Machine) SubmitTicket() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accept(CommandSubmitTicket) {
		return false
	}
	m.transition(CommandSubmitTicket, StateSubmitted)
	return true
}

func (m *Machine) runAnalysis(sess *session, captured models.UserContext) {
	defer m.wg.Done()
	if err := m.opts.Delayer.Delay(sess.ctx, m.opts.AnalysisDelay); err != nil {
		return
	}
	analysis := m.analyzer.Analyze(captured)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live(sess) || !accepts(m.state, CommandAnalysisComplete) {
		return
	}
	m.analysis = &analysis
	m.transition(CommandAnalysisComplete, StateProposing)
}

// runSteps executes steps strictly in order. Step i+1 starts only after step
// i's executor returns, and every mutation is dropped once sess is stale.
func (m *Machine) runSteps(sess *session, count int) {
	defer m.wg.Done()

	for i := 0; i < count; i++ {
		m.mu.Lock()
		if !m.live(sess) {
			m.mu.Unlock()
			return
		}
		if i > 0 {
			m.cursor = i
			m.attempt.Steps[i].Status = models.StepRunning
			m.transition(CommandStepComplete, StateAttempting)
		}
		step := m.attempt.Steps[i]
		m.mu.Unlock()

		err := m.opts.Executor.Execute(sess.ctx, step)

		m.mu.Lock()
		if !m.live(sess) {
			m.mu.Unlock()
			return
		}
		if err != nil {
			m.attempt.Steps[i].Status = models.StepFailed
			m.logger.Debug("remediation step failed", slog.String("step", step.ID), slog.Any("error", err))
		} else {
			m.attempt.Steps[i].Status = models.StepCompleted
		}
		m.mu.Unlock()
	}

	if err := m.opts.Delayer.Delay(sess.ctx, m.opts.FinalizeDelay); err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live(sess) {
		return
	}
	outcome, reason := m.opts.Outcome.Resolve(m.attempt.Clone())
	next := StateResolved
	if outcome != models.OutcomeSuccess {
		outcome = models.OutcomeFailed
		next = StateAttemptFailed
	}
	m.attempt.Outcome = outcome
	m.attempt.FailureReason = reason
	m.transition(CommandAttemptFinished, next)
}

func (m *Machine) accept(cmd Command) bool {
	if accepts(m.state, cmd) {
		return true
	}
	m.logger.Debug("resolver command ignored", slog.String("command", string(cmd)), slog.String("state", string(m.state)))
	return false
}

func (m *Machine) transition(cmd Command, to State) {
	from := m.state
	if !allowed(from, cmd, to) {
		m.logger.Error("illegal resolver transition", slog.String("command", string(cmd)), slog.String("from", string(from)), slog.String("to", string(to)))
		return
	}
	m.state = to
	m.logger.Debug("resolver transition",
		slog.String("command", string(cmd)),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.Int("cursor", m.cursor),
	)
	if len(m.observers) == 0 {
		return
	}
	ev := Event{Command: cmd, From: from, To: to, Cursor: m.cursor, Snapshot: m.snapshotLocked()}
	for _, o := range m.observers {
		o(ev)
	}
}

func (m *Machine) startSession() *session {
	ctx, cancel := context.WithCancel(context.Background())
	m.session = &session{ctx: ctx, cancel: cancel}
	return m.session
}

func (m *Machine) endSession() {
	if m.session != nil {
		m.session.cancel()
		m.session = nil
	}
}

// live reports whether sess is still the current, uncancelled session.
func (m *Machine) live(sess *session) bool {
	return sess != nil && m.session == sess && sess.ctx.Err() == nil
}

func (m *Machine) reset() {
	m.context = nil
	m.analysis = nil
	m.attempt = nil
	m.ticket = nil
	m.cursor = 0
	m.consented = false
	m.includeLogs = m.opts.IncludeLogs
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        m.state,
		StepCursor:   m.cursor,
		IncludeLogs:  m.includeLogs,
		HasConsented: m.consented,
		IsOpen:       m.state != StateClosed,
	}
	if m.context != nil {
		c := *m.context
		snap.Context = &c
	}
	if m.analysis != nil {
		a := m.analysis.Clone()
		snap.Analysis = &a
	}
	if m.attempt != nil {
		a := m.attempt.Clone()
		snap.Attempt = &a
	}
	if m.ticket != nil {
		t := m.ticket.Clone()
		snap.Ticket = &t
	}
	return snap
}
