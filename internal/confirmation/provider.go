package confirmation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/chamber-scheduler/internal/schedule"
	"github.com/wolfman30/chamber-scheduler/pkg/logging"
)

// Outcome labels reported to the Observer.
const (
	OutcomeGenerated    = "generated"
	OutcomeUnconfigured = "fallback_unconfigured"
	OutcomeError        = "fallback_error"
)

// ErrEmptyResponse is returned by generators that got a response with no text.
var ErrEmptyResponse = errors.New("confirmation: generator returned no text")

// TextGenerator produces free text from a prompt with a single request.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Observer records how each confirmation was produced.
type Observer interface {
	ObserveConfirmation(outcome string, seconds float64)
}

// Provider returns a confirmation message for a booking. It never fails: when
// no generator is configured, or the one attempt fails, it returns the
// fixed template.
type Provider struct {
	generator TextGenerator
	timeout   time.Duration
	observer  Observer
	logger    *logging.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithTimeout bounds the generation attempt. Zero leaves the caller's context
// as the only deadline.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

// WithObserver attaches an outcome observer.
func WithObserver(o Observer) Option {
	return func(p *Provider) { p.observer = o }
}

// NewProvider creates a provider. A nil generator means "no credential
// configured" and every call returns the template.
func NewProvider(generator TextGenerator, logger *logging.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = logging.Default()
	}
	p := &Provider{generator: generator, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Configured reports whether an external generator will be attempted.
func (p *Provider) Configured() bool {
	return p != nil && p.generator != nil
}

// Message returns the confirmation text for one booking.
func (p *Provider) Message(ctx context.Context, patientName string, day schedule.Day, slotTime, place string) string {
	fallback := FallbackMessage(patientName, day, slotTime, place)
	if !p.Configured() {
		p.observe(OutcomeUnconfigured, 0)
		return fallback
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.generator.Generate(ctx, Prompt(patientName, day, slotTime, place))
	elapsed := time.Since(start).Seconds()
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		p.logger.Warn("confirmation generation failed, using template",
			"error", err,
			"day", day.String(),
			"duration_ms", int64(elapsed*1000),
		)
		p.observe(OutcomeError, elapsed)
		return fallback
	}

	p.observe(OutcomeGenerated, elapsed)
	return strings.TrimSpace(text)
}

func (p *Provider) observe(outcome string, seconds float64) {
	if p.observer != nil {
		p.observer.ObserveConfirmation(outcome, seconds)
	}
}

// FallbackMessage is the fixed confirmation template.
func FallbackMessage(patientName string, day schedule.Day, slotTime, place string) string {
	return fmt.Sprintf("Dear %s, your appointment at %s on %s at %s is confirmed. Please arrive 10 minutes early.",
		patientName, place, day, slotTime)
}

// Prompt builds the generation request for one booking.
func Prompt(patientName string, day schedule.Day, slotTime, place string) string {
	var b strings.Builder
	b.WriteString("Write a polite, friendly appointment confirmation message for a patient.\n")
	fmt.Fprintf(&b, "Patient name: %s\n", patientName)
	fmt.Fprintf(&b, "Appointment day: %s\n", day)
	fmt.Fprintf(&b, "Appointment time: %s\n", slotTime)
	fmt.Fprintf(&b, "Clinic address: %s\n", place)
	fmt.Fprintf(&b, "Keep it short and warm. Begin with \"Dear %s,\". Include every detail above and ask the patient to arrive a few minutes early.", patientName)
	return b.String()
}
