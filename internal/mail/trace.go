package mail

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/asheshgoplani/folio/internal/mail"

type tracedMailer struct {
	next     Mailer
	provider string
	tracer   trace.Tracer
}

// Traced wraps m so every Send runs in a "mail.send" span. A nil tp uses the
// global provider.
func Traced(m Mailer, provider string, tp trace.TracerProvider) Mailer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &tracedMailer{next: m, provider: provider, tracer: tp.Tracer(tracerName)}
}

func (t *tracedMailer) Send(ctx context.Context, req ContactRequest) error {
	ctx, span := t.tracer.Start(ctx, "mail.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("mail.provider", t.provider)))
	defer span.End()

	err := t.next.Send(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errorKind(err))
	}
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrDelivery):
		return "delivery"
	}
	return "unexpected"
}
