package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PortalMetrics counts business events of the course portal
type PortalMetrics struct {
	signups          metric.Int64Counter
	logins           metric.Int64Counter
	commentsPosted   metric.Int64Counter
	ratingsSubmitted metric.Int64Counter
	uploads          metric.Int64Counter
	resourcesDeleted metric.Int64Counter
}

func NewPortalMetrics(meter metric.Meter) (*PortalMetrics, error) {
	pm := &PortalMetrics{}

	var err error

	pm.signups, err = meter.Int64Counter(
		"portal.users.signed_up",
		metric.WithDescription("Total number of user signups"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	pm.logins, err = meter.Int64Counter(
		"portal.users.logins",
		metric.WithDescription("Login attempts by outcome"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	pm.commentsPosted, err = meter.Int64Counter(
		"portal.comments.posted",
		metric.WithDescription("Total number of comments posted"),
		metric.WithUnit("{comment}"),
	)
	if err != nil {
		return nil, err
	}

	pm.ratingsSubmitted, err = meter.Int64Counter(
		"portal.ratings.submitted",
		metric.WithDescription("Total number of course ratings submitted"),
		metric.WithUnit("{rating}"),
	)
	if err != nil {
		return nil, err
	}

	pm.uploads, err = meter.Int64Counter(
		"portal.uploads.stored",
		metric.WithDescription("Uploaded images and files stored, by family"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}

	pm.resourcesDeleted, err = meter.Int64Counter(
		"portal.resources.deleted",
		metric.WithDescription("Course resources deleted, by family"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

func (pm *PortalMetrics) RecordSignup(ctx context.Context) {
	if pm != nil && pm.signups != nil {
		pm.signups.Add(ctx, 1)
	}
}

func (pm *PortalMetrics) RecordLogin(ctx context.Context, success bool) {
	if pm != nil && pm.logins != nil {
		pm.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

func (pm *PortalMetrics) RecordCommentPosted(ctx context.Context) {
	if pm != nil && pm.commentsPosted != nil {
		pm.commentsPosted.Add(ctx, 1)
	}
}

func (pm *PortalMetrics) RecordRatingSubmitted(ctx context.Context, value int) {
	if pm != nil && pm.ratingsSubmitted != nil {
		pm.ratingsSubmitted.Add(ctx, 1, metric.WithAttributes(attribute.Int("rating", value)))
	}
}

func (pm *PortalMetrics) RecordUpload(ctx context.Context, family string) {
	if pm != nil && pm.uploads != nil {
		pm.uploads.Add(ctx, 1, metric.WithAttributes(attribute.String("family", family)))
	}
}

func (pm *PortalMetrics) RecordResourceDeleted(ctx context.Context, family string) {
	if pm != nil && pm.resourcesDeleted != nil {
		pm.resourcesDeleted.Add(ctx, 1, metric.WithAttributes(attribute.String("family", family)))
	}
}
