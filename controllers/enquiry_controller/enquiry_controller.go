package enquiry_controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innkeep/enquiry/apperrors"
	"github.com/innkeep/enquiry/config"
	"github.com/innkeep/enquiry/dedup"
	"github.com/innkeep/enquiry/directory"
	"github.com/innkeep/enquiry/forward"
	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/models/booking_models"
	"github.com/innkeep/enquiry/models/property_models"
	"github.com/innkeep/enquiry/notify"
	"github.com/innkeep/enquiry/quota"
	"github.com/innkeep/enquiry/ratelimit"
	"github.com/innkeep/enquiry/validator"
)

// EnquiryController sequences the intake pipeline for POST /bookings:
// validate, tenant lookup, quota evaluation, dedup, rate limit, enrichment,
// signed forward to the durable sink, then fire-and-forget notifications.
type EnquiryController struct {
	Cfg        config.Config
	Directory  *directory.Directory
	Guard      *dedup.Guard
	Limiter    *ratelimit.Limiter
	Forwarder  *forward.Forwarder
	Dispatcher *notify.Dispatcher
}

// NewEnquiryController creates a new instance of EnquiryController.
func NewEnquiryController(cfg config.Config, dir *directory.Directory, guard *dedup.Guard, limiter *ratelimit.Limiter, fwd *forward.Forwarder, dispatcher *notify.Dispatcher) *EnquiryController {
	return &EnquiryController{
		Cfg:        cfg,
		Directory:  dir,
		Guard:      guard,
		Limiter:    limiter,
		Forwarder:  fwd,
		Dispatcher: dispatcher,
	}
}

// fail writes a taxonomy error plus any extra user-facing fields.
func fail(c *gin.Context, e *apperrors.Error, extra gin.H) {
	body := gin.H{"success": false, "message": e.Message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(e.Status(), body)
}

// Submit handles POST /bookings.
func (ec *EnquiryController) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req booking_models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.New(apperrors.KindValidation, "invalid request body"), nil)
		return
	}

	// Validation happens before any side effect.
	if ferr := validator.Validate(&req); ferr != nil {
		fail(c, apperrors.New(apperrors.KindValidation, ferr.Reason), gin.H{"field": ferr.Field})
		return
	}

	cfg, err := ec.Directory.Get(ctx, req.Slug)
	if err != nil {
		if err == directory.ErrNotFound {
			fail(c, apperrors.New(apperrors.KindNotFound, "property not found"), nil)
			return
		}
		logger.ErrorLogger.Errorf("Property directory lookup failed for %q: %v", req.Slug, err)
		fail(c, apperrors.AsError(err), nil)
		return
	}

	if cfg.Status != property_models.StatusActive {
		fail(c, apperrors.New(apperrors.KindUnavailable, "this property is not accepting bookings right now"), nil)
		return
	}

	// Deliberate scope boundary: paid booking flows are handled elsewhere.
	if cfg.Payment.Enabled {
		fail(c, apperrors.New(apperrors.KindNotImplemented,
			"online payment bookings are not available here, please contact the property directly"),
			gin.H{"contact": cfg.ContactFallback()})
		return
	}

	// Lazy monthly quota reset: the first request in a new month zeroes the
	// usage counters and persists the new marker before evaluation.
	now := time.Now().UTC()
	if quota.ResetIfNewMonth(cfg, now) {
		if err := ec.Directory.Save(ctx, cfg); err != nil {
			logger.ErrorLogger.Errorf("Failed to persist quota reset for %q: %v", cfg.Slug, err)
		}
	}
	eval := quota.Evaluate(cfg, now)

	fingerprint := dedup.Fingerprint(req.Slug, req.Email, req.Phone, req.CheckIn)
	if ec.Guard.Seen(ctx, fingerprint) {
		fail(c, apperrors.New(apperrors.KindConflict,
			"we already received this enquiry, the property will be in touch soon"), nil)
		return
	}

	ceiling := cfg.RateCeiling
	if ceiling <= 0 {
		ceiling = ec.Cfg.DefaultRateCeiling
	}
	if ec.Limiter.IsLimited(ctx, req.Slug, ceiling) {
		fail(c, apperrors.New(apperrors.KindThrottled,
			"this property is receiving too many enquiries right now, please try again later"),
			gin.H{"quota": eval.Snapshot, "upgrade_hint": eval.UpgradeHint})
		return
	}

	enriched, err := booking_models.NewEnrichedBooking(&req, cfg, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		logger.ErrorLogger.Errorf("Enrichment failed for %q: %v", req.Slug, err)
		fail(c, apperrors.AsError(err), nil)
		return
	}

	if err := ec.Forwarder.Forward(ctx, enriched); err != nil {
		// The booking did not complete: no dedup marker, no rate increment.
		logger.ErrorLogger.Errorf("Forward failed for booking %s: %v", enriched.BookingID, err)
		fail(c, apperrors.Wrap(apperrors.KindTransport,
			"we could not record your enquiry, please try again later or contact the property directly", err),
			gin.H{"contact": cfg.ContactFallback()})
		return
	}

	// Booking completed: mark shared state, account quota usage, notify.
	ec.Guard.Reserve(ctx, fingerprint)
	ec.Limiter.Increment(ctx, req.Slug)

	set := notify.BuildInstructions(enriched, cfg, eval)
	ec.accountQuota(c, cfg, set)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"booking_id":   enriched.BookingID,
		"property":     cfg.DisplayName,
		"message":      "your enquiry has been sent to the property",
		"quota":        eval.Snapshot,
		"upgrade_hint": eval.UpgradeHint,
	})

	// Dispatch starts only after the response has been written; its
	// outcome is invisible to the caller either way.
	go ec.Dispatcher.Dispatch(set)
}

// accountQuota bumps the usage counter of every metered channel the set
// will touch and persists the config. Plain read-modify-write: concurrent
// bookings may over- or under-count slightly, accepted because quota only
// governs notification cost.
func (ec *EnquiryController) accountQuota(c *gin.Context, cfg *property_models.PropertyConfig, set *notify.InstructionSet) {
	touched := false
	for _, ch := range set.Channels() {
		if q, ok := cfg.Quotas[ch]; ok {
			q.Used++
			touched = true
		}
	}
	if !touched {
		return
	}
	if err := ec.Directory.Save(c.Request.Context(), cfg); err != nil {
		logger.ErrorLogger.Errorf("Failed to persist quota usage for %q: %v", cfg.Slug, err)
	}
}
