package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
	"carrental-backend/internal/guard"
	"carrental-backend/internal/lifecycle"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/observability"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/storage"
	"carrental-backend/internal/utils"
)

var evidenceContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type bookingService struct {
	bookingRepo    repository.BookingRepository
	historyRepo    repository.HistoryRepository
	settlementRepo repository.SettlementRepository
	resolver       *lifecycle.Resolver
	guard          guard.Guard
	publisher      events.Publisher
	notifier       NotificationService
	evidence       storage.EvidenceStore
	evidenceTTL    time.Duration
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	historyRepo repository.HistoryRepository,
	settlementRepo repository.SettlementRepository,
	resolver *lifecycle.Resolver,
	submitGuard guard.Guard,
	publisher events.Publisher,
	notifier NotificationService,
	evidence storage.EvidenceStore,
	evidenceTTL time.Duration,
) BookingService {
	if evidenceTTL <= 0 {
		evidenceTTL = 15 * time.Minute
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		historyRepo:    historyRepo,
		settlementRepo: settlementRepo,
		resolver:       resolver,
		guard:          submitGuard,
		publisher:      publisher,
		notifier:       notifier,
		evidence:       evidence,
		evidenceTTL:    evidenceTTL,
	}
}

// loadForViewer fetches the booking and resolves the caller's role on it.
func (s *bookingService) loadForViewer(ctx context.Context, userID int32, bookingNumber string) (*domain.Booking, domain.Viewer, error) {
	b, err := s.bookingRepo.GetByNumber(ctx, bookingNumber)
	if err != nil {
		return nil, domain.Viewer{}, err
	}
	role := b.ViewerRole(userID)
	if !role.Valid() {
		return nil, domain.Viewer{}, fmt.Errorf("%w: user %d on %s", domain.ErrForbidden, userID, bookingNumber)
	}
	return b, domain.Viewer{Role: role, ID: userID}, nil
}

func (s *bookingService) GetBookingDetail(ctx context.Context, userID int32, bookingNumber string) (*domain.BookingDetail, error) {
	logger.EnterMethod("bookingService.GetBookingDetail", "userID", userID, "bookingNumber", bookingNumber)

	b, viewer, err := s.loadForViewer(ctx, userID, bookingNumber)
	if err != nil {
		logger.ExitMethodWithError("bookingService.GetBookingDetail", err)
		return nil, err
	}

	entries, err := s.historyRepo.ListByBooking(ctx, bookingNumber)
	if err != nil {
		logger.ExitMethodWithError("bookingService.GetBookingDetail", err, "reason", "load history")
		return nil, err
	}
	if err := domain.VerifyHistoryHead(b.Status, entries); err != nil {
		logger.WithBooking(bookingNumber).Warn("History head does not match booking status", "error", err)
	}

	history := domain.SortHistory(entries)
	for i := range history {
		history[i].PictureURL = s.downloadURL(ctx, history[i].PictureURL)
	}

	detail := &domain.BookingDetail{
		Booking:    b,
		History:    history,
		ViewerRole: viewer.Role,
		Actions:    s.resolver.Evaluate(b, viewer),
	}
	logger.ExitMethod("bookingService.GetBookingDetail", "status", b.Status, "entries", len(history), "actions", len(detail.Actions))
	return detail, nil
}

// downloadURL turns a stored evidence key into a short-lived link. Anything
// that is not a resolvable key is passed through untouched.
func (s *bookingService) downloadURL(ctx context.Context, key string) string {
	if key == "" || s.evidence == nil || strings.Contains(key, "://") {
		return key
	}
	u, err := s.evidence.GeneratePresignedDownloadURL(ctx, key, s.evidenceTTL)
	if err != nil {
		logger.Debug("Evidence key not resolvable", "key", key, "error", err)
		return key
	}
	return u
}

func (s *bookingService) ListAvailableActions(ctx context.Context, userID int32, bookingNumber string) ([]domain.ActionState, error) {
	b, viewer, err := s.loadForViewer(ctx, userID, bookingNumber)
	if err != nil {
		return nil, err
	}
	return s.resolver.Evaluate(b, viewer), nil
}

func (s *bookingService) SubmitAction(ctx context.Context, userID int32, bookingNumber string, key domain.ActionKey, in domain.ActionInput) (result *domain.ActionResult, err error) {
	logger.EnterMethod("bookingService.SubmitAction", "userID", userID, "bookingNumber", bookingNumber, "action", key)
	logCtx := logger.ContextWithBooking(ctx, bookingNumber, string(key))
	start := time.Now()
	outcome := observability.OutcomeFailed
	defer func() {
		observability.ActionsTotal.WithLabelValues(string(key), outcome).Inc()
		observability.ActionDuration.WithLabelValues(string(key)).Observe(time.Since(start).Seconds())
		if err != nil {
			logger.ExitMethodWithError("bookingService.SubmitAction", err, "bookingNumber", bookingNumber, "action", key, "outcome", outcome)
		} else {
			logger.ExitMethod("bookingService.SubmitAction", "bookingNumber", bookingNumber, "status", result.Status, "outcome", outcome)
		}
	}()

	d, ok := lifecycle.Lookup(key)
	if !ok {
		outcome = observability.OutcomeRejected
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAction, key)
	}
	if err := validateInput(d, in); err != nil {
		outcome = observability.OutcomeRejected
		return nil, err
	}

	lease, err := s.guard.Acquire(ctx, guard.Key(bookingNumber, key))
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionInFlight) {
			outcome = observability.OutcomeInFlight
		}
		return nil, err
	}
	defer func() {
		if relErr := lease.Release(context.WithoutCancel(ctx)); relErr != nil {
			logger.WarnContext(logCtx, "Failed to release submission lock", "error", relErr)
		}
	}()

	b, viewer, err := s.loadForViewer(ctx, userID, bookingNumber)
	if err != nil {
		outcome = observability.OutcomeRejected
		return nil, err
	}

	entries, err := s.historyRepo.ListByBooking(ctx, bookingNumber)
	if err != nil {
		return nil, err
	}
	if replayed(d, viewer, b, entries) {
		outcome = observability.OutcomeReplayed
		last, _ := domain.LastEntry(entries)
		return &domain.ActionResult{BookingNumber: bookingNumber, Status: b.Status, Entry: &last, Replayed: true}, nil
	}

	if _, err := s.resolver.Authorize(b, viewer, key); err != nil {
		outcome = observability.OutcomeStale
		if errors.Is(err, domain.ErrActionDisabled) {
			outcome = observability.OutcomeRejected
		}
		return nil, err
	}

	if d.RequiresEvidence {
		if err := s.checkEvidence(ctx, in.EvidenceURL); err != nil {
			outcome = observability.OutcomeRejected
			return nil, err
		}
	}

	t := domain.Transition{
		BookingNumber:   bookingNumber,
		From:            b.Status,
		To:              d.Next,
		Action:          key,
		ActorID:         userID,
		Note:            in.Note,
		PictureURL:      in.EvidenceURL,
		ChangedAt:       s.resolver.Now().UTC(),
		MarkDepositPaid: key == domain.ActionOwnerConfirmDeposit,
	}
	if d.RequiresCharge {
		charge := in.Charge()
		t.ExtraChargesCents = &charge
	}

	entry, err := s.bookingRepo.ApplyTransition(ctx, t)
	if err != nil {
		if domain.IsStale(err) {
			outcome = observability.OutcomeStale
		}
		return nil, err
	}
	outcome = observability.OutcomeApplied

	s.afterCommit(ctx, b, viewer.Role, t)

	return &domain.ActionResult{BookingNumber: bookingNumber, Status: t.To, Entry: entry}, nil
}

// validateInput checks the form values before anything is loaded.
func validateInput(d lifecycle.Descriptor, in domain.ActionInput) error {
	if in.ChargeCents != nil && *in.ChargeCents < 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidCharge, *in.ChargeCents)
	}
	if d.RequiresEvidence && in.EvidenceURL == "" {
		return fmt.Errorf("%w: %s", domain.ErrEvidenceRequired, d.Key)
	}
	return nil
}

// replayed reports whether this exact action already produced the booking's
// current head, which makes a repeated submission a no-op.
func replayed(d lifecycle.Descriptor, viewer domain.Viewer, b *domain.Booking, entries []domain.StatusHistoryEntry) bool {
	if d.Role != viewer.Role {
		return false
	}
	last, ok := domain.LastEntry(entries)
	return ok && last.ActionKey == d.Key && last.NewStatus == b.Status && b.Status == d.Next
}

func (s *bookingService) checkEvidence(ctx context.Context, key string) error {
	if s.evidence == nil {
		return nil
	}
	exists, _, err := s.evidence.FileExists(ctx, key)
	if errors.Is(err, storage.ErrInvalidKey) {
		return fmt.Errorf("%w: %s", domain.ErrEvidenceNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("check evidence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrEvidenceNotFound, key)
	}
	return nil
}

// afterCommit emits the invalidation signal and notifies the counterparty.
// Failures are logged; the transition itself already happened.
func (s *bookingService) afterCommit(ctx context.Context, b *domain.Booking, actorRole domain.Role, t domain.Transition) {
	ctx = context.WithoutCancel(ctx)
	logCtx := logger.ContextWithBooking(ctx, t.BookingNumber, string(t.Action))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewInvalidation(t)); err != nil {
			logger.WarnContext(logCtx, "Invalidation not fully delivered", "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyTransition(ctx, b, actorRole, t); err != nil {
			logger.WarnContext(logCtx, "Counterparty notification failed", "error", err)
		}
	}
}

func (s *bookingService) GetSettlement(ctx context.Context, userID int32, bookingNumber string) (*domain.SettlementSnapshot, error) {
	logger.EnterMethod("bookingService.GetSettlement", "userID", userID, "bookingNumber", bookingNumber)

	if _, _, err := s.loadForViewer(ctx, userID, bookingNumber); err != nil {
		logger.ExitMethodWithError("bookingService.GetSettlement", err)
		return nil, err
	}
	in, err := s.settlementRepo.GetInputs(ctx, bookingNumber)
	if err != nil {
		logger.ExitMethodWithError("bookingService.GetSettlement", err, "reason", "load inputs")
		return nil, err
	}

	snap := utils.ComputeSettlement(*in)
	observability.SettlementsComputed.Inc()

	logger.ExitMethod("bookingService.GetSettlement",
		"total", utils.FormatCents(snap.TotalCalculatedCents),
		"remaining", utils.FormatCents(snap.RemainingChargedCents),
		"refund", utils.FormatCents(snap.RefundToRenterCents))
	return &snap, nil
}

func (s *bookingService) RequestEvidenceUpload(ctx context.Context, userID int32, bookingNumber, filename, contentType string) (*domain.EvidenceUpload, error) {
	logger.EnterMethod("bookingService.RequestEvidenceUpload", "userID", userID, "bookingNumber", bookingNumber, "contentType", contentType)

	if !evidenceContentTypes[contentType] {
		err := fmt.Errorf("%w: %q", domain.ErrUnsupportedMedia, contentType)
		logger.ExitMethodWithError("bookingService.RequestEvidenceUpload", err)
		return nil, err
	}
	if s.evidence == nil {
		return nil, errors.New("evidence storage is not configured")
	}
	b, _, err := s.loadForViewer(ctx, userID, bookingNumber)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestEvidenceUpload", err)
		return nil, err
	}
	if b.Status.IsTerminal() {
		err := fmt.Errorf("%w: %s is %s", domain.ErrActionNotPermitted, bookingNumber, b.Status)
		logger.ExitMethodWithError("bookingService.RequestEvidenceUpload", err)
		return nil, err
	}

	key := storage.EvidenceKey(bookingNumber, filename)
	uploadURL, err := s.evidence.GeneratePresignedUploadURL(ctx, key, contentType, s.evidenceTTL)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestEvidenceUpload", err, "reason", "presign upload")
		return nil, err
	}

	logger.ExitMethod("bookingService.RequestEvidenceUpload", "key", key)
	return &domain.EvidenceUpload{
		Key:       key,
		UploadURL: uploadURL,
		ExpiresAt: s.resolver.Now().Add(s.evidenceTTL),
	}, nil
}
