package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sujanms/gharbhada/internal/core/domain"
)

// Sweeper periodically releases rooms whose booking period has elapsed and
// fails purchases abandoned mid-flight. Both passes are idempotent and safe
// to run on any schedule.
type Sweeper struct {
	svc        *BookingService
	interval   time.Duration
	pendingTTL time.Duration
}

func NewSweeper(svc *BookingService, interval, pendingTTL time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, pendingTTL: pendingTTL}
}

func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("availability sweeper started, interval %s", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("availability sweeper stopped")
			return
		case <-ticker.C:
			if n, err := w.ReleaseExpired(ctx); err != nil {
				log.Printf("release pass failed: %v", err)
			} else if n > 0 {
				log.Printf("released %d rooms with elapsed bookings", n)
			}
			if n, err := w.ExpireStalePending(ctx); err != nil {
				log.Printf("stale-pending pass failed: %v", err)
			} else if n > 0 {
				log.Printf("failed %d stale pending purchases", n)
			}
		}
	}
}

// ReleaseExpired flips rooms back to available once the completed purchase
// holding them has passed its end date. Purchase and booking records stay
// completed as the historical record.
func (w *Sweeper) ReleaseExpired(ctx context.Context) (int, error) {
	rooms, err := w.svc.roomRepo.ListUnavailable(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	released := 0

	for i := range rooms {
		room := &rooms[i]

		purchase, err := w.svc.purchaseRepo.FindCompletedByRoom(ctx, room.ID)
		if err != nil {
			if errors.Is(err, domain.ErrPurchaseNotFound) {
				continue
			}
			log.Printf("sweep: lookup purchase for room %s: %v", room.ID, err)
			continue
		}

		if !purchase.Period.EndedBy(now) {
			continue
		}

		if err := w.svc.roomRepo.SetAvailability(ctx, room.ID, true, false); err != nil {
			// Lost to a concurrent flip; the next pass will reconcile.
			if errors.Is(err, domain.ErrStaleAvailability) {
				continue
			}
			log.Printf("sweep: release room %s: %v", room.ID, err)
			continue
		}
		released++
	}

	if released > 0 {
		w.svc.invalidateRoomCache(ctx)
	}
	return released, nil
}

// ExpireStalePending fails purchases stuck in pending or awaiting_approval
// past the configured TTL, typically abandoned gateway redirects or bookings
// the landlord never decided on. Their bookings and pending payments are
// failed with them; the room was never claimed so nothing is released.
func (w *Sweeper) ExpireStalePending(ctx context.Context) (int, error) {
	stale, err := w.svc.purchaseRepo.ListStalePending(ctx, time.Now().Add(-w.pendingTTL))
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		purchase := &stale[i]

		if err := w.svc.purchaseRepo.FailIfPending(ctx, purchase.ID); err != nil {
			// ErrInvalidState means a callback or approval settled it after
			// the stale listing was read; leave it alone.
			if !errors.Is(err, domain.ErrInvalidState) {
				log.Printf("sweep: fail purchase %s: %v", purchase.ID, err)
			}
			continue
		}

		booking, err := w.svc.bookingRepo.GetByPurchaseID(ctx, purchase.ID)
		if err == nil {
			if err := w.svc.bookingRepo.UpdatePaymentStatus(ctx, booking.ID, domain.BookingFailed); err != nil {
				log.Printf("sweep: fail booking %s: %v", booking.ID, err)
			}
		}

		if purchase.PaymentMethod == domain.MethodEsewa {
			if payment, err := w.svc.paymentRepo.GetByTransactionID(ctx, purchase.ID.String()); err == nil && payment.Status == domain.PaymentPending {
				if err := w.svc.paymentRepo.MarkStatus(ctx, payment.ID, domain.PaymentFailed); err != nil {
					log.Printf("sweep: fail payment %s: %v", payment.ID, err)
				}
			}
		}

		expired++
	}
	return expired, nil
}
