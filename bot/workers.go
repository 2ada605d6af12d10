package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartWorkers launches the background scans that drive ticket inactivity
// escalation and giveaway deadlines. Both stop when ctx is cancelled.
func (b *Bot) StartWorkers(ctx context.Context, ticketScanInterval, giveawayScanInterval time.Duration) {
	go b.runTicketScan(ctx, ticketScanInterval)
	go b.runGiveawayScan(ctx, giveawayScanInterval)
}

func (b *Bot) runTicketScan(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("Ticket inactivity scan running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.ticketsFeature.RunInactivityScan(ctx, b.session, now)
		}
	}
}

func (b *Bot) runGiveawayScan(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("Giveaway deadline scan running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.giveawaysFeature.RunDeadlineScan(ctx, b.session, now)
		}
	}
}
