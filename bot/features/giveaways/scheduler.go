package giveaways

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// RunDeadlineScan ends every giveaway whose deadline has passed and announces
// the winners. Called periodically by the background worker.
func (f *Feature) RunDeadlineScan(ctx context.Context, s *discordgo.Session, now time.Time) {
	results, err := f.giveawayService.EndDue(ctx, now)
	if err != nil {
		log.Errorf("Error ending due giveaways: %v", err)
		return
	}

	for _, result := range results {
		f.AnnounceResult(s, result)
	}
}
