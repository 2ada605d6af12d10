package testutil

import (
	"time"

	"guildkeeper/models"
)

// CreateTestPrize creates a test prize with default values
func CreateTestPrize(guildID int64, name string) *models.Prize {
	return &models.Prize{
		GuildID:     guildID,
		Name:        name,
		Description: "A test prize",
		Weight:      10,
	}
}

// CreateTestPrizeWithWeight creates a test prize with a specific draw weight
func CreateTestPrizeWithWeight(guildID int64, name string, weight int) *models.Prize {
	prize := CreateTestPrize(guildID, name)
	prize.Weight = weight
	return prize
}

// CreateTestKey creates a test random-mode key
func CreateTestKey(guildID int64, code string) *models.Key {
	return &models.Key{
		GuildID:   guildID,
		Code:      code,
		Mode:      models.KeyModeRandom,
		CreatedBy: 999001,
	}
}

// CreateTestFixedKey creates a test key bound to a specific prize
func CreateTestFixedKey(guildID int64, code string, prizeID int64) *models.Key {
	key := CreateTestKey(guildID, code)
	key.Mode = models.KeyModeFixed
	key.PrizeID = &prizeID
	return key
}

// CreateTestExpiredKey creates a test key whose expiry has already passed
func CreateTestExpiredKey(guildID int64, code string) *models.Key {
	key := CreateTestKey(guildID, code)
	expired := time.Now().Add(-time.Hour)
	key.ExpiresAt = &expired
	return key
}

// CreateTestTicket creates a test support ticket
func CreateTestTicket(guildID, openerID, channelID int64) *models.Ticket {
	return &models.Ticket{
		GuildID:   guildID,
		OpenerID:  openerID,
		Kind:      models.TicketKindSupport,
		ChannelID: channelID,
	}
}

// CreateTestPurchaseTicket creates a test purchase ticket
func CreateTestPurchaseTicket(guildID, openerID, channelID int64) *models.Ticket {
	ticket := CreateTestTicket(guildID, openerID, channelID)
	ticket.Kind = models.TicketKindPurchase
	return ticket
}

// CreateTestTicketMessage creates a test ticket message entry
func CreateTestTicketMessage(ticketID, authorID int64, content string) *models.TicketMessage {
	return &models.TicketMessage{
		TicketID:   ticketID,
		AuthorID:   authorID,
		AuthorName: "tester",
		Content:    content,
	}
}

// CreateTestGiveaway creates a test giveaway ending in the future
func CreateTestGiveaway(guildID, channelID int64, prize string) *models.Giveaway {
	return &models.Giveaway{
		GuildID:     guildID,
		ChannelID:   channelID,
		Prize:       prize,
		WinnerCount: 1,
		EndsAt:      time.Now().Add(24 * time.Hour),
		CreatedBy:   999001,
	}
}

// CreateTestDueGiveaway creates a test giveaway whose end time has passed
func CreateTestDueGiveaway(guildID, channelID int64, prize string) *models.Giveaway {
	giveaway := CreateTestGiveaway(guildID, channelID, prize)
	giveaway.EndsAt = time.Now().Add(-time.Minute)
	return giveaway
}

// CreateTestBugReport creates a test bug report
func CreateTestBugReport(guildID, reporterID int64, content string) *models.BugReport {
	return &models.BugReport{
		GuildID:    guildID,
		ReporterID: reporterID,
		Content:    content,
	}
}

// CreateTestInfraction creates a test infraction
func CreateTestInfraction(guildID, userID, issuerID int64, reason string) *models.Infraction {
	return &models.Infraction{
		GuildID:  guildID,
		UserID:   userID,
		IssuerID: issuerID,
		Reason:   reason,
	}
}

// CreateTestAntipingTarget creates a test protected target
func CreateTestAntipingTarget(guildID, userID int64) *models.AntipingTarget {
	return &models.AntipingTarget{
		GuildID: guildID,
		UserID:  userID,
		AddedBy: 999001,
	}
}
