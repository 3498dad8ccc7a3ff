// Command sync pulls fresh data from HubSpot and LiveChat, normalizes it and
// writes the durable tiers the dashboard reads from: Firestore, optionally the
// Google Sheets export, and the local processed snapshots. Meant to run on a
// schedule outside the serving process.
package main

import (
	"context"
	"flag"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/support-insights/backend/internal/config"
	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/normalize"
	"github.com/support-insights/backend/internal/refdata"
	"github.com/support-insights/backend/internal/source"
)

func main() {
	weeks := flag.Int("weeks", 12, "how many weeks back to pull")
	exportSheets := flag.Bool("sheets", false, "also export snapshots to the Google Sheet")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "support-insights-sync").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	bundle := refdata.DefaultBundle()
	if cfg.ScheduleFile != "" {
		if schedule, err := refdata.LoadSchedule(cfg.ScheduleFile); err == nil {
			bundle.Schedule = schedule
		} else {
			logger.Warn().Err(err).Msg("schedule not loaded")
		}
	}

	now := time.Now().UTC()
	dr := models.DateRange{Start: now.AddDate(0, 0, -7**weeks), End: now}
	logger.Info().Time("from", dr.Start).Time("to", dr.End).Msg("sync window")

	tickets := syncTickets(ctx, cfg, bundle, dr, logger)
	chats := syncChats(ctx, cfg, bundle, dr, logger)

	ticketRows := make([]source.Row, 0, len(tickets))
	for _, t := range tickets {
		ticketRows = append(ticketRows, normalize.TicketSnapshotRow(t))
	}
	chatRows := make([]source.Row, 0, len(chats))
	for _, c := range chats {
		chatRows = append(chatRows, normalize.ChatSnapshotRow(c))
	}

	writeSnapshots(cfg, ticketRows, chatRows, logger)

	if cfg.FirestoreProjectID != "" {
		store, err := source.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.GoogleCredentials)
		if err != nil {
			logger.Fatal().Err(err).Msg("firestore init failed")
		}
		defer store.Close()

		if n, err := store.Save(ctx, models.DomainTickets, ticketRows); err != nil {
			logger.Error().Err(err).Msg("firestore ticket write failed")
		} else {
			logger.Info().Int("documents", n).Msg("tickets mirrored to firestore")
		}
		if n, err := store.Save(ctx, models.DomainChats, chatRows); err != nil {
			logger.Error().Err(err).Msg("firestore chat write failed")
		} else {
			logger.Info().Int("documents", n).Msg("chats mirrored to firestore")
		}
	}

	if *exportSheets && cfg.SheetsSpreadsheet != "" {
		sheets, err := source.NewSheetsSource(ctx, cfg.SheetsSpreadsheet, cfg.GoogleCredentials)
		if err != nil {
			logger.Fatal().Err(err).Msg("sheets init failed")
		}
		if err := sheets.Export(ctx, models.DomainTickets, normalize.TicketSnapshotHeaders, ticketRows); err != nil {
			logger.Error().Err(err).Msg("sheet ticket export failed")
		}
		if err := sheets.Export(ctx, models.DomainChats, normalize.ChatSnapshotHeaders, chatRows); err != nil {
			logger.Error().Err(err).Msg("sheet chat export failed")
		}
	}

	logger.Info().Int("tickets", len(tickets)).Int("chats", len(chats)).Msg("sync finished")
}

func syncTickets(ctx context.Context, cfg config.Config, bundle refdata.Bundle, dr models.DateRange, logger zerolog.Logger) []models.Ticket {
	if cfg.HubSpotAPIKey == "" {
		logger.Warn().Msg("HUBSPOT_API_KEY not set, skipping tickets")
		return nil
	}
	client := source.HubSpotClient{BaseURL: cfg.HubSpotBaseURL, APIKey: cfg.HubSpotAPIKey}

	owners, err := client.FetchOwners(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("owner lookup failed")
		return nil
	}
	rows, err := client.FetchTickets(ctx, dr)
	if err != nil {
		logger.Error().Err(err).Msg("ticket fetch failed")
		return nil
	}
	// The API carries owner IDs; the normalizer works on names.
	for _, row := range rows {
		if name, ok := owners[row.Field("hubspot_owner_id")]; ok {
			row.Set("ticket owner", name)
		}
	}

	if live, err := client.FetchPipelines(ctx); err == nil {
		for id, label := range live {
			if known := bundle.Pipelines.Resolve(id); known == id {
				logger.Warn().Str("id", id).Str("label", label).Msg("pipeline missing from embedded map")
			}
		}
	}

	tickets, report := normalize.Tickets(rows, bundle)
	logger.Info().
		Int("input", report.Input).
		Int("kept", report.Kept).
		Int("dropped_managers", report.DroppedManagers).
		Int("dropped_unmapped", report.DroppedUnmapped).
		Int("dropped_spam", report.DroppedSpam).
		Int("duplicates", report.Duplicates).
		Msg("tickets normalized")
	return tickets
}

func syncChats(ctx context.Context, cfg config.Config, bundle refdata.Bundle, dr models.DateRange, logger zerolog.Logger) []models.Chat {
	if cfg.LiveChatToken == "" {
		logger.Warn().Msg("LIVECHAT_TOKEN not set, skipping chats")
		return nil
	}
	client := source.LiveChatClient{BaseURL: cfg.LiveChatBaseURL, Token: cfg.LiveChatToken}
	rows, err := client.FetchChats(ctx, dr)
	if err != nil {
		logger.Error().Err(err).Msg("chat fetch failed")
		return nil
	}
	chats, report := normalize.Chats(rows, bundle)
	logger.Info().
		Int("input", report.Input).
		Int("kept", report.Kept).
		Int("duplicates", report.Duplicates).
		Msg("chats normalized")
	return chats
}

func writeSnapshots(cfg config.Config, ticketRows, chatRows []source.Row, logger zerolog.Logger) {
	if len(ticketRows) > 0 {
		path := filepath.Join(cfg.ProcessedDataDir, "tickets_snapshot.csv")
		if err := source.WriteCSV(path, normalize.TicketSnapshotHeaders, ticketRows); err != nil {
			logger.Error().Err(err).Msg("ticket snapshot write failed")
		} else {
			logger.Info().Str("path", path).Int("rows", len(ticketRows)).Msg("ticket snapshot written")
		}
	}
	if len(chatRows) > 0 {
		path := filepath.Join(cfg.ProcessedDataDir, "chats_snapshot.csv")
		if err := source.WriteCSV(path, normalize.ChatSnapshotHeaders, chatRows); err != nil {
			logger.Error().Err(err).Msg("chat snapshot write failed")
		} else {
			logger.Info().Str("path", path).Int("rows", len(chatRows)).Msg("chat snapshot written")
		}
	}
}
