package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/safetrail/server/internal/adapters/database"
	"github.com/safetrail/server/internal/application/services"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/infrastructure/clients/postgres"
	"github.com/safetrail/server/pkg/config"
)

// Seeds a development database with one user's worth of demo data: a couple
// of tracking sessions, a device that follows the user across locations, a
// handful of stationary routers, one trusted device, and one alert.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				radio_sightings,
				location_fixes,
				alert_recipients,
				alerts,
				trusted_devices,
				tracking_sessions,
				client_devices
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	fixRepo := database.NewFixAdapter(pgClient)
	sessionRepo := database.NewSessionAdapter(pgClient)
	deviceRepo := database.NewDeviceAdapter(pgClient)
	alertRepo := database.NewAlertAdapter(pgClient)
	trustRepo := database.NewTrustAdapter(pgClient)

	userID := "demo-user"
	now := time.Now()

	// 1. Client device
	if err := deviceRepo.TouchLastSeen(ctx, userID, "demo-phone", now); err != nil {
		log.Printf("Failed to register client device: %v", err)
	}

	// 2. Two tracking sessions on consecutive evenings
	sessions := []*entities.TrackingSession{
		{
			ID:             uuid.New().String(),
			UserID:         userID,
			Name:           "Evening commute",
			StartTime:      now.Add(-48 * time.Hour),
			LastActivityAt: now.Add(-47 * time.Hour),
		},
		{
			ID:             uuid.New().String(),
			UserID:         userID,
			Name:           "Walk home",
			StartTime:      now.Add(-24 * time.Hour),
			LastActivityAt: now.Add(-23 * time.Hour),
		},
	}
	for _, s := range sessions {
		end := s.StartTime.Add(time.Hour)
		s.EndTime = &end
		if err := sessionRepo.Create(ctx, s); err != nil {
			log.Printf("Failed to create session %s: %v", s.Name, err)
		}
	}

	// 3. Fixes with sightings. The follower shows up in both sessions at
	// every stop; each stop also has its own stationary router.
	follower := "F0:11:22:33:44:55"
	stops := []struct {
		lat, lng float64
		router   string
	}{
		{6.5244, 3.3792, "CafeNet"},
		{6.5311, 3.3903, "MallGuest"},
		{6.5402, 3.4021, "HomeNet"},
	}

	for si, session := range sessions {
		for pi, stop := range stops {
			fixID := uuid.New().String()
			ts := session.StartTime.Add(time.Duration(pi*15) * time.Minute)
			fix := &entities.LocationFix{
				ID:                fixID,
				UserID:            userID,
				TrackingSessionID: &session.ID,
				Latitude:          stop.lat + float64(si)*0.0005,
				Longitude:         stop.lng,
				Timestamp:         ts,
				Sightings: []*entities.RadioSighting{
					{
						ID:         uuid.New().String(),
						LocationID: fixID,
						Kind:       entities.DeviceKindBle,
						Identifier: follower,
						RSSI:       -58 - pi,
					},
					{
						ID:          uuid.New().String(),
						LocationID:  fixID,
						Kind:        entities.DeviceKindWifi,
						Identifier:  stop.router + ":AA",
						DisplayName: stop.router,
						RSSI:        -45,
					},
				},
			}
			if err := fixRepo.Create(ctx, fix); err != nil {
				log.Printf("Failed to create fix: %v", err)
			}
		}
	}

	// 4. Trust the home router
	if err := trustRepo.Set(ctx, userID, entities.DeviceKindWifi, "HomeNet:AA", true); err != nil {
		log.Printf("Failed to trust device: %v", err)
	}

	// 5. One resolved alert inside the second session
	alert := &entities.Alert{
		ID:        uuid.New().String(),
		UserID:    userID,
		Message:   "Felt followed on the walk home",
		Status:    entities.AlertStatusActive,
		CreatedAt: sessions[1].StartTime.Add(20 * time.Minute),
	}
	if err := alertRepo.Create(ctx, alert); err != nil {
		log.Printf("Failed to create alert: %v", err)
	}
	if err := alertRepo.Resolve(ctx, userID, alert.ID); err != nil {
		log.Printf("Failed to resolve alert: %v", err)
	}

	scorer := services.NewScorer(cfg.Scoring)
	log.Printf("Seeded %d sessions, follower device score over one session: %.2f",
		len(sessions), scorer.Score(3, 3))
	log.Println("Seeding complete")
}
