package repositories

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/markxbrooks/Mol-MiDial/internal/database/models"
)

// setupTestDB creates an in-memory SQLite database for testing repositories.
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Setting{},
		&models.ControlMapping{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}

	return db, cleanup
}

func TestSettingRepository_UpsertAndFind(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	ctx := context.Background()

	// Create
	setting, err := repo.Upsert(ctx, models.SettingLogLevel, "DEBUG")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if setting.ID == "" {
		t.Error("Expected setting ID to be set after Upsert")
	}

	// Find
	found, err := repo.FindByKey(ctx, models.SettingLogLevel)
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if found == nil || found.Value != "DEBUG" {
		t.Fatalf("FindByKey = %+v, want value DEBUG", found)
	}

	// Update through Upsert keeps the same row
	updated, err := repo.Upsert(ctx, models.SettingLogLevel, "WARNING")
	if err != nil {
		t.Fatalf("Upsert (update) failed: %v", err)
	}
	if updated.ID != setting.ID {
		t.Error("Upsert created a second row for the same key")
	}
	if updated.Value != "WARNING" {
		t.Errorf("Updated value = %q, want WARNING", updated.Value)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 setting, got %d", len(all))
	}
}

func TestSettingRepository_FindMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSettingRepository(db)

	found, err := repo.FindByKey(context.Background(), "no-such-key")
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if found != nil {
		t.Errorf("Expected nil for missing key, got %+v", found)
	}
}

func TestSettingRepository_Delete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, models.SettingMIDIPort, "nanoKONTROL2"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.Delete(ctx, models.SettingMIDIPort); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	found, err := repo.FindByKey(ctx, models.SettingMIDIPort)
	if err != nil {
		t.Fatalf("FindByKey failed: %v", err)
	}
	if found != nil {
		t.Error("Expected setting to be deleted")
	}
}

func TestMappingRepository_CRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewMappingRepository(db)
	ctx := context.Background()

	mapping := &models.ControlMapping{
		Name:           "custom_zoom",
		Control:        21,
		Channel:        0,
		ControlType:    "knob",
		TargetFunction: "camera_zoom",
		TargetMin:      -320,
		TargetMax:      100,
		Enabled:        true,
		Description:    "Alternate zoom knob",
	}
	if err := repo.Upsert(ctx, mapping); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if mapping.ID == "" {
		t.Error("Expected mapping ID to be set after Upsert")
	}
	if mapping.Position != 0 {
		t.Errorf("First mapping position = %d, want 0", mapping.Position)
	}

	second := &models.ControlMapping{
		Name:           "custom_fog",
		Control:        22,
		Channel:        0,
		ControlType:    "knob",
		TargetFunction: "fog_density",
		TargetMin:      0,
		TargetMax:      0.3,
		Enabled:        true,
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert (second) failed: %v", err)
	}
	if second.Position != 1 {
		t.Errorf("Second mapping position = %d, want 1", second.Position)
	}

	// Update keeps identity and position
	mapping.Control = 25
	if err := repo.Upsert(ctx, mapping); err != nil {
		t.Fatalf("Upsert (update) failed: %v", err)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 mappings, got %d", len(all))
	}
	if all[0].Name != "custom_zoom" || all[0].Control != 25 {
		t.Errorf("First row = %+v, want updated custom_zoom at position 0", all[0])
	}

	// SetEnabled
	if err := repo.SetEnabled(ctx, "custom_zoom", false); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	found, err := repo.FindByName(ctx, "custom_zoom")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if found == nil || found.Enabled {
		t.Errorf("Expected custom_zoom disabled, got %+v", found)
	}

	// Delete
	if err := repo.Delete(ctx, "custom_zoom"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if found, _ := repo.FindByName(ctx, "custom_zoom"); found != nil {
		t.Error("Expected custom_zoom to be deleted")
	}
}
