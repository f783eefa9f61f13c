package cache

import (
	"path/filepath"
	"testing"
)

func TestCreateSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := openDatabase(path)
	if err != nil {
		t.Fatalf("openDatabase: %v", err)
	}
	defer db.Close()

	if err := createSchema(db, path, true); err != nil {
		t.Fatalf("first createSchema: %v", err)
	}
	if err := createSchema(db, path, true); err != nil {
		t.Fatalf("second createSchema: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM TileSets WHERE defaultSet = 1`).Scan(&count); err != nil {
		t.Fatalf("count default sets: %v", err)
	}
	if count != 1 {
		t.Errorf("default set count = %d, want exactly 1", count)
	}
}

func TestSettingBoolRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := openDatabase(path)
	if err != nil {
		t.Fatalf("openDatabase: %v", err)
	}
	defer db.Close()
	if err := createSchema(db, path, true); err != nil {
		t.Fatalf("createSchema: %v", err)
	}

	if settingBool(db, "unset-key") {
		t.Error("unset key should default to false")
	}

	if err := setSettingBool(db, "my-flag", true); err != nil {
		t.Fatalf("setSettingBool: %v", err)
	}
	if !settingBool(db, "my-flag") {
		t.Error("expected my-flag to be true after set")
	}

	if err := setSettingBool(db, "my-flag", false); err != nil {
		t.Fatalf("setSettingBool (update): %v", err)
	}
	if settingBool(db, "my-flag") {
		t.Error("expected my-flag to be false after update")
	}
}

func TestResetSchemaDropsDataKeepsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := openDatabase(path)
	if err != nil {
		t.Fatalf("openDatabase: %v", err)
	}
	defer db.Close()
	if err := createSchema(db, path, true); err != nil {
		t.Fatalf("createSchema: %v", err)
	}
	if err := setSettingBool(db, settingBogusCleanupDone, true); err != nil {
		t.Fatalf("setSettingBool: %v", err)
	}

	if err := resetSchema(db, path); err != nil {
		t.Fatalf("resetSchema: %v", err)
	}

	if !settingBool(db, settingBogusCleanupDone) {
		t.Error("Settings table should survive a reset")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM TileSets WHERE defaultSet = 1`).Scan(&count); err != nil {
		t.Fatalf("count default sets: %v", err)
	}
	if count != 1 {
		t.Errorf("default set count after reset = %d, want 1", count)
	}
}
