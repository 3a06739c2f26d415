package database

import (
	"testing"

	"github.com/goadmin/pkg/config"
)

type churnRow struct {
	ID   int64
	Name string
}

func TestOpenSQLiteSchemaSurvivesConnectionChurn(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&churnRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&churnRow{Name: "a"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	// 连接反复归还后，内存库的表结构必须仍然可见
	for i := 0; i < 5; i++ {
		var count int64
		if err := db.Model(&churnRow{}).Count(&count).Error; err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
		if count != 1 {
			t.Fatalf("query %d count = %d, want 1", i, count)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("sqlite pool MaxOpenConnections = %d, want 1", got)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("unsupported driver should be rejected")
	}
}
