package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/petrescue/admin-notifier/pkg/config"
	"github.com/petrescue/admin-notifier/pkg/logger"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:dbclient?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db, config.DBDriverSQLite)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestNew_OpensSQLite(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{
		Driver:       "SQLite",
		DSN:          "file:dbnew?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	defer client.Close()

	if client.Driver() != config.DBDriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", client.Driver())
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{Driver: config.DBDriverSQLite}, nil); err == nil {
		t.Fatal("expected error for empty DSN")
	}
	if _, err := New(context.Background(), config.DBConfig{Driver: "mysql", DSN: "x"}, nil); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db, config.DBDriverSQLite)

	var before int64
	if err := db.Model(&testModel{}).Count(&before).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&testModel{Name: "panicked"}).Error; err != nil {
				return err
			}
			panic("boom")
		})
	}()

	var after int64
	if err := db.Model(&testModel{}).Count(&after).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if after != before {
		t.Fatalf("expected rollback, count went from %d to %d", before, after)
	}
}

func TestNew_LogsFailedStatements(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf, Format: logger.FormatJSON})
	client, err := New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file:dblog?mode=memory&cache=shared",
	}, logg)
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	defer client.Close()

	if err := client.DB().Exec("SELECT * FROM missing_table").Error; err == nil {
		t.Fatal("expected query error")
	}
	if !strings.Contains(buf.String(), `"message":"db.query_failed"`) {
		t.Fatalf("expected failed statement to be logged, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "missing_table") {
		t.Fatalf("expected sql in log entry, got %s", buf.String())
	}
}
