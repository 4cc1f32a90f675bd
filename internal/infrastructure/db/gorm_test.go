package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
)

func TestOpenGormWithDialector_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	// Expect a Ping from our code
	mock.ExpectPing()

	// Build a mysql dialector that uses our mocked *sql.DB
	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true, // don't query @@version
	})

	gdb, err := OpenGormWithDialector(dial)
	if err != nil {
		t.Fatalf("OpenGormWithDialector error: %v", err)
	}
	if gdb == nil {
		t.Fatalf("got nil gorm.DB")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenGormWithDialector_PingFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing().WillReturnError(errors.New("no ping"))

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	gdb, err := OpenGormWithDialector(dial)
	if err == nil {
		t.Fatalf("expected error, got nil (gdb=%v)", gdb)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenGorm_SQLiteMemory(t *testing.T) {
	gdb, err := OpenGorm("sqlite", ":memory:", false)
	if err != nil {
		t.Fatalf("OpenGorm sqlite: %v", err)
	}
	var one int
	if err := gdb.Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
}

func TestDialector_Unsupported(t *testing.T) {
	if _, err := Dialector("oracle", "x"); err == nil {
		t.Fatal("want error for unsupported driver")
	}
	for _, d := range []string{"mysql", "postgres", "sqlite"} {
		if dial, err := Dialector(d, "x"); err != nil || dial == nil {
			t.Fatalf("Dialector(%q) = %v, %v", d, dial, err)
		}
	}
}

func TestCheck(t *testing.T) {
	gdb, err := OpenGorm("sqlite", ":memory:", false)
	if err != nil {
		t.Fatalf("OpenGorm sqlite: %v", err)
	}
	ping := Check(gdb)
	if err := ping(context.Background()); err != nil {
		t.Fatalf("healthy db: %v", err)
	}
	sqlDB, _ := gdb.DB()
	_ = sqlDB.Close()
	if err := ping(context.Background()); err == nil {
		t.Fatal("closed db must fail the check")
	}
}
