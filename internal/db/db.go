package db

import (
	"log"
	"os"
	"time"

	"github.com/mycollege/chatbot-engine/internal/chat"
	"github.com/mycollege/chatbot-engine/pkg/zlog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the MySQL pool and migrates the turn and feedback tables.
// The pool cap is the only admission control on the request path: callers
// queue for a connection instead of failing.
func Connect(dsn string) *gorm.DB {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		zlog.Fatalf("mysql open: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		zlog.Fatalf("mysql pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := gdb.AutoMigrate(&chat.Turn{}, &chat.Feedback{}); err != nil {
		zlog.Fatalf("automigrate: %v", err)
	}
	return gdb
}
