// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/wfunc/drawparty/config"
	"github.com/wfunc/drawparty/models"
	"github.com/wfunc/drawparty/topic"
)

// GormTopicStore 使用GORM从PostgreSQL读取题库
type GormTopicStore struct {
	db *gorm.DB
}

// DSN builds the libpq style connection string for cfg.
func DSN(cfg config.PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)
}

// NewGormTopicStore 创建GORM PostgreSQL数据库连接并迁移 topics 表
func NewGormTopicStore(cfg config.PostgresConfig) (*GormTopicStore, error) {
	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// 题库只在启动时读取一次
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormTopic{}); err != nil {
		return nil, err
	}

	return &GormTopicStore{db: db}, nil
}

// LoadCatalog reads every enabled topic ordered by id.
func (s *GormTopicStore) LoadCatalog() (*topic.Catalog, error) {
	var rows []models.GormTopic
	if err := s.db.Where("enabled = ?", true).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	return CatalogFromRows(rows)
}

// CatalogFromRows converts table rows into a validated catalog.
func CatalogFromRows(rows []models.GormTopic) (*topic.Catalog, error) {
	if len(rows) == 0 {
		return nil, ErrNoTopics
	}
	entries := make([]topic.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.Entry())
	}
	return topic.NewCatalog(entries)
}

// SeedTopics inserts entries whose main text is not in the table yet and
// returns how many rows were added.
func (s *GormTopicStore) SeedTopics(entries []topic.Entry) (int, error) {
	rows := make([]models.GormTopic, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return 0, err
		}
		rows = append(rows, models.NewGormTopic(e))
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var added int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "main"}},
			DoNothing: true,
		}).Create(&rows)
		added = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, fmt.Errorf("seed topics: %w", err)
	}
	return int(added), nil
}

// Close 关闭数据库连接
func (s *GormTopicStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
