package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
	DriverJSONL    = "jsonl"
)

// articleRow is the relational layout of the articles table.
type articleRow struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"`
	Title          string     `gorm:"not null"`
	Content        string     `gorm:"not null"`
	URL            string     `gorm:"column:url;uniqueIndex;not null"`
	Source         string     `gorm:"not null;index:idx_source"`
	PublishedDate  *time.Time `gorm:"index:idx_date"`
	Author         string
	Category       string
	SentimentScore float64
	SentimentLabel string `gorm:"index:idx_sentiment"`
	ScrapedAt      time.Time
	ContentLength  int
	WordCount      int
}

func (articleRow) TableName() string { return "articles" }

func toRow(a *types.Article) articleRow {
	return articleRow{
		Title:          a.Title,
		Content:        a.Body,
		URL:            a.URL,
		Source:         a.Source,
		PublishedDate:  a.PublishedAt,
		Author:         a.Author,
		Category:       a.Category,
		SentimentScore: a.SentimentScore,
		SentimentLabel: string(a.SentimentLabel),
		ScrapedAt:      a.ScrapedAt,
		ContentLength:  a.ContentLength,
		WordCount:      a.WordCount,
	}
}

func (r articleRow) article() *types.Article {
	return &types.Article{
		ID:             r.ID,
		URL:            r.URL,
		Title:          r.Title,
		Body:           r.Content,
		Source:         r.Source,
		PublishedAt:    r.PublishedDate,
		Author:         r.Author,
		Category:       r.Category,
		SentimentScore: r.SentimentScore,
		SentimentLabel: types.SentimentLabel(r.SentimentLabel),
		ScrapedAt:      r.ScrapedAt,
		ContentLength:  r.ContentLength,
		WordCount:      r.WordCount,
	}
}

// GormStore keeps articles in SQLite or PostgreSQL. A connection is opened
// for each operation and closed when it finishes.
type GormStore struct {
	driver string
	dsn    string
	now    func() time.Time
	logger *slog.Logger
}

// NewGormStore creates a relational store. Nothing is opened until first use.
func NewGormStore(driver, dsn string, logger *slog.Logger) (*GormStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s: empty dsn", driver)
	}
	return &GormStore{
		driver: driver,
		dsn:    dsn,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With("component", driver+"_storage"),
	}, nil
}

func (s *GormStore) Name() string { return s.driver }

func (s *GormStore) dialector() gorm.Dialector {
	if s.driver == DriverPostgres {
		return postgres.Open(s.dsn)
	}
	return sqlite.Open(s.dsn)
}

// open connects and returns the handle with a function that closes it.
func (s *GormStore) open(ctx context.Context, op string) (*gorm.DB, func(), error) {
	db, err := gorm.Open(s.dialector(), &gorm.Config{
		Logger: gormlogger.New(
			slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, nil, &types.StorageError{Backend: s.driver, Op: op, Err: err}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, &types.StorageError{Backend: s.driver, Op: op, Err: err}
	}
	if s.driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	closeFn := func() {
		if err := sqlDB.Close(); err != nil {
			s.logger.Warn("closing database failed", "error", err)
		}
	}
	return db.WithContext(ctx), closeFn, nil
}

func (s *GormStore) Init(ctx context.Context) error {
	db, done, err := s.open(ctx, "init")
	if err != nil {
		return err
	}
	defer done()

	if err := db.AutoMigrate(&articleRow{}); err != nil {
		return &types.StorageError{Backend: s.driver, Op: "init", Err: err}
	}
	s.logger.Debug("schema ready", "dsn", s.dsn)
	return nil
}

func (s *GormStore) SaveArticles(ctx context.Context, articles []*types.Article) (SaveResult, error) {
	valid, skipped := prepare(articles, s.now(), s.logger)
	res := SaveResult{Skipped: skipped}
	if len(valid) == 0 {
		return res, nil
	}

	db, done, err := s.open(ctx, "save")
	if err != nil {
		return res, err
	}
	defer done()

	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		UpdateAll: true,
	}
	for _, a := range valid {
		row := toRow(a)
		if err := db.Clauses(upsert).Create(&row).Error; err != nil {
			res.Skipped++
			s.logger.Warn("saving article failed", "url", a.URL, "error", err)
			continue
		}
		res.Saved++
	}

	s.logger.Info("articles saved", "saved", res.Saved, "skipped", res.Skipped)
	return res, nil
}

func (s *GormStore) Articles(ctx context.Context, q Query) ([]*types.Article, error) {
	db, done, err := s.open(ctx, "query")
	if err != nil {
		return nil, err
	}
	defer done()

	tx := db.Model(&articleRow{})
	if q.Source != "" {
		tx = tx.Where("source = ?", q.Source)
	}
	if q.Label != "" {
		tx = tx.Where("sentiment_label = ?", string(q.Label))
	}
	if !q.Since.IsZero() {
		tx = tx.Where("scraped_at >= ?", q.Since.UTC())
	}
	if !q.Until.IsZero() {
		tx = tx.Where("scraped_at <= ?", q.Until.UTC())
	}
	tx = tx.Order("scraped_at DESC").Order("id DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []articleRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, &types.StorageError{Backend: s.driver, Op: "query", Err: err}
	}

	out := make([]*types.Article, len(rows))
	for i, r := range rows {
		out[i] = r.article()
	}
	return out, nil
}

// Close is a no-op; connections never outlive a single operation.
func (s *GormStore) Close() error { return nil }
