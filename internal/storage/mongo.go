package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// articleDoc is the document layout of the articles collection.
type articleDoc struct {
	URL            string     `bson:"url"`
	Title          string     `bson:"title"`
	Content        string     `bson:"content"`
	Source         string     `bson:"source"`
	PublishedDate  *time.Time `bson:"published_date,omitempty"`
	Author         string     `bson:"author,omitempty"`
	Category       string     `bson:"category"`
	SentimentScore float64    `bson:"sentiment_score"`
	SentimentLabel string     `bson:"sentiment_label"`
	ScrapedAt      time.Time  `bson:"scraped_at"`
	ContentLength  int        `bson:"content_length"`
	WordCount      int        `bson:"word_count"`
}

// MongoStore keeps articles in a MongoDB collection. Like GormStore it
// connects per operation.
type MongoStore struct {
	uri        string
	database   string
	collection string
	now        func() time.Time
	logger     *slog.Logger
}

// NewMongoStore creates a new MongoDB storage backend.
func NewMongoStore(uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	if uri == "" || database == "" || collection == "" {
		return nil, fmt.Errorf("mongodb: uri, database and collection are required")
	}
	return &MongoStore{
		uri:        uri,
		database:   database,
		collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStore) Name() string { return DriverMongo }

func (s *MongoStore) open(ctx context.Context, op string) (*mongo.Collection, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return nil, nil, &types.StorageError{Backend: DriverMongo, Op: op, Err: fmt.Errorf("connect: %w", err)}
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, &types.StorageError{Backend: DriverMongo, Op: op, Err: fmt.Errorf("ping: %w", err)}
	}

	done := func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			s.logger.Warn("mongodb disconnect failed", "error", err)
		}
	}
	return client.Database(s.database).Collection(s.collection), done, nil
}

func (s *MongoStore) Init(ctx context.Context) error {
	coll, done, err := s.open(ctx, "init")
	if err != nil {
		return err
	}
	defer done()

	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_url")},
		{Keys: bson.D{{Key: "source", Value: 1}}, Options: options.Index().SetName("idx_source")},
		{Keys: bson.D{{Key: "sentiment_label", Value: 1}}, Options: options.Index().SetName("idx_sentiment")},
		{Keys: bson.D{{Key: "published_date", Value: 1}}, Options: options.Index().SetName("idx_date")},
	})
	if err != nil {
		return &types.StorageError{Backend: DriverMongo, Op: "init", Err: err}
	}
	return nil
}

func (s *MongoStore) SaveArticles(ctx context.Context, articles []*types.Article) (SaveResult, error) {
	valid, skipped := prepare(articles, s.now(), s.logger)
	res := SaveResult{Skipped: skipped}
	if len(valid) == 0 {
		return res, nil
	}

	coll, done, err := s.open(ctx, "save")
	if err != nil {
		return res, err
	}
	defer done()

	opts := options.Replace().SetUpsert(true)
	for _, a := range valid {
		doc := toDoc(a)
		if _, err := coll.ReplaceOne(ctx, bson.M{"url": a.URL}, doc, opts); err != nil {
			res.Skipped++
			s.logger.Warn("saving article failed", "url", a.URL, "error", err)
			continue
		}
		res.Saved++
	}

	s.logger.Info("articles saved", "saved", res.Saved, "skipped", res.Skipped)
	return res, nil
}

func (s *MongoStore) Articles(ctx context.Context, q Query) ([]*types.Article, error) {
	coll, done, err := s.open(ctx, "query")
	if err != nil {
		return nil, err
	}
	defer done()

	cur, err := coll.Find(ctx, mongoFilter(q), mongoFindOptions(q))
	if err != nil {
		return nil, &types.StorageError{Backend: DriverMongo, Op: "query", Err: err}
	}
	defer cur.Close(ctx)

	var out []*types.Article
	for cur.Next(ctx) {
		var d articleDoc
		if err := cur.Decode(&d); err != nil {
			return nil, &types.StorageError{Backend: DriverMongo, Op: "decode", Err: err}
		}
		out = append(out, d.article())
	}
	if err := cur.Err(); err != nil {
		return nil, &types.StorageError{Backend: DriverMongo, Op: "query", Err: err}
	}
	return out, nil
}

func (s *MongoStore) Close() error { return nil }

func mongoFilter(q Query) bson.M {
	filter := bson.M{}
	if q.Source != "" {
		filter["source"] = q.Source
	}
	if q.Label != "" {
		filter["sentiment_label"] = string(q.Label)
	}
	scraped := bson.M{}
	if !q.Since.IsZero() {
		scraped["$gte"] = q.Since.UTC()
	}
	if !q.Until.IsZero() {
		scraped["$lte"] = q.Until.UTC()
	}
	if len(scraped) > 0 {
		filter["scraped_at"] = scraped
	}
	return filter
}

func mongoFindOptions(q Query) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "scraped_at", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}

func toDoc(a *types.Article) articleDoc {
	return articleDoc{
		URL:            a.URL,
		Title:          a.Title,
		Content:        a.Body,
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

func (d articleDoc) article() *types.Article {
	return &types.Article{
		URL:            d.URL,
		Title:          d.Title,
		Body:           d.Content,
		Source:         d.Source,
		PublishedAt:    d.PublishedDate,
		Author:         d.Author,
		Category:       d.Category,
		SentimentScore: d.SentimentScore,
		SentimentLabel: types.SentimentLabel(d.SentimentLabel),
		ScrapedAt:      d.ScrapedAt,
		ContentLength:  d.ContentLength,
		WordCount:      d.WordCount,
	}
}
