// Package mongo implements the content store on MongoDB.
//
// The singletons live in a settings collection under the ids "colors" and
// "hero"; doctors and success rates live in their own collections keyed by
// doctor id. Subscriptions are built on change streams and therefore need a
// replica set or sharded cluster.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

// Name is the health check name of the MongoDB store.
const Name = "content-store:mongo"

const (
	settingsCollection     = "settings"
	doctorsCollection      = "doctors"
	successRatesCollection = "successRates"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	Buffer         int
}

// Store is a ports.ContentStore backed by MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	buffer int
}

var _ ports.ContentStore = (*Store)(nil)

// New connects and pings the primary.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database), buffer: cfg.Buffer}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return Name
}

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return unavailable(err)
	}

	return nil
}

// Subscribe implements ports.ContentStore. The change stream is opened before
// the initial read so no write between the two is missed.
func (s *Store) Subscribe(ctx context.Context, resource domain.Resource) (ports.Subscription, error) {
	coll, filter, err := s.locate(resource)
	if err != nil {
		return nil, err
	}

	pipeline := []bson.M{}
	if filter != nil {
		pipeline = append(pipeline, bson.M{"$match": bson.M{"documentKey._id": filter["_id"]}})
	}

	stream, streamCtx := contentstore.NewStream(ctx, resource, s.buffer)

	cs, err := coll.Watch(streamCtx, pipeline)
	if err != nil {
		stream.Close()
		return nil, unavailable(err)
	}

	go s.pump(streamCtx, stream, cs)

	return stream, nil
}

func (s *Store) pump(ctx context.Context, stream *contentstore.Stream, cs *mongo.ChangeStream) {
	defer func() { _ = cs.Close(context.Background()) }()

	resource := stream.Resource()

	publish := func() bool {
		snap, err := s.Load(ctx, resource)
		if err != nil {
			s.end(ctx, stream, err)
			return false
		}

		return stream.Publish(snap)
	}

	if !publish() {
		return
	}

	for cs.Next(ctx) {
		if !publish() {
			return
		}
	}

	err := cs.Err()
	if err == nil {
		err = errors.New("change stream closed")
	}

	s.end(ctx, stream, unavailable(err))
}

func (s *Store) end(ctx context.Context, stream *contentstore.Stream, err error) {
	if ctx.Err() != nil {
		stream.Close()
		return
	}

	logging.FromContext(ctx).Warn("mongodb change stream stopped",
		slog.String("resource", stream.Resource().String()),
		slog.Any("error", err),
	)

	stream.Fail(err)
}

// Load implements ports.ContentStore.
func (s *Store) Load(ctx context.Context, resource domain.Resource) (domain.Snapshot, error) {
	coll, filter, err := s.locate(resource)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{Resource: resource, Exists: true}

	switch resource {
	case domain.ResourceColors:
		var raw bson.M
		if err := coll.FindOne(ctx, filter).Decode(&raw); err != nil {
			return missingOr(resource, err)
		}

		delete(raw, "_id")

		snap.Colors = make(domain.ColorTheme, len(raw))
		for k, v := range raw {
			snap.Colors[k] = fmt.Sprint(v)
		}

	case domain.ResourceHero:
		if err := coll.FindOne(ctx, filter).Decode(&snap.Hero); err != nil {
			return missingOr(resource, err)
		}

	case domain.ResourceDoctors:
		var docs []domain.DoctorProfile
		if err := findAll(ctx, coll, &docs); err != nil {
			return domain.Snapshot{}, err
		}

		snap.Doctors = make(map[domain.DoctorID]domain.DoctorProfile, len(docs))
		for _, d := range docs {
			snap.Doctors[d.ID] = d
		}

	case domain.ResourceSuccessRates:
		var docs []domain.SuccessRate
		if err := findAll(ctx, coll, &docs); err != nil {
			return domain.Snapshot{}, err
		}

		snap.SuccessRates = make(map[domain.DoctorID]domain.SuccessRate, len(docs))
		for _, r := range docs {
			snap.SuccessRates[r.DoctorID] = r
		}
	}

	return snap, nil
}

// Write implements ports.ContentStore. The record replaces the whole
// document, creating it when missing.
func (s *Store) Write(ctx context.Context, record domain.Record) error {
	resource, id := record.Resource(), record.DocumentID()
	if id == "" {
		return domain.NewWriteError(resource, id, errors.New("document id is empty"))
	}

	coll, _, err := s.locate(resource)
	if err != nil {
		return domain.NewWriteError(resource, id, err)
	}

	var doc any = record
	if theme, ok := record.(domain.ColorTheme); ok {
		fields := bson.M{"_id": id}
		for k, v := range theme {
			fields[k] = v
		}

		doc = fields
	}

	_, err = coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return domain.NewWriteError(resource, id, err)
	}

	return nil
}

// locate returns the collection holding resource and, for singletons, the
// filter selecting its document.
func (s *Store) locate(resource domain.Resource) (*mongo.Collection, bson.M, error) {
	switch resource {
	case domain.ResourceColors, domain.ResourceHero:
		return s.db.Collection(settingsCollection), bson.M{"_id": string(resource)}, nil
	case domain.ResourceDoctors:
		return s.db.Collection(doctorsCollection), nil, nil
	case domain.ResourceSuccessRates:
		return s.db.Collection(successRatesCollection), nil, nil
	default:
		return nil, nil, domain.NewValidationError("resource", fmt.Sprintf("unknown resource %q", resource))
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, out *[]T) error {
	cur, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return unavailable(err)
	}

	if err := cur.All(ctx, out); err != nil {
		return unavailable(err)
	}

	return nil
}

func missingOr(resource domain.Resource, err error) (domain.Snapshot, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Snapshot{Resource: resource}, nil
	}

	return domain.Snapshot{}, unavailable(err)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.NewUnavailableError(Name, "request failed"), err)
}
