// Package firestore implements the content store on Cloud Firestore.
//
// Layout:
//
//	settings/colors        ColorTheme, one field per custom property
//	settings/hero          HeroContent
//	doctors/{doctorId}     DoctorProfile
//	successRates/{doctorId} SuccessRate
//
// Subscriptions use Firestore realtime listeners, so every change to a
// resource produces a full snapshot of it.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jsamuelsen/clinic-site/internal/adapters/contentstore"
	"github.com/jsamuelsen/clinic-site/internal/domain"
	"github.com/jsamuelsen/clinic-site/internal/platform/logging"
	"github.com/jsamuelsen/clinic-site/internal/ports"
)

// Name is the health check name of the Firestore store.
const Name = "content-store:firestore"

const (
	settingsCollection     = "settings"
	doctorsCollection      = "doctors"
	successRatesCollection = "successRates"
)

// Config holds Firestore connection settings.
type Config struct {
	// ProjectID is the Google Cloud project. Empty uses the credentials' project.
	ProjectID string

	// CredentialsFile is a service account key. Empty uses application
	// default credentials.
	CredentialsFile string

	// Buffer is the per-subscription snapshot buffer.
	Buffer int
}

// Store is a ports.ContentStore backed by Firestore.
type Store struct {
	client *firestore.Client
	buffer int
}

var _ ports.ContentStore = (*Store)(nil)

// New connects to Firestore through the Firebase Admin SDK.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return NewWithClient(client, cfg.Buffer), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *firestore.Client, buffer int) *Store {
	return &Store{client: client, buffer: buffer}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return Name
}

// Check implements ports.HealthChecker. A missing colors document is healthy.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.client.Collection(settingsCollection).Doc(string(domain.ResourceColors)).Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return s.unavailable(err)
	}

	return nil
}

// Subscribe implements ports.ContentStore.
func (s *Store) Subscribe(ctx context.Context, resource domain.Resource) (ports.Subscription, error) {
	stream, streamCtx := contentstore.NewStream(ctx, resource, s.buffer)

	switch resource {
	case domain.ResourceColors, domain.ResourceHero:
		go s.watchDocument(streamCtx, stream, s.settingsDoc(resource))
	case domain.ResourceDoctors, domain.ResourceSuccessRates:
		go s.watchCollection(streamCtx, stream, s.client.Collection(collectionName(resource)))
	default:
		stream.Close()
		return nil, domain.NewValidationError("resource", fmt.Sprintf("unknown resource %q", resource))
	}

	return stream, nil
}

// Load implements ports.ContentStore.
func (s *Store) Load(ctx context.Context, resource domain.Resource) (domain.Snapshot, error) {
	switch resource {
	case domain.ResourceColors, domain.ResourceHero:
		doc, err := s.settingsDoc(resource).Get(ctx)
		if status.Code(err) == codes.NotFound {
			return domain.Snapshot{Resource: resource}, nil
		}

		if err != nil {
			return domain.Snapshot{}, s.unavailable(err)
		}

		return decodeDocument(resource, doc)

	case domain.ResourceDoctors, domain.ResourceSuccessRates:
		docs, err := s.client.Collection(collectionName(resource)).Documents(ctx).GetAll()
		if err != nil {
			return domain.Snapshot{}, s.unavailable(err)
		}

		return decodeCollection(resource, docs)

	default:
		return domain.Snapshot{}, domain.NewValidationError("resource", fmt.Sprintf("unknown resource %q", resource))
	}
}

// Write implements ports.ContentStore. The record replaces the whole document.
func (s *Store) Write(ctx context.Context, record domain.Record) error {
	resource, id := record.Resource(), record.DocumentID()

	var (
		ref  *firestore.DocumentRef
		data any
	)

	switch rec := record.(type) {
	case domain.ColorTheme:
		ref = s.settingsDoc(resource)

		fields := make(map[string]any, len(rec))
		for k, v := range rec {
			fields[k] = v
		}

		data = fields
	case domain.HeroContent:
		ref, data = s.settingsDoc(resource), rec
	case domain.DoctorProfile:
		ref, data = s.client.Collection(doctorsCollection).Doc(id), rec
	case domain.SuccessRate:
		ref, data = s.client.Collection(successRatesCollection).Doc(id), rec
	default:
		return domain.NewWriteError(resource, id, fmt.Errorf("unsupported record type %T", record))
	}

	if id == "" {
		return domain.NewWriteError(resource, id, errors.New("document id is empty"))
	}

	if _, err := ref.Set(ctx, data); err != nil {
		return domain.NewWriteError(resource, id, errors.New(status.Convert(err).Message()))
	}

	return nil
}

func (s *Store) watchDocument(ctx context.Context, stream *contentstore.Stream, ref *firestore.DocumentRef) {
	it := ref.Snapshots(ctx)
	defer it.Stop()

	for {
		doc, err := it.Next()
		if err != nil {
			s.end(ctx, stream, err)
			return
		}

		var snap domain.Snapshot
		if doc.Exists() {
			snap, err = decodeDocument(stream.Resource(), doc)
			if err != nil {
				stream.Fail(err)
				return
			}
		} else {
			snap = domain.Snapshot{Resource: stream.Resource()}
		}

		if !stream.Publish(snap) {
			return
		}
	}
}

func (s *Store) watchCollection(ctx context.Context, stream *contentstore.Stream, col *firestore.CollectionRef) {
	it := col.Snapshots(ctx)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if err != nil {
			s.end(ctx, stream, err)
			return
		}

		docs, err := qs.Documents.GetAll()
		if err != nil {
			s.end(ctx, stream, err)
			return
		}

		snap, err := decodeCollection(stream.Resource(), docs)
		if err != nil {
			stream.Fail(err)
			return
		}

		if !stream.Publish(snap) {
			return
		}
	}
}

// end closes the stream cleanly when the consumer went away and fails it
// otherwise.
func (s *Store) end(ctx context.Context, stream *contentstore.Stream, err error) {
	if ctx.Err() != nil {
		stream.Close()
		return
	}

	logging.FromContext(ctx).Warn("firestore listener stopped",
		slog.String("resource", stream.Resource().String()),
		slog.Any("error", err),
	)

	stream.Fail(s.unavailable(err))
}

func (s *Store) settingsDoc(resource domain.Resource) *firestore.DocumentRef {
	return s.client.Collection(settingsCollection).Doc(string(resource))
}

func (s *Store) unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.NewUnavailableError(Name, status.Code(err).String()), err)
}

func collectionName(resource domain.Resource) string {
	if resource == domain.ResourceSuccessRates {
		return successRatesCollection
	}

	return doctorsCollection
}

func decodeDocument(resource domain.Resource, doc *firestore.DocumentSnapshot) (domain.Snapshot, error) {
	snap := domain.Snapshot{Resource: resource, Exists: true}

	switch resource {
	case domain.ResourceColors:
		snap.Colors = make(domain.ColorTheme)
		for k, v := range doc.Data() {
			snap.Colors[k] = fmt.Sprint(v)
		}
	case domain.ResourceHero:
		if err := doc.DataTo(&snap.Hero); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decoding %s: %w", doc.Ref.Path, err)
		}
	}

	return snap, nil
}

func decodeCollection(resource domain.Resource, docs []*firestore.DocumentSnapshot) (domain.Snapshot, error) {
	snap := domain.Snapshot{Resource: resource, Exists: true}

	switch resource {
	case domain.ResourceDoctors:
		snap.Doctors = make(map[domain.DoctorID]domain.DoctorProfile, len(docs))

		for _, doc := range docs {
			var p domain.DoctorProfile
			if err := doc.DataTo(&p); err != nil {
				return domain.Snapshot{}, fmt.Errorf("decoding %s: %w", doc.Ref.Path, err)
			}

			p.ID = domain.DoctorID(doc.Ref.ID)
			snap.Doctors[p.ID] = p
		}

	case domain.ResourceSuccessRates:
		snap.SuccessRates = make(map[domain.DoctorID]domain.SuccessRate, len(docs))

		for _, doc := range docs {
			var r domain.SuccessRate
			if err := doc.DataTo(&r); err != nil {
				return domain.Snapshot{}, fmt.Errorf("decoding %s: %w", doc.Ref.Path, err)
			}

			if r.DoctorID == "" {
				r.DoctorID = domain.DoctorID(doc.Ref.ID)
			}

			snap.SuccessRates[domain.DoctorID(doc.Ref.ID)] = r
		}
	}

	return snap, nil
}
