package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chernandez90/InsurancePortal/internal/audit"
	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/repository"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/pubsub"
	"github.com/chernandez90/InsurancePortal/pkg/storage"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// documentService stores attachments under claims/<claimID>/<uuid>-<name>.
type documentService struct {
	claims    repository.ClaimRepository
	store     storage.Storage
	notifier  Notifier
	publisher EventPublisher
	urlExpiry time.Duration
}

// NewDocumentService creates a document service. publisher may be nil.
func NewDocumentService(claims repository.ClaimRepository, store storage.Storage, notifier Notifier, publisher EventPublisher, urlExpiry time.Duration) DocumentService {
	if publisher == nil {
		publisher = pubsub.NoopPublisher{}
	}
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &documentService{
		claims:    claims,
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		urlExpiry: urlExpiry,
	}
}

func claimPrefix(claimID string) string {
	return "claims/" + claimID + "/"
}

func (s *documentService) Upload(ctx context.Context, userID, claimID string, file UploadFile) (*domain.UploadResult, error) {
	l := log.Ctx(ctx).With().Str(log.FieldClaimID, claimID).Logger()

	if err := s.requireClaim(ctx, claimID); err != nil {
		return nil, err
	}

	key := claimPrefix(claimID) + uuid.NewString() + "-" + sanitizeFileName(file.Name)
	if err := s.store.Write(ctx, key, file.Body, file.Size, file.ContentType); err != nil {
		l.Error().Err(err).Str("key", key).Msg("failed to store document")
		return nil, err
	}

	if err := s.notifier.BroadcastToAll(ctx, domain.ClaimUpdatedEvent, domain.DocumentUploadedMessage(claimID)); err != nil {
		l.Warn().Err(err).Msg("document broadcast failed")
	}

	evt, err := pubsub.NewEvent(pubsub.EventClaimDocumentUploaded, claimID, pubsub.DocumentUploadedPayload{
		ClaimID:     claimID,
		DocumentKey: key,
		Size:        file.Size,
		UserID:      userID,
	})
	if err == nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		err = s.publisher.Publish(pctx, pubsub.ChannelClaimEvents, evt)
		cancel()
	}
	if err != nil {
		l.Warn().Err(err).Msg("failed to publish document event")
	}

	audit.LogTarget(ctx, audit.ActionDocumentUpload, userID, claimID, "document uploaded")
	return &domain.UploadResult{DocumentKey: key, Size: file.Size}, nil
}

func (s *documentService) List(ctx context.Context, claimID string) ([]domain.Document, error) {
	if err := s.requireClaim(ctx, claimID); err != nil {
		return nil, err
	}

	objects, err := s.store.List(ctx, claimPrefix(claimID))
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(objects))
	for _, o := range objects {
		docs = append(docs, toDocument(o))
	}
	return docs, nil
}

func (s *documentService) Open(ctx context.Context, claimID, key string) (io.ReadCloser, *domain.Document, error) {
	if err := checkKey(claimID, key); err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}

	doc := toDocument(storage.ObjectInfo{Key: key})
	return rc, &doc, nil
}

func (s *documentService) URL(ctx context.Context, claimID, key string) (string, error) {
	if err := checkKey(claimID, key); err != nil {
		return "", err
	}
	url, err := s.store.GetURL(ctx, key, s.urlExpiry)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrDocumentNotFound
	}
	return url, err
}

func (s *documentService) Delete(ctx context.Context, userID, claimID, key string) error {
	if err := checkKey(claimID, key); err != nil {
		return err
	}

	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDocumentNotFound
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionDocumentDelete, userID, key, "document deleted")
	return nil
}

func (s *documentService) requireClaim(ctx context.Context, claimID string) error {
	ok, err := s.claims.Exists(ctx, claimID)
	if err != nil {
		return fmt.Errorf("check claim: %w", err)
	}
	if !ok {
		return ErrClaimNotFound
	}
	return nil
}

// checkKey rejects keys outside the claim's prefix.
func checkKey(claimID, key string) error {
	prefix := claimPrefix(claimID)
	if claimID == "" || !strings.HasPrefix(key, prefix) || path.Clean(key) != key || len(key) == len(prefix) {
		return ErrInvalidDocumentKey
	}
	if strings.Contains(key[len(prefix):], "/") {
		return ErrInvalidDocumentKey
	}
	return nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 128 {
		name = name[len(name)-128:]
	}
	return name
}

// toDocument recovers the original file name by dropping the uuid prefix.
func toDocument(o storage.ObjectInfo) domain.Document {
	base := path.Base(o.Key)
	name := base
	if len(base) > 37 && base[36] == '-' {
		if _, err := uuid.Parse(base[:36]); err == nil {
			name = base[37:]
		}
	}
	return domain.Document{
		Key:          o.Key,
		FileName:     name,
		Size:         o.Size,
		ContentType:  o.ContentType,
		LastModified: o.LastModified,
	}
}
