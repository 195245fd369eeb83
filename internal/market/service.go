// File: internal/market/service.go
package market

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/filestorage"
	"krishipredict_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 20
	imageSubDir        = "listings"
)

// ImageStore saves and removes listing photos.
type ImageStore interface {
	SaveImage(fileHeader *multipart.FileHeader, subDir string) (string, error)
	DeleteFile(relativePath string) error
}

// Service defines the interface for Kisan Bazaar operations.
type Service interface {
	Create(ctx context.Context, req CreateListingRequest) (*Listing, error)
	ListByDistrict(ctx context.Context, district string) ([]Listing, error)
	Search(ctx context.Context, query SearchQuery) ([]Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*Listing, error)
	AttachImage(ctx context.Context, id uuid.UUID, sellerPhone string, file *multipart.FileHeader) (*Listing, error)

	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ExpireStale(ctx context.Context, cutoff time.Time) (int, error)
	SyncIndex(ctx context.Context) (int, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	index    Index
	images   ImageStore
	activity activity.Recorder
	cfg      *config.Config
	logger   *zap.Logger
}

// NewService creates a new market service. index may be nil.
func NewService(repo Repository, index Index, images ImageStore, recorder activity.Recorder, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		index:    index,
		images:   images,
		activity: recorder,
		cfg:      cfg,
		logger:   logger.Named("MarketService"),
	}
}

func (s *ServiceImplementation) Create(ctx context.Context, req CreateListingRequest) (*Listing, error) {
	listing := req.ToListing(s.cfg.StateOr(""))
	if err := s.repo.Create(ctx, listing); err != nil {
		s.logger.Error("Failed to create listing", zap.Error(err))
		return nil, common.ErrInternalServer.WithMessage("Listing failed")
	}
	s.reindex(ctx, listing)
	s.activity.Record(ctx, activity.KindListingCreated,
		fmt.Sprintf("%s listed %g %s of %s in %s", listing.SellerName, listing.Quantity, listing.Unit, listing.Crop, listing.District))
	return listing, nil
}

func (s *ServiceImplementation) ListByDistrict(ctx context.Context, district string) ([]Listing, error) {
	return s.repo.ListActiveByDistrict(ctx, district)
}

// Search uses the search index when available and falls back to the
// database when it is not configured or fails.
func (s *ServiceImplementation) Search(ctx context.Context, query SearchQuery) ([]Listing, error) {
	if query.Limit <= 0 {
		query.Limit = defaultSearchLimit
	}
	if s.index != nil {
		ids, err := s.index.Search(ctx, query)
		if err == nil {
			return s.repo.FindByIDs(ctx, ids)
		}
		s.logger.Warn("Search index unavailable, falling back to database", zap.Error(err))
	}
	return s.repo.SearchActive(ctx, query)
}

func (s *ServiceImplementation) ownedListing(ctx context.Context, id uuid.UUID, sellerPhone string) (*Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.NormalizePhone(listing.SellerPhone) != user.NormalizePhone(sellerPhone) {
		return nil, common.ErrForbidden.WithDetails("Only the seller can change this listing.")
	}
	return listing, nil
}

func (s *ServiceImplementation) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*Listing, error) {
	listing, err := s.ownedListing(ctx, id, req.SellerPhone)
	if err != nil {
		return nil, err
	}
	status := ListingStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	listing.Status = status
	s.reindex(ctx, listing)
	return listing, nil
}

func (s *ServiceImplementation) AttachImage(ctx context.Context, id uuid.UUID, sellerPhone string, file *multipart.FileHeader) (*Listing, error) {
	listing, err := s.ownedListing(ctx, id, sellerPhone)
	if err != nil {
		return nil, err
	}

	path, err := s.images.SaveImage(file, imageSubDir)
	if err != nil {
		if errors.Is(err, filestorage.ErrTooLarge) || errors.Is(err, filestorage.ErrUnsupportedType) {
			return nil, common.ErrBadRequest.WithDetails(err.Error())
		}
		return nil, err
	}
	if err := s.repo.SetImage(ctx, id, path); err != nil {
		_ = s.images.DeleteFile(path)
		return nil, err
	}

	// Images posted inline with the listing are not files we own.
	if old := listing.Image; old != nil && strings.HasPrefix(*old, imageSubDir+"/") {
		if err := s.images.DeleteFile(*old); err != nil {
			s.logger.Warn("Failed to remove replaced image", zap.String("path", *old), zap.Error(err))
		}
	}
	listing.Image = &path
	return listing, nil
}

func (s *ServiceImplementation) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *ServiceImplementation) ListRecent(ctx context.Context, limit int) ([]Listing, error) {
	return s.repo.ListRecent(ctx, limit)
}

func (s *ServiceImplementation) Delete(ctx context.Context, id uuid.UUID) error {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteListing(ctx, id); err != nil {
			s.logger.Warn("Failed to remove listing from search index", zap.String("listing_id", id.String()), zap.Error(err))
		}
	}
	if listing.Image != nil && strings.HasPrefix(*listing.Image, imageSubDir+"/") {
		if err := s.images.DeleteFile(*listing.Image); err != nil {
			s.logger.Warn("Failed to remove listing image", zap.String("path", *listing.Image), zap.Error(err))
		}
	}
	return nil
}

// ExpireStale expires active listings created before cutoff.
func (s *ServiceImplementation) ExpireStale(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.repo.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if s.index != nil {
		for _, id := range ids {
			if err := s.index.DeleteListing(ctx, id); err != nil {
				s.logger.Warn("Failed to remove expired listing from search index", zap.String("listing_id", id.String()), zap.Error(err))
			}
		}
	}
	return len(ids), nil
}

// SyncIndex rebuilds the search index from all active listings.
func (s *ServiceImplementation) SyncIndex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, errors.New("search index is not configured")
	}
	if err := s.index.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	listings, err := s.repo.FindAllActive(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Re-indexing active listings", zap.Int("count", len(listings)))
	return s.index.BulkIndex(ctx, listings)
}

// reindex keeps the search index current. Only active listings are searchable.
func (s *ServiceImplementation) reindex(ctx context.Context, listing *Listing) {
	if s.index == nil {
		return
	}
	var err error
	if listing.Status == StatusActive {
		err = s.index.IndexListing(ctx, listing)
	} else {
		err = s.index.DeleteListing(ctx, listing.ID)
	}
	if err != nil {
		s.logger.Warn("Failed to update search index", zap.String("listing_id", listing.ID.String()), zap.Error(err))
	}
}
