package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	siteerrors "go-patrol/internal/site/errors"
	"go-patrol/internal/shared/apperror"
	"go-patrol/internal/sitecode"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	qrCacheTTL = 24 * time.Hour
	qrSize     = 256
)

//go:generate mockgen -source=site_service.go -destination=mock/site_service_mock.go -package=mock
type Service interface {
	// QRCode returns the PNG a guard scans to check in at the site.
	QRCode(ctx context.Context, id string) (QRCodeResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	group  singleflight.Group
	logger *zap.Logger
}

// NewService builds the QR service; rdb may be nil to disable caching.
func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("site.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("site.service")
	}
	return &service{repo: repo, rdb: rdb, logger: l}
}

func qrCacheKey(id string) string {
	return fmt.Sprintf("site:qr:%s", id)
}

func (s *service) QRCode(ctx context.Context, id string) (QRCodeResponse, error) {
	siteID, err := uuid.Parse(id)
	if err != nil {
		return QRCodeResponse{}, siteerrors.ErrInvalidSiteID
	}
	key := qrCacheKey(siteID.String())

	v, err, _ := s.group.Do(key, func() (any, error) {
		if png, ok := s.cached(ctx, key); ok {
			return QRCodeResponse{SiteID: siteID.String(), PNG: png}, nil
		}

		st, err := s.repo.FindByID(ctx, siteID.String())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, siteerrors.ErrSiteNotFound
		}
		if err != nil {
			return nil, apperror.Transient(err)
		}

		payload, err := sitecode.Encode(st.ID, st.Name, st.Code)
		if err != nil {
			return nil, err
		}
		png, err := qrcode.Encode(string(payload), qrcode.Medium, qrSize)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if err := s.rdb.Set(ctx, key, png, qrCacheTTL).Err(); err != nil {
				s.logger.Warn("cache site qr failed", zap.String("site_id", id), zap.Error(err))
			}
		}
		return QRCodeResponse{SiteID: st.ID.String(), SiteName: st.Name, Payload: string(payload), PNG: png}, nil
	})
	if err != nil {
		return QRCodeResponse{}, err
	}
	return v.(QRCodeResponse), nil
}

func (s *service) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.rdb == nil {
		return nil, false
	}
	png, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		return png, true
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.Warn("read site qr cache failed", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}
