package filepond

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository persists upload records. Lookups never return soft-deleted
// rows; the expiry listing does.
type Repository interface {
	Create(ctx context.Context, u *Upload) error
	GetByID(ctx context.Context, id string) (*Upload, error)
	SoftDelete(ctx context.Context, id string) error
	ForceDelete(ctx context.Context, id string) error
	ListExpired(ctx context.Context, cutoff time.Time) ([]*Upload, error)
	ListAll(ctx context.Context) ([]*Upload, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *Upload) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateUpload
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUpload
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Upload, error) {
	var u Upload
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Upload{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUploadNotFound
	}
	return nil
}

func (r *repository) ForceDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&Upload{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUploadNotFound
	}
	return nil
}

// ListExpired returns records created strictly before cutoff, soft-deleted
// ones included, oldest first.
func (r *repository) ListExpired(ctx context.Context, cutoff time.Time) ([]*Upload, error) {
	var uploads []*Upload
	err := r.db.WithContext(ctx).Unscoped().
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&uploads).Error
	return uploads, err
}

func (r *repository) ListAll(ctx context.Context) ([]*Upload, error) {
	var uploads []*Upload
	err := r.db.WithContext(ctx).Unscoped().Order("created_at ASC").Find(&uploads).Error
	return uploads, err
}
