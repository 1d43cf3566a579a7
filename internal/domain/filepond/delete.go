package filepond

import (
	"context"
	"fmt"
)

// Delete discards the bound uploads. Soft-deleting fields only mark the
// records; otherwise the staged file is removed first and the record second.
// The first failure stops the loop, so a file that is already gone surfaces
// as storage.ErrNotFound.
func (f *Field) Delete(ctx context.Context) error {
	if f.IsEmpty() {
		return nil
	}
	for _, u := range f.uploads {
		if err := f.fp.discard(ctx, u, f.softDelete); err != nil {
			f.fp.metrics.Observe("delete", err)
			return err
		}
	}
	f.fp.metrics.Observe("delete", nil)
	return nil
}

func (fp *Filepond) discard(ctx context.Context, u *Upload, soft bool) error {
	if soft {
		if err := fp.repo.SoftDelete(ctx, u.ID); err != nil {
			return fmt.Errorf("soft delete %s: %w", u.ID, err)
		}
		return nil
	}

	disk, err := fp.disk(u.Disk)
	if err != nil {
		return err
	}
	if err := disk.Delete(ctx, u.Filepath); err != nil {
		return fmt.Errorf("delete file %s: %w", u.ID, err)
	}
	if err := fp.repo.ForceDelete(ctx, u.ID); err != nil {
		return fmt.Errorf("delete record %s: %w", u.ID, err)
	}
	return nil
}
