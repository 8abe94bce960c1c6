package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dholimara/homestay-api/internal/model"
)

// ImageRepo stores gallery images. Homestays and rooms reference them
// through the homestay_family_gallery and room_gallery link tables.
type ImageRepo struct{ db *sql.DB }

func NewImageRepo(db *sql.DB) *ImageRepo { return &ImageRepo{db: db} }

const imageColumns = "i.id, i.title, i.image, COALESCE(i.description,''), i.created_at"

func scanImage(s scanner) (*model.HomestayImage, error) {
	var img model.HomestayImage
	err := s.Scan(&img.ID, &img.Title, &img.Image, &img.Description, &img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *ImageRepo) List(ctx context.Context) ([]model.HomestayImage, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+imageColumns+" FROM homestay_images i ORDER BY i.created_at DESC, i.id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HomestayImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *img)
	}
	return out, rows.Err()
}

func (r *ImageRepo) GetByID(ctx context.Context, id uint64) (*model.HomestayImage, error) {
	return scanImage(r.db.QueryRowContext(ctx, "SELECT "+imageColumns+" FROM homestay_images i WHERE i.id=?", id))
}

func (r *ImageRepo) Create(ctx context.Context, img *model.HomestayImage) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO homestay_images (title, image, description) VALUES (?,?,?)",
		img.Title, img.Image, nullString(img.Description))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*img = *created
	return nil
}

func (r *ImageRepo) Update(ctx context.Context, img *model.HomestayImage) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE homestay_images SET title=?, image=?, description=? WHERE id=?",
		img.Title, img.Image, nullString(img.Description), img.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, img.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ImageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM homestay_images WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrImageNotFound
	}
	return nil
}

// gallery describes one of the link tables.
type gallery struct {
	table    string // link table
	ownerCol string // column referencing the owner
}

var (
	familyGallery = gallery{table: "homestay_family_gallery", ownerCol: "family_id"}
	roomGallery   = gallery{table: "room_gallery", ownerCol: "room_id"}
)

// load returns the images of every owner in ids keyed by owner id.
func (g gallery) load(ctx context.Context, q querier, ids []uint64) (map[uint64][]model.HomestayImage, error) {
	out := make(map[uint64][]model.HomestayImage, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		"SELECT g."+g.ownerCol+", "+imageColumns+" FROM "+g.table+" g JOIN homestay_images i ON i.id = g.image_id"+
			" WHERE g."+g.ownerCol+" IN ("+placeholders(len(ids))+") ORDER BY i.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var owner uint64
		var img model.HomestayImage
		if err := rows.Scan(&owner, &img.ID, &img.Title, &img.Image, &img.Description, &img.CreatedAt); err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], img)
	}
	return out, rows.Err()
}

// replace sets the owner's images to exactly ids.
func (g gallery) replace(ctx context.Context, tx *sql.Tx, owner uint64, ids []uint64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+g.table+" WHERE "+g.ownerCol+"=?", owner); err != nil {
		return err
	}
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+g.table+" ("+g.ownerCol+", image_id) VALUES (?,?)", owner, id); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}
