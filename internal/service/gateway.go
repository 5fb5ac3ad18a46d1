package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/reconcile"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/rs/zerolog"
)

// Gateway translates collection CRUD into asset store calls. It holds no
// state of its own and never retries.
type Gateway[T models.Record] struct {
	store    repository.AssetStore
	codec    recordCodec[T]
	pageSize int
	log      zerolog.Logger
}

var (
	_ reconcile.ContentStore[models.Project]  = (*Gateway[models.Project])(nil)
	_ reconcile.ContentStore[models.Artwork]  = (*Gateway[models.Artwork])(nil)
	_ reconcile.ContentStore[models.BlogPost] = (*Gateway[models.BlogPost])(nil)
)

func newGateway[T models.Record](store repository.AssetStore, codec recordCodec[T], pageSize int, log zerolog.Logger) *Gateway[T] {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Gateway[T]{
		store:    store,
		codec:    codec,
		pageSize: pageSize,
		log:      log.With().Str("service", "gateway").Str("collection", string(codec.collection)).Logger(),
	}
}

// Identifier derives the store identifier from an image URL: the last path
// segment without its extension
func Identifier(imageURL string) string {
	u := imageURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	base := path.Base(strings.TrimRight(u, "/"))
	if base == "." || base == "/" {
		return ""
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

func (g *Gateway[T]) op(verb string) string {
	return verb + " " + g.codec.noun
}

func (g *Gateway[T]) publicID(rec T) (string, error) {
	id := Identifier(g.codec.primaryImage(rec))
	if id == "" {
		return "", fmt.Errorf("record has no image to attach metadata to")
	}
	return g.codec.collection.Folder() + "/" + id, nil
}

// List returns up to one page of records under the collection folder
func (g *Gateway[T]) List(ctx context.Context) ([]T, error) {
	assets, err := g.store.ListByPrefix(ctx, g.codec.collection.Folder(), g.pageSize)
	if err != nil {
		return nil, wrapFailure(g.op("list"), err)
	}

	out := make([]T, 0, len(assets))
	for _, a := range assets {
		out = append(out, g.codec.decode(a))
	}
	return out, nil
}

// resolve fetches the asset behind a record id together with its metadata
func (g *Gateway[T]) resolve(ctx context.Context, op, id string) (*models.Asset, error) {
	asset, err := g.store.GetByAssetID(ctx, id)
	if err != nil {
		return nil, wrapFailure(op, err)
	}
	if !g.inFolder(asset) {
		return nil, models.NewFailure(models.KindNotFound, op,
			fmt.Errorf("%s %s not found", g.codec.noun, id))
	}
	if asset.Metadata == nil {
		full, err := g.store.GetByPublicID(ctx, asset.PublicID)
		if err != nil {
			return nil, wrapFailure(op, err)
		}
		asset = full
	}
	return asset, nil
}

func (g *Gateway[T]) inFolder(asset *models.Asset) bool {
	return strings.HasPrefix(asset.PublicID, g.codec.collection.Folder()+"/")
}

// Get returns one record by its store id
func (g *Gateway[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	asset, err := g.resolve(ctx, g.op("get"), id)
	if err != nil {
		return zero, err
	}
	return g.codec.decode(*asset), nil
}

// Create attaches the draft's metadata to its uploaded image. The returned
// record carries the store's id and URL in place of any placeholder.
func (g *Gateway[T]) Create(ctx context.Context, draft T) (T, error) {
	op := g.op("create")
	var zero T

	if err := g.codec.validate(draft); err != nil {
		return zero, models.NewFailure(models.KindValidation, op, err)
	}
	publicID, err := g.publicID(draft)
	if err != nil {
		return zero, models.NewFailure(models.KindValidation, op, err)
	}
	return g.write(ctx, op, publicID, draft, 1)
}

// Update rewrites the metadata of record id. A non-zero draft revision must
// match the stored one or the write is refused with a conflict.
func (g *Gateway[T]) Update(ctx context.Context, id string, draft T) (T, error) {
	op := g.op("update")
	var zero T

	if err := g.codec.validate(draft); err != nil {
		return zero, models.NewFailure(models.KindValidation, op, err)
	}

	current, err := g.resolve(ctx, op, id)
	if err != nil {
		return zero, err
	}

	stored := metaRevision(*current)
	if want := g.codec.revision(draft); want != 0 && want != stored {
		g.log.Warn().Str("id", id).Int("revision", want).Int("stored", stored).Msg("Stale update refused")
		return zero, models.NewFailure(models.KindConflict, op,
			fmt.Errorf("%s %s was modified (revision %d, yours %d)", g.codec.noun, id, stored, want))
	}

	// the record's image is fixed; a draft pointing elsewhere would
	// overwrite another record
	if ident := Identifier(g.codec.primaryImage(draft)); ident != "" && ident != Identifier(current.PublicID) {
		return zero, models.NewFailure(models.KindValidation, op,
			fmt.Errorf("image %q does not belong to %s %s", ident, g.codec.noun, id))
	}

	return g.write(ctx, op, current.PublicID, draft, stored+1)
}

func (g *Gateway[T]) write(ctx context.Context, op, publicID string, draft T, revision int) (T, error) {
	var zero T

	meta := g.codec.encode(draft)
	meta["revision"] = strconv.Itoa(revision)

	asset, err := g.store.UpdateContext(ctx, publicID, meta)
	if err != nil {
		return zero, wrapFailure(op, err)
	}

	rec := g.codec.stamp(draft, *asset, revision)
	g.log.Info().Str("id", rec.GetID()).Str("public_id", publicID).Int("revision", revision).Msg("Record saved")
	return rec, nil
}

// Delete destroys the asset behind id. An id that is already gone counts
// as deleted.
func (g *Gateway[T]) Delete(ctx context.Context, id string) error {
	op := g.op("delete")

	asset, err := g.store.GetByAssetID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		g.log.Info().Str("id", id).Msg("Delete of missing record treated as success")
		return nil
	}
	if err != nil {
		return wrapFailure(op, err)
	}
	if !g.inFolder(asset) {
		return nil
	}

	if err := g.store.Destroy(ctx, asset.PublicID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return wrapFailure(op, err)
	}

	g.log.Info().Str("id", id).Str("public_id", asset.PublicID).Msg("Record deleted")
	return nil
}

// wrapFailure re-tags err with op while keeping its kind
func wrapFailure(op string, err error) error {
	var f *models.Failure
	if errors.As(err, &f) {
		return models.NewFailure(f.Kind, op, err)
	}
	return models.NewFailure(models.KindUpstream, op, err)
}
