// Package cloudinary adapts the Cloudinary SDK to the gateway's AssetStore:
// calls are throttled, metered and their failures tagged by kind.
package cloudinary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/metrics"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client is an AssetStore backed by one Cloudinary cloud
type Client struct {
	sdk          *cld.Cloudinary
	uploadPreset string
	limiter      *rate.Limiter
	log          zerolog.Logger
}

var _ repository.AssetStore = (*Client)(nil)

// NewClient creates a client from configuration. Admin API calls are
// throttled by a token bucket sized from RatePerSec and Burst.
func NewClient(cfg config.CloudinaryConfig, log zerolog.Logger) (*Client, error) {
	sdk, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	if prefix := strings.TrimRight(cfg.APIPrefix, "/"); prefix != "" {
		sdk.Config.API.UploadPrefix = prefix
	}

	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		sdk:          sdk,
		uploadPreset: cfg.UploadPreset,
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		log:          log.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// resourceJSON is the wire shape shared by every resource-returning call
type resourceJSON struct {
	AssetID   string `json:"asset_id"`
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Context   *struct {
		Custom map[string]string `json:"custom"`
	} `json:"context,omitempty"`
	Result string `json:"result,omitempty"`
	bodyError
}

type listJSON struct {
	Resources []resourceJSON `json:"resources"`
	bodyError
}

// bodyError is the error object the API returns alongside a non-2xx status
type bodyError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (b bodyError) message() string {
	if b.Error == nil {
		return ""
	}
	return b.Error.Message
}

func (r resourceJSON) toAsset() models.Asset {
	asset := models.Asset{
		AssetID:   r.AssetID,
		PublicID:  r.PublicID,
		SecureURL: r.SecureURL,
	}
	if r.Context != nil && len(r.Context.Custom) > 0 {
		asset.Metadata = r.Context.Custom
	}
	return asset
}

// ListByPrefix returns up to max image resources whose public id starts with prefix
func (c *Client) ListByPrefix(ctx context.Context, prefix string, max int) ([]models.Asset, error) {
	var out listJSON
	err := c.call(ctx, "list resources", true, &out, func() (interface{}, error) {
		return c.sdk.Admin.Assets(ctx, admin.AssetsParams{
			AssetType:    api.Image,
			DeliveryType: string(api.Upload),
			Prefix:       prefix,
			MaxResults:   max,
			Context:      api.Bool(true),
		})
	})
	if err != nil {
		return nil, err
	}

	assets := make([]models.Asset, 0, len(out.Resources))
	for _, r := range out.Resources {
		assets = append(assets, r.toAsset())
	}
	return assets, nil
}

// GetByAssetID resolves an immutable asset id to its resource
func (c *Client) GetByAssetID(ctx context.Context, assetID string) (*models.Asset, error) {
	return c.resource(ctx, "get resource", true, func() (interface{}, error) {
		return c.sdk.Admin.AssetByAssetID(ctx, admin.AssetByAssetIDParams{AssetID: assetID})
	})
}

// GetByPublicID fetches a resource with its context metadata
func (c *Client) GetByPublicID(ctx context.Context, publicID string) (*models.Asset, error) {
	return c.resource(ctx, "get resource", true, func() (interface{}, error) {
		return c.sdk.Admin.Asset(ctx, admin.AssetParams{
			AssetType:    api.Image,
			DeliveryType: api.Upload,
			PublicID:     publicID,
		})
	})
}

// UpdateContext replaces the context metadata of an uploaded image
func (c *Client) UpdateContext(ctx context.Context, publicID string, meta map[string]string) (*models.Asset, error) {
	asset, err := c.resource(ctx, "explicit", false, func() (interface{}, error) {
		return c.sdk.Upload.Explicit(ctx, uploader.ExplicitParams{
			PublicID: publicID,
			Type:     api.Upload,
			Context:  EscapeContext(meta),
		})
	})
	if err != nil {
		return nil, err
	}
	if asset.Metadata == nil {
		asset.Metadata = meta
	}
	return asset, nil
}

// Destroy removes an image. A missing image is reported as a not-found failure.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	const op = "destroy"

	var out resourceJSON
	err := c.call(ctx, op, false, &out, func() (interface{}, error) {
		return c.sdk.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	})
	if err != nil {
		return err
	}

	switch out.Result {
	case "ok":
		return nil
	case "not found":
		return models.NewFailure(models.KindNotFound, op, fmt.Errorf("resource %s not found", publicID))
	default:
		return models.NewFailure(models.KindUpstream, op, fmt.Errorf("unexpected destroy result %q", out.Result))
	}
}

// Upload sends an image with the configured preset into folder
func (c *Client) Upload(ctx context.Context, file io.Reader, filename, folder string) (*models.Asset, error) {
	asset, err := c.resource(ctx, "upload", false, func() (interface{}, error) {
		return c.sdk.Upload.Upload(ctx, file, uploader.UploadParams{
			UploadPreset: c.uploadPreset,
			Folder:       folder,
		})
	})
	if err != nil {
		return nil, err
	}
	if asset.SecureURL == "" {
		return nil, models.NewFailure(models.KindUpstream, "upload", fmt.Errorf("upload of %s carried no secure_url", filename))
	}
	return asset, nil
}

func (c *Client) resource(ctx context.Context, op string, throttled bool, fn func() (interface{}, error)) (*models.Asset, error) {
	var out resourceJSON
	if err := c.call(ctx, op, throttled, &out, fn); err != nil {
		return nil, err
	}
	asset := out.toAsset()
	return &asset, nil
}

// call runs one SDK request and decodes its result into out. SDK results
// are read through their JSON form so context metadata and error messages
// look the same for every endpoint.
func (c *Client) call(ctx context.Context, op string, throttled bool, out interface{ message() string }, fn func() (interface{}, error)) (err error) {
	if throttled {
		if err := c.limiter.Wait(ctx); err != nil {
			return models.NewFailure(models.KindNetwork, op, fmt.Errorf("rate limiter: %w", err))
		}
	}

	start := time.Now()
	defer func() { metrics.ObserveStore(op, start, err) }()

	res, err := fn()
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("Store request failed")
		return models.NewFailure(models.KindNetwork, op, err)
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return models.NewFailure(models.KindUpstream, op, fmt.Errorf("failed to read response: %w", err))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return models.NewFailure(models.KindUpstream, op, fmt.Errorf("failed to decode response: %w", err))
	}
	if msg := out.message(); msg != "" {
		c.log.Warn().Str("op", op).Str("error", msg).Msg("Store returned error")
		return classify(op, msg)
	}
	return nil
}

// classify tags an error message returned in a response body
func classify(op, message string) error {
	if strings.Contains(strings.ToLower(message), "not found") {
		return models.NewFailure(models.KindNotFound, op, fmt.Errorf("%s", message))
	}
	return models.NewFailure(models.KindUpstream, op, fmt.Errorf("%s", message))
}

var contextEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `=`, `\=`)

// EscapeContext escapes the "|" and "=" separators inside metadata values
func EscapeContext(meta map[string]string) api.CldAPIMap {
	if len(meta) == 0 {
		return nil
	}
	out := make(api.CldAPIMap, len(meta))
	for k, v := range meta {
		out[k] = contextEscaper.Replace(v)
	}
	return out
}
