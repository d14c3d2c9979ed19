// Package app runs the generate → upload → record → display pipeline. The
// two providers are narrow interfaces so the whole flow is testable with
// fakes and no network.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/harou24/cf-cli/internal/cferr"
	"github.com/harou24/cf-cli/internal/history"
	"github.com/harou24/cf-cli/internal/providers"
	"github.com/harou24/cf-cli/internal/ui"
)

type App struct {
	Generator providers.GenerationProvider
	Uploader  providers.DeliveryProvider
	Store     *history.Store
	UI        *ui.UI

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

type Request struct {
	Prompt      string
	Wide        bool
	Expire      history.Policy
	ShowHistory bool
	NoPreview   bool
}

// Run executes one invocation strictly in order: the upload consumes the
// generated bytes, so it can never start before generation completes, and
// no history record exists unless both calls succeeded. Any fatal error
// aborts the rest of the pipeline.
func (a *App) Run(ctx context.Context, req Request) error {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	if req.ShowHistory {
		records, err := a.Store.List()
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		a.UI.History(records, now())
		return nil
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return cferr.New(cferr.Argument, "an image description is required")
	}

	size := providers.SizeSquare
	if req.Wide {
		size = providers.SizeWide
	}

	stop := a.UI.Step("Generating image")
	img, err := a.Generator.Generate(ctx, providers.GenerationRequest{
		Prompt: req.Prompt,
		Size:   size,
	})
	stop(err == nil)
	if err != nil {
		return err
	}

	createdAt := now().UTC()
	var expiresAt *time.Time
	if d, ok := req.Expire.Duration(); ok {
		t := createdAt.Add(d)
		expiresAt = &t
	}

	stop = a.UI.Step("Uploading to Cloudflare")
	asset, err := a.Uploader.Upload(ctx, providers.UploadRequest{
		Image:     img,
		ExpiresAt: expiresAt,
	})
	stop(err == nil)
	if err != nil {
		return err
	}

	record := history.Record{
		Prompt:    req.Prompt,
		URL:       asset.URL,
		CreatedAt: createdAt,
		ExpiresIn: req.Expire,
	}
	if err := a.Store.Append(record); err != nil {
		// Showing the URL takes precedence over persisting it.
		slog.Warn("history append failed", "error", err)
		a.UI.Warnf("could not record history: %v", err)
	}

	a.UI.Success(asset.URL)
	if !req.NoPreview {
		a.UI.Preview(img.Data)
	}
	return nil
}
