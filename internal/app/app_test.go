package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harou24/cf-cli/internal/cferr"
	"github.com/harou24/cf-cli/internal/history"
	"github.com/harou24/cf-cli/internal/providers"
	"github.com/harou24/cf-cli/internal/ui"
)

type fakeGenerator struct {
	calls int
	got   providers.GenerationRequest
	img   *providers.GeneratedImage
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, req providers.GenerationRequest) (*providers.GeneratedImage, error) {
	f.calls++
	f.got = req
	return f.img, f.err
}

type fakeUploader struct {
	calls int
	got   providers.UploadRequest
	asset *providers.UploadedAsset
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, req providers.UploadRequest) (*providers.UploadedAsset, error) {
	f.calls++
	f.got = req
	return f.asset, f.err
}

var testClock = func() time.Time {
	return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
}

type testHarness struct {
	app  *App
	gen  *fakeGenerator
	up   *fakeUploader
	out  *bytes.Buffer
	errs *bytes.Buffer
}

func newHarness(t *testing.T, storePath string) *testHarness {
	t.Helper()
	if storePath == "" {
		storePath = filepath.Join(t.TempDir(), "history.jsonl")
	}
	h := &testHarness{
		gen: &fakeGenerator{
			img: &providers.GeneratedImage{Data: []byte("pixels"), MIMEType: "image/png"},
		},
		up: &fakeUploader{
			asset: &providers.UploadedAsset{URL: "https://imagedelivery.net/a/b/public"},
		},
		out:  &bytes.Buffer{},
		errs: &bytes.Buffer{},
	}
	h.app = &App{
		Generator: h.gen,
		Uploader:  h.up,
		Store:     history.NewStore(storePath),
		UI:        ui.New(h.out, h.errs),
		Now:       testClock,
	}
	return h
}

func TestRunSuccess(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "history.jsonl")
	h := newHarness(t, storePath)

	err := h.app.Run(context.Background(), Request{Prompt: "a watercolor fox", Expire: "24h"})
	require.NoError(t, err)

	assert.Equal(t, 1, h.gen.calls)
	assert.Equal(t, 1, h.up.calls)
	assert.Equal(t, providers.SizeSquare, h.gen.got.Size)
	assert.Contains(t, h.out.String(), "https://imagedelivery.net/a/b/public")

	require.NotNil(t, h.up.got.ExpiresAt)
	assert.Equal(t, testClock().Add(24*time.Hour), *h.up.got.ExpiresAt)

	records, err := history.NewStore(storePath).List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a watercolor fox", records[0].Prompt)
	assert.Equal(t, "https://imagedelivery.net/a/b/public", records[0].URL)
	assert.Equal(t, testClock(), records[0].CreatedAt)
	assert.Equal(t, history.Policy("24h"), records[0].ExpiresIn)
}

func TestRunWideSelectsWideSize(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.app.Run(context.Background(), Request{Prompt: "x", Wide: true}))
	assert.Equal(t, providers.SizeWide, h.gen.got.Size)
	assert.Nil(t, h.up.got.ExpiresAt)
}

func TestRunGenerationFailureSkipsUpload(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "history.jsonl")
	h := newHarness(t, storePath)
	h.gen.img = nil
	h.gen.err = &cferr.Error{Kind: cferr.Generation, Status: 400, Message: "rejected"}

	err := h.app.Run(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)

	kind, ok := cferr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, cferr.Generation, kind)
	assert.Zero(t, h.up.calls)

	records, listErr := history.NewStore(storePath).List()
	require.NoError(t, listErr)
	assert.Empty(t, records)
}

func TestRunUploadFailureAppendsNothing(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "history.jsonl")
	h := newHarness(t, storePath)
	h.up.asset = nil
	h.up.err = &cferr.Error{Kind: cferr.Upload, Status: 502, Message: "bad gateway"}

	err := h.app.Run(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, h.gen.calls)

	records, listErr := history.NewStore(storePath).List()
	require.NoError(t, listErr)
	assert.Empty(t, records)
	assert.NotContains(t, h.out.String(), "imagedelivery")
}

func TestRunHistoryAppendFailureStillSucceeds(t *testing.T) {
	// A store pointed at a directory cannot be appended to.
	h := newHarness(t, t.TempDir())

	err := h.app.Run(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "https://imagedelivery.net/a/b/public")
	assert.Contains(t, h.errs.String(), "could not record history")
}

func TestRunHistoryModeMakesNoProviderCalls(t *testing.T) {
	h := newHarness(t, "")

	err := h.app.Run(context.Background(), Request{ShowHistory: true})
	require.NoError(t, err)
	assert.Zero(t, h.gen.calls)
	assert.Zero(t, h.up.calls)
	assert.Contains(t, h.out.String(), "No history yet.")
}

func TestRunHistoryModeReadsBackRecords(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "history.jsonl")
	h := newHarness(t, storePath)
	require.NoError(t, h.app.Run(context.Background(), Request{Prompt: "a watercolor fox", Expire: "24h"}))

	h2 := newHarness(t, storePath)
	require.NoError(t, h2.app.Run(context.Background(), Request{ShowHistory: true}))
	assert.Contains(t, h2.out.String(), "a watercolor fox")
	assert.Contains(t, h2.out.String(), "https://imagedelivery.net/a/b/public")
	assert.Contains(t, h2.out.String(), "active")
	assert.Zero(t, h2.gen.calls)
}

func TestRunEmptyPromptIsArgumentError(t *testing.T) {
	h := newHarness(t, "")

	err := h.app.Run(context.Background(), Request{Prompt: "   "})
	require.Error(t, err)

	kind, ok := cferr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, cferr.Argument, kind)
	assert.Zero(t, h.gen.calls)
	assert.Zero(t, h.up.calls)
}
