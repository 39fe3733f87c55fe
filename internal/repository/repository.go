// Package repository aggregates the daemon control API behind a stable
// interface so callers are insulated from transport details. Failures
// pass through unchanged: a 403 surfaces as the same transport Failure
// from every method, and nothing is retried automatically.
package repository

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/syncmend/syncmend/internal/daemon"
)

//go:generate mockgen -source=repository.go -destination=mock_controlapi_test.go -package=repository

// ControlAPI is the subset of the daemon client the repository needs.
type ControlAPI interface {
	Ping(ctx context.Context) error
	Configuration(ctx context.Context) (*daemon.Configuration, error)
	Devices(ctx context.Context) ([]daemon.Device, error)
	Folders(ctx context.Context) ([]daemon.Folder, error)
	FoldersForDevice(ctx context.Context, deviceID string) ([]daemon.Folder, error)
	SystemStatus(ctx context.Context) (*daemon.SystemStatus, error)
}

// Overview bundles the daemon state the presentation layer shows on
// one screen.
type Overview struct {
	Status  *daemon.SystemStatus
	Devices []daemon.Device
	Folders []daemon.Folder
}

// Repository is the façade over the daemon control API.
type Repository struct {
	api    ControlAPI
	logger *slog.Logger
}

// New creates a Repository over the given control API client.
func New(api ControlAPI, logger *slog.Logger) *Repository {
	return &Repository{api: api, logger: logger}
}

// Ping checks daemon liveness.
func (r *Repository) Ping(ctx context.Context) error {
	return r.api.Ping(ctx)
}

// Configuration fetches the daemon's declared configuration.
func (r *Repository) Configuration(ctx context.Context) (*daemon.Configuration, error) {
	return r.api.Configuration(ctx)
}

// Devices fetches the daemon's device list.
func (r *Repository) Devices(ctx context.Context) ([]daemon.Device, error) {
	return r.api.Devices(ctx)
}

// Folders fetches the daemon's folder list.
func (r *Repository) Folders(ctx context.Context) ([]daemon.Folder, error) {
	return r.api.Folders(ctx)
}

// FoldersForDevice fetches the folders shared with a device.
func (r *Repository) FoldersForDevice(ctx context.Context, deviceID string) ([]daemon.Folder, error) {
	return r.api.FoldersForDevice(ctx, deviceID)
}

// SystemStatus fetches the daemon's system status.
func (r *Repository) SystemStatus(ctx context.Context) (*daemon.SystemStatus, error) {
	return r.api.SystemStatus(ctx)
}

// Overview fetches status, devices, and folders concurrently. The
// first Failure cancels the remaining fetches and is returned as-is.
func (r *Repository) Overview(ctx context.Context) (*Overview, error) {
	var overview Overview

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		status, err := r.api.SystemStatus(ctx)
		if err != nil {
			return err
		}

		overview.Status = status

		return nil
	})

	g.Go(func() error {
		devices, err := r.api.Devices(ctx)
		if err != nil {
			return err
		}

		overview.Devices = devices

		return nil
	})

	g.Go(func() error {
		folders, err := r.api.Folders(ctx)
		if err != nil {
			return err
		}

		overview.Folders = folders

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("daemon overview fetched",
		slog.Int("devices", len(overview.Devices)),
		slog.Int("folders", len(overview.Folders)),
	)

	return &overview, nil
}
