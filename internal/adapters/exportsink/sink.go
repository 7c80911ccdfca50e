// Package exportsink stores export files on the local filesystem or in an
// S3-compatible bucket.
package exportsink

import (
	"context"
	"fmt"
	"path"
	"strings"

	"peopledir/internal/config"
	"peopledir/internal/ports"
)

// Driver names a sink implementation
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// Open selects a sink from cfg (default fs)
func Open(ctx context.Context, cfg config.ExportConfig) (ports.ExportSink, error) {
	driver := Driver(strings.ToLower(strings.TrimSpace(cfg.Driver)))
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown export driver %s", driver)
	}
}

// sanitizeName reduces name to a single safe path element
func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("invalid export name %q", name)
	}
	return name, nil
}
