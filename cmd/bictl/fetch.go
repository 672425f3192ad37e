package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/retailbi/internal/config"
	"github.com/andresuchdata/retailbi/internal/storage"
	"github.com/andresuchdata/retailbi/pkg/logger"
)

var datasetExtensions = []string{".csv", ".xlsx", ".xls", ".txt"}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download dataset files from an S3-compatible bucket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "endpoint", EnvVars: []string{"STORAGE_ENDPOINT"}, Required: true},
			&cli.StringFlag{Name: "access-key", EnvVars: []string{"STORAGE_ACCESS_KEY"}, Required: true},
			&cli.StringFlag{Name: "secret-key", EnvVars: []string{"STORAGE_SECRET_KEY"}, Required: true},
			&cli.StringFlag{Name: "bucket", EnvVars: []string{"STORAGE_BUCKET"}, Required: true},
			&cli.StringFlag{Name: "region", EnvVars: []string{"STORAGE_REGION"}, Value: "us-east-1"},
			&cli.BoolFlag{Name: "use-ssl", EnvVars: []string{"STORAGE_USE_SSL"}, Value: true},
			&cli.StringFlag{Name: "prefix", Usage: "Key prefix to list"},
			&cli.StringFlag{Name: "object", Usage: "Single object key, relative to --prefix"},
			&cli.StringFlag{Name: "dir", Usage: "Download directory", Value: "./data/datasets"},
		},
		Action: func(c *cli.Context) error {
			client, err := storage.NewMinioClient(config.StorageConfig{
				Endpoint:  c.String("endpoint"),
				AccessKey: c.String("access-key"),
				SecretKey: c.String("secret-key"),
				Bucket:    c.String("bucket"),
				Region:    c.String("region"),
				UseSSL:    c.Bool("use-ssl"),
			})
			if err != nil {
				return err
			}

			d := &downloader{client: client, dir: c.String("dir")}
			paths, err := d.download(c.Context, c.String("prefix"), c.String("object"))
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(c.App.Writer, p)
			}
			return nil
		},
	}
}

type downloader struct {
	client storage.ObjectStorage
	dir    string
}

// download fetches one object when override is set, otherwise every
// dataset file under prefix. Local paths mirror the key below prefix.
func (d *downloader) download(ctx context.Context, prefix, override string) ([]string, error) {
	var keys []string

	if override != "" {
		keys = []string{resolveObjectKey(prefix, override)}
	} else {
		listPrefix := strings.TrimSpace(prefix)
		objects, err := d.client.ListObjects(ctx, listPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
		}
		for _, obj := range objects {
			if isDatasetKey(obj.Key) {
				keys = append(keys, obj.Key)
			}
		}
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("no dataset files found for prefix %q", prefix)
	}

	localPaths := make([]string, 0, len(keys))
	for _, key := range keys {
		data, err := d.client.GetObject(ctx, key)
		if err != nil {
			return nil, err
		}

		localPath := filepath.Join(d.dir, filepath.FromSlash(objectRelativePath(prefix, key)))
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
		}
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", localPath, err)
		}

		logger.Log.Info().Str("key", key).Str("path", localPath).Int("bytes", len(data)).Msg("Object downloaded")
		localPaths = append(localPaths, localPath)
	}

	sort.Strings(localPaths)
	return localPaths, nil
}

func isDatasetKey(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	for _, want := range datasetExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

func resolveObjectKey(prefix, override string) string {
	if override == "" {
		return strings.TrimSpace(prefix)
	}
	if prefix == "" {
		return strings.TrimPrefix(strings.TrimSpace(override), "/")
	}

	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	overrideTrimmed := strings.TrimPrefix(strings.TrimSpace(override), "/")

	if strings.HasPrefix(overrideTrimmed, prefixTrimmed+"/") {
		return overrideTrimmed
	}
	return prefixTrimmed + "/" + overrideTrimmed
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" || rel == key {
		return path.Base(key)
	}
	return rel
}
