package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/webdsl/internal/build"
	"github.com/vango-dev/webdsl/internal/config"
	"github.com/vango-dev/webdsl/internal/errors"
	"github.com/vango-dev/webdsl/internal/publish"
)

func publishCmd() *cobra.Command {
	var (
		s3     config.S3Config
		redis  config.RedisConfig
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "publish [dir]",
		Short: "Build the site and upload it",
		Long: `Build the site and write every page, the stylesheet and the manifest
to the configured targets.

Targets come from the publish section of webdsl.yaml; flags override it.
S3 credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN.

Examples:
  webdsl publish --s3-bucket=my-site --s3-prefix=www
  webdsl publish --redis-addr=localhost:6379 --redis-ttl=24h`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(projectDir(args))
			if err != nil {
				return err
			}
			mergeTargets(&p.cfg.Publish, s3, redis)
			return runPublish(p, verify)
		},
	}

	cmd.Flags().StringVar(&s3.Bucket, "s3-bucket", "", "S3 bucket")
	cmd.Flags().StringVar(&s3.Prefix, "s3-prefix", "", "S3 key prefix")
	cmd.Flags().StringVar(&s3.Region, "s3-region", "", "S3 region")
	cmd.Flags().StringVar(&s3.Endpoint, "s3-endpoint", "", "S3 endpoint for S3-compatible stores")
	cmd.Flags().StringVar(&redis.Addr, "redis-addr", "", "Redis address")
	cmd.Flags().StringVar(&redis.Password, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&redis.DB, "redis-db", 0, "Redis database")
	cmd.Flags().StringVar(&redis.Prefix, "redis-prefix", "", "Redis key prefix")
	cmd.Flags().DurationVar(&redis.TTL, "redis-ttl", 0, "Expiry of published keys (0 keeps them)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the output before uploading")

	return cmd
}

// mergeTargets applies the flag values that were set.
func mergeTargets(dst *config.PublishConfig, s3 config.S3Config, redis config.RedisConfig) {
	if s3.Bucket != "" {
		dst.S3.Bucket = s3.Bucket
	}
	if s3.Prefix != "" {
		dst.S3.Prefix = s3.Prefix
	}
	if s3.Region != "" {
		dst.S3.Region = s3.Region
	}
	if s3.Endpoint != "" {
		dst.S3.Endpoint = s3.Endpoint
	}
	if redis.Addr != "" {
		dst.Redis.Addr = redis.Addr
	}
	if redis.Password != "" {
		dst.Redis.Password = redis.Password
	}
	if redis.DB != 0 {
		dst.Redis.DB = redis.DB
	}
	if redis.Prefix != "" {
		dst.Redis.Prefix = redis.Prefix
	}
	if redis.TTL != 0 {
		dst.Redis.TTL = redis.TTL
	}
}

// targets opens a sink per configured target. The returned function
// releases them.
func targets(cfg config.PublishConfig) ([]publish.Sink, []string, func()) {
	var (
		sinks []publish.Sink
		names []string
		closers []func() error
	)
	if cfg.S3.Bucket != "" {
		sinks = append(sinks, publish.NewS3Sink(publish.NewS3Client(cfg.S3), cfg.S3.Bucket, cfg.S3.Prefix))
		names = append(names, "s3://"+cfg.S3.Bucket+"/"+cfg.S3.Prefix)
	}
	if cfg.Redis.Addr != "" {
		opts := []publish.RedisOption{publish.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, publish.WithPrefix(cfg.Redis.Prefix))
		}
		rs := publish.NewRedisSink(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		sinks = append(sinks, rs)
		names = append(names, "redis://"+cfg.Redis.Addr+"/"+rs.Key(""))
		closers = append(closers, rs.Close)
	}
	return sinks, names, func() {
		for _, c := range closers {
			_ = c()
		}
	}
}

func runPublish(p *project, verify bool) error {
	sinks, names, release := targets(p.cfg.Publish)
	defer release()
	if len(sinks) == 0 {
		return errors.New("E401").
			WithDetail("no publish target configured").
			WithSuggestion("Set publish.s3.bucket or publish.redis.addr in webdsl.yaml, or pass --s3-bucket or --redis-addr.")
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	sink := publish.Multi(sinks...)
	result, err := p.build(ctx, build.Options{
		Verify:     verify,
		Sink:       sink,
		OnProgress: func(step string) { info(step) },
	})
	if err != nil {
		return err
	}
	if err := build.WriteManifest(ctx, sink, result); err != nil {
		return err
	}

	success("Published %d files in %s", len(result.Manifest)+1, time.Since(start).Round(time.Millisecond))
	for _, name := range names {
		info("→ %s", name)
	}
	return nil
}
