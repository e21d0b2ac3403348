package setup

import (
	"context"

	"github.com/boardlink-dev/boardlink/internal/config"
	"github.com/boardlink-dev/boardlink/internal/handler"
	"github.com/boardlink-dev/boardlink/internal/service"
	"github.com/boardlink-dev/boardlink/internal/storage/pg"
	"github.com/boardlink-dev/boardlink/internal/storage/redis"
	"github.com/boardlink-dev/boardlink/internal/storage/s3"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Boards  *redis.Storage
	Links   *pg.Storage
	Handler *handler.Handler
	Sweeper *service.Sweeper
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	boards := redis.New(redis.Config{
		Addr:     cfg.Public.Redis.Addr,
		DB:       cfg.Public.Redis.DB,
		Password: cfg.Private.RedisPassword,
		TTL:      cfg.BoardTTL(),
	})

	links, err := pg.New(cfg.Public.Pg, cfg.Private.PgPassword)
	if err != nil {
		boards.Close()
		return nil, err
	}

	blobs, err := s3.New(ctx, s3.Config{
		Endpoint:  cfg.Public.Minio.Endpoint,
		AccessKey: cfg.Public.Minio.AccessKey,
		SecretKey: cfg.Private.MinioSecretKey,
		Bucket:    cfg.Public.Minio.Bucket,
		Region:    cfg.Public.Minio.Region,
		UseSSL:    cfg.Public.Minio.UseSSL,
		PublicURL: cfg.Public.Minio.PublicURL,
	})
	if err != nil {
		boards.Close()
		links.Close()
		return nil, err
	}

	board := service.NewBoard(boards)
	share := service.NewShare(links, cfg.Public.Share.DefaultExpirySeconds, cfg.Public.Share.MaxExpirySeconds)
	media := service.NewMedia(blobs, board, cfg.Public.Board.MaxUploadBytes)

	h := handler.New(board, media, share, cfg, boards, links)

	return &Dependencies{
		Boards:  boards,
		Links:   links,
		Handler: h,
		Sweeper: service.NewSweeper(share),
	}, nil
}

// Cleanup closes every storage connection.
func (d *Dependencies) Cleanup() {
	if d.Boards != nil {
		d.Boards.Close()
	}
	if d.Links != nil {
		d.Links.Close()
	}
}
