package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/xhunter74/collectionmanager/backend/internal/handler"
	"github.com/xhunter74/collectionmanager/backend/internal/itemdoc"
	"github.com/xhunter74/collectionmanager/backend/internal/service"
	"github.com/xhunter74/collectionmanager/backend/internal/storage/dynamo"
	"github.com/xhunter74/collectionmanager/backend/internal/storage/fs"
	"github.com/xhunter74/collectionmanager/backend/internal/storage/mongo"
	"github.com/xhunter74/collectionmanager/backend/internal/storage/pg"
	"github.com/xhunter74/collectionmanager/backend/internal/storage/s3"
	"github.com/xhunter74/collectionmanager/backend/internal/utils/email"
	"github.com/xhunter74/collectionmanager/backend/internal/utils/image"
	"github.com/xhunter74/collectionmanager/shared/config"
	"github.com/xhunter74/collectionmanager/shared/jwt"
	"github.com/xhunter74/collectionmanager/shared/logger"
	mw "github.com/xhunter74/collectionmanager/shared/middleware"
)

// itemStore is an item backend that can be probed and closed.
type itemStore interface {
	service.ItemStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Dependencies holds everything the router and main need.
type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Items   itemStore
	Handler *handler.Handler
	Auth    *mw.Auth
	Jwt     jwt.JwtService
}

// SetupDependencies migrates the database and connects every backend
// selected in the config.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	if err := pg.Migrate(cfg.Private.Pg); err != nil {
		return nil, err
	}
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	items, err := newItemStore(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	blobs, err := newFileStorage(ctx, cfg)
	if err != nil {
		items.Close(ctx)
		storage.Cleanup()
		return nil, err
	}

	var sender service.EmailSender = email.LogSender{}
	if cfg.Private.Email.SMTPServer != "" {
		sender = email.New(&cfg.Private.Email)
	} else {
		logger.Log.Warn("smtp server is not configured, emails are only logged")
	}

	images := image.New(cfg.Public.Image.MaxDimension)
	tokens := jwt.New(cfg.JwtKey(), cfg.Public.Auth.AccessTokenTTL, cfg.Public.Auth.RefreshTokenTTL, cfg.Public.Auth.ResetTokenTTL)
	mapper := itemdoc.MapperOptions{UnknownFields: itemdoc.UnknownFieldPolicy(cfg.Public.ItemStore.UnknownFields)}

	user := service.NewUser(storage, tokens, sender, blobs, images, cfg.Public.SiteURL)
	collection := service.NewCollection(storage, items, blobs)
	field := service.NewField(storage)
	item := service.NewItem(storage, items, mapper)
	file := service.NewFile(storage, blobs, images)

	h := handler.New(user, collection, field, item, file, cfg, handler.Checks{
		"postgres": storage,
		"items":    items,
	})

	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Items:   items,
		Handler: h,
		Auth:    mw.NewAuth(tokens),
		Jwt:     tokens,
	}, nil
}

func newItemStore(ctx context.Context, cfg *config.Config) (itemStore, error) {
	c := cfg.Public.ItemStore
	switch c.Driver {
	case "mongo":
		return mongo.Connect(ctx, cfg.Private.MongoURI, c.MongoDatabase, c.MongoCollection)
	case "dynamodb":
		return dynamo.Connect(ctx, dynamo.Options{
			Table:           c.DynamoTable,
			Region:          c.DynamoRegion,
			Endpoint:        c.DynamoEndpoint,
			AccessKeyID:     cfg.Private.AWS.AccessKeyID,
			SecretAccessKey: cfg.Private.AWS.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown item store driver %q", c.Driver)
	}
}

func newFileStorage(ctx context.Context, cfg *config.Config) (service.FileStorage, error) {
	c := cfg.Public.FileStorage
	switch c.Driver {
	case "local":
		return fs.New(c.Folder)
	case "s3":
		return s3.Connect(ctx, s3.Options{
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			Endpoint:        c.S3Endpoint,
			UsePathStyle:    c.S3UsePathStyle,
			AccessKeyID:     cfg.Private.AWS.AccessKeyID,
			SecretAccessKey: cfg.Private.AWS.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown file storage driver %q", c.Driver)
	}
}

// Cleanup closes the item store and the database pool.
func (d *Dependencies) Cleanup(ctx context.Context) error {
	return errors.Join(d.Items.Close(ctx), d.Storage.Cleanup())
}
