package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HTTP        HTTP        `yaml:"http"`
	Log         Log         `yaml:"log"`
	Auth        Auth        `yaml:"auth"`
	Pg          PgPool      `yaml:"pg"`
	ItemStore   ItemStore   `yaml:"item_store"`
	FileStorage FileStorage `yaml:"file_storage"`
	Image       Image       `yaml:"image"`
	SiteURL     string      `yaml:"site_url" validate:"required"`
	// upper bound for multipart bodies of files, images and avatars
	MaxUploadSize int64 `yaml:"max_upload_size" validate:"gt=0"`
}

type HTTP struct {
	Port           int      `yaml:"port" validate:"gt=0,lt=65536"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureCookies  bool     `yaml:"secure_cookies"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Auth struct {
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" validate:"gte=1m,lte=3h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" validate:"gte=1h,lte=168h"`
	ResetTokenTTL   time.Duration `yaml:"reset_token_ttl" validate:"gt=0"`
}

type PgPool struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

type ItemStore struct {
	Driver string `yaml:"driver" validate:"oneof=mongo dynamodb"`
	// ignore: unknown item input names are skipped, reject: they fail with 400
	UnknownFields   string `yaml:"unknown_fields" validate:"oneof=ignore reject"`
	MongoDatabase   string `yaml:"mongo_database" validate:"required_if=Driver mongo"`
	MongoCollection string `yaml:"mongo_collection"`
	DynamoTable     string `yaml:"dynamo_table" validate:"required_if=Driver dynamodb"`
	DynamoRegion    string `yaml:"dynamo_region"`
	DynamoEndpoint  string `yaml:"dynamo_endpoint"`
}

type FileStorage struct {
	Driver         string `yaml:"driver" validate:"oneof=local s3"`
	Folder         string `yaml:"folder" validate:"required_if=Driver local"`
	S3Bucket       string `yaml:"s3_bucket" validate:"required_if=Driver s3"`
	S3Region       string `yaml:"s3_region"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style"`
}

type Image struct {
	// longest side of converted png, 0 keeps original size
	MaxDimension int `yaml:"max_dimension" validate:"gte=0"`
}

type Private struct {
	JwtKey   string `yaml:"jwt_key" validate:"required,min=16"`
	Pg       Pg     `yaml:"pg"`
	MongoURI string `yaml:"mongo_uri"`
	Email    Email  `yaml:"email"`
	AWS      AWS    `yaml:"aws"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"gt=0"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"` // seconds
}

type AWS struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) AccessTokenTTL() time.Duration {
	return c.Public.Auth.AccessTokenTTL
}

func loadPath(configPath string, output interface{}) error {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml (required) and private.yaml (optional), then applies
// .env and CM_* environment overrides for secrets.
func Load(configFolder string) (*Config, error) {
	cfg := &Config{Public: defaultPublic()}

	if err := loadPath(path.Join(configFolder, "public.yaml"), &cfg.Public); err != nil {
		return nil, err
	}

	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		if err := loadPath(privatePath, &cfg.Private); err != nil {
			return nil, err
		}
	}

	// .env never overrides variables already set in the process environment
	envPath := path.Join(configFolder, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("can't load %s: %w", envPath, err)
		}
	}
	if err := applyEnv(&cfg.Private); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func defaultPublic() Public {
	return Public{
		HTTP: HTTP{Port: 8080},
		Log:  Log{Level: "info"},
		Auth: Auth{
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
			ResetTokenTTL:   30 * time.Minute,
		},
		ItemStore:     ItemStore{Driver: "mongo", UnknownFields: "ignore", MongoCollection: "collection_items"},
		FileStorage:   FileStorage{Driver: "local"},
		MaxUploadSize: 10 << 20,
	}
}

func applyEnv(p *Private) error {
	overrides := map[string]*string{
		"CM_JWT_KEY":               &p.JwtKey,
		"CM_PG_HOST":               &p.Pg.Host,
		"CM_PG_USER":               &p.Pg.User,
		"CM_PG_PASSWORD":           &p.Pg.Password,
		"CM_PG_DBNAME":             &p.Pg.Dbname,
		"CM_MONGO_URI":             &p.MongoURI,
		"CM_SMTP_SERVER":           &p.Email.SMTPServer,
		"CM_SMTP_USERNAME":         &p.Email.Username,
		"CM_SMTP_PASSWORD":         &p.Email.Password,
		"CM_AWS_ACCESS_KEY_ID":     &p.AWS.AccessKeyID,
		"CM_AWS_SECRET_ACCESS_KEY": &p.AWS.SecretAccessKey,
	}
	for name, target := range overrides {
		if v, ok := os.LookupEnv(name); ok {
			*target = v
		}
	}

	ints := map[string]*int{
		"CM_PG_PORT":   &p.Pg.Port,
		"CM_SMTP_PORT": &p.Email.SMTPPort,
	}
	for name, target := range ints {
		if v, ok := os.LookupEnv(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", name, err)
			}
			*target = n
		}
	}
	return nil
}
