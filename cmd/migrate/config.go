package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matst80/plat-finder/pkg/storage"
)

type Config struct {
	SupabaseUrl   string
	SupabaseKey   string
	DirectusUrl   string
	DirectusToken string
	RedisUrl      string
	RedisPassword string
	RabbitUrl     string
	RabbitPrefix  string
	AssetRoot     string
	DataRoot      string
	PublicBaseUrl string
	S3            storage.S3Config
	SeedFile      string
	DryRun        bool
}

// setupFlags binds every flag to viper so PLAT_<FLAG> env values apply when
// the flag is not given.
func setupFlags(cmd *cobra.Command, v *viper.Viper) error {
	f := cmd.PersistentFlags()
	f.String("supabase-url", "", "base url of the pieces api")
	f.String("supabase-key", "", "api key for the pieces api")
	f.String("directus-url", "", "base url of the auction api")
	f.String("directus-token", "", "static token for the auction api")
	f.String("redis-url", "", "redis address for image overrides, file store when empty")
	f.String("redis-password", "", "redis password")
	f.String("rabbit-url", "", "amqp url used to announce catalogue changes")
	f.String("rabbit-prefix", "plat", "exchange prefix")
	f.String("asset-root", "assets", "folder holding the bundled images")
	f.String("data-root", "data", "folder for reports and local uploads")
	f.String("public-base-url", "", "public url of local uploads")
	f.String("s3-bucket", "", "bucket for uploaded images, local disk when empty")
	f.String("s3-region", "auto", "bucket region")
	f.String("s3-endpoint", "", "custom s3 endpoint")
	f.String("s3-access-key", "", "s3 access key")
	f.String("s3-secret-key", "", "s3 secret key")
	f.String("s3-prefix", "designers", "object key prefix")
	f.String("s3-public-url", "", "public url of the bucket")
	f.String("seed", "", "json file with the entries to migrate, bundled designers when empty")
	f.Bool("dry-run", false, "list what would be uploaded without uploading")

	v.SetEnvPrefix("PLAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(f); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

func loadConfig(v *viper.Viper) Config {
	return Config{
		SupabaseUrl:   v.GetString("supabase-url"),
		SupabaseKey:   v.GetString("supabase-key"),
		DirectusUrl:   v.GetString("directus-url"),
		DirectusToken: v.GetString("directus-token"),
		RedisUrl:      v.GetString("redis-url"),
		RedisPassword: v.GetString("redis-password"),
		RabbitUrl:     v.GetString("rabbit-url"),
		RabbitPrefix:  v.GetString("rabbit-prefix"),
		AssetRoot:     v.GetString("asset-root"),
		DataRoot:      v.GetString("data-root"),
		PublicBaseUrl: v.GetString("public-base-url"),
		S3: storage.S3Config{
			Region:        v.GetString("s3-region"),
			Endpoint:      v.GetString("s3-endpoint"),
			AccessKey:     v.GetString("s3-access-key"),
			SecretKey:     v.GetString("s3-secret-key"),
			Bucket:        v.GetString("s3-bucket"),
			Prefix:        v.GetString("s3-prefix"),
			PublicBaseUrl: v.GetString("s3-public-url"),
		},
		SeedFile: v.GetString("seed"),
		DryRun:   v.GetBool("dry-run"),
	}
}
