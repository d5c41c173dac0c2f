package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/matst80/plat-finder/pkg/auth"
	"github.com/matst80/plat-finder/pkg/catalogue"
	"github.com/matst80/plat-finder/pkg/common"
	"github.com/matst80/plat-finder/pkg/directus"
	"github.com/matst80/plat-finder/pkg/messaging"
	"github.com/matst80/plat-finder/pkg/pieces"
	"github.com/matst80/plat-finder/pkg/seed"
	"github.com/matst80/plat-finder/pkg/server"
	"github.com/matst80/plat-finder/pkg/storage"
	"github.com/matst80/plat-finder/pkg/tracking"
	"github.com/matst80/plat-finder/pkg/types"
)

var enableProfiling = flag.Bool("profiling", false, "enable profiling endpoints")
var useMockAuth = flag.Bool("mock-auth", false, "let every admin request through")
var listenAddress = ":8080"
var debugAddress = ":8081"

var rabbitUrl = os.Getenv("RABBIT_URL")
var rabbitPrefix = envOr("RABBIT_PREFIX", "plat")
var redisUrl = os.Getenv("REDIS_URL")
var redisPassword = os.Getenv("REDIS_PASSWORD")
var directusUrl = os.Getenv("DIRECTUS_URL")
var directusToken = os.Getenv("DIRECTUS_TOKEN")
var supabaseUrl = os.Getenv("SUPABASE_URL")
var supabaseKey = os.Getenv("SUPABASE_KEY")
var firebaseCredentials = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
var dataRoot = envOr("DATA_ROOT", "data")
var assetRoot = envOr("ASSET_ROOT", "assets")
var publicBaseUrl = os.Getenv("PUBLIC_BASE_URL")
var designersSeed = os.Getenv("DESIGNERS_SEED")
var auctionSeed = os.Getenv("AUCTION_SEED")

var s3Config = storage.S3Config{
	Region:        os.Getenv("S3_REGION"),
	Endpoint:      os.Getenv("S3_ENDPOINT"),
	AccessKey:     os.Getenv("S3_ACCESS_KEY"),
	SecretKey:     os.Getenv("S3_SECRET_KEY"),
	Bucket:        os.Getenv("S3_BUCKET"),
	Prefix:        os.Getenv("S3_PREFIX"),
	PublicBaseUrl: os.Getenv("S3_PUBLIC_URL"),
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newTracking() types.Tracking {
	if rabbitUrl == "" {
		return tracking.LogTracking{}
	}
	trk, err := tracking.NewRabbitTracking(rabbitUrl, rabbitPrefix)
	if err != nil {
		log.Printf("Failed to connect rabbit tracking, logging events instead: %v", err)
		return tracking.LogTracking{}
	}
	return tracking.NewQueuedTracking(trk, 50, 2*time.Second)
}

func newOverrides(collection string, disk *storage.DiskStorage) types.OverrideStore {
	if redisUrl == "" {
		return storage.NewFileOverrideStore(disk)
	}
	log.Printf("Image overrides stored in redis, url: %s", redisUrl)
	return storage.NewRedisOverrideStore(redisUrl, redisPassword, 0, collection)
}

func newUploader(ctx context.Context, disk *storage.DiskStorage) catalogue.Uploader {
	if s3Config.Bucket == "" {
		log.Printf("No S3_BUCKET set, storing uploads in %s", dataRoot)
		return disk
	}
	uploader, err := storage.NewS3Uploader(ctx, s3Config)
	if err != nil {
		log.Fatalf("Failed to create s3 uploader: %v", err)
	}
	return uploader
}

func newSessions(ctx context.Context) auth.SessionChecker {
	if firebaseCredentials == "" {
		return auth.NoSessions{}
	}
	sessions, err := auth.NewFirebaseSessions(ctx, firebaseCredentials)
	if err != nil {
		log.Printf("Failed to init firebase sessions: %v", err)
		return auth.NoSessions{}
	}
	return sessions
}

func newAuth() auth.AuthHandler {
	if *useMockAuth {
		log.Println("Mock auth enabled, admin routes are open")
		return &auth.MockAuth{}
	}
	googleAuth, err := auth.NewGoogleAuth(auth.GoogleConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to configure admin login: %v", err)
	}
	return googleAuth
}

func designers(ctx context.Context, trk types.Tracking) *server.Collection {
	entries, err := seed.Entries(designersSeed)
	if err != nil {
		log.Fatalf("Failed to load bundled designers: %v", err)
	}
	disk := storage.NewDiskStorage("designers", dataRoot)
	disk.PublicBaseUrl = publicBaseUrl
	opts := catalogue.Options{
		Uploader:  newUploader(ctx, disk),
		Overrides: newOverrides("designers", disk),
		Assets:    seed.Bundle{Root: assetRoot},
		Tracking:  trk,
	}
	col := &server.Collection{Reports: disk}
	if supabaseUrl != "" {
		client := pieces.NewClient(supabaseUrl, supabaseKey)
		opts.Fetcher = client
		opts.ImageWriter = client
		col.Remote = client
	}
	col.Catalogue = catalogue.New(ctx, "designers", entries, opts)
	return col
}

func auction(ctx context.Context, trk types.Tracking) *server.Collection {
	var entries []types.Entry
	if auctionSeed != "" {
		var err error
		if entries, err = seed.Load(auctionSeed); err != nil {
			log.Printf("Failed to load auction seed %s: %v", auctionSeed, err)
		}
	}
	disk := storage.NewDiskStorage("auction", dataRoot)
	opts := catalogue.Options{
		Overrides: storage.NewFileOverrideStore(disk),
		Tracking:  trk,
	}
	col := &server.Collection{Reports: disk}
	if directusUrl != "" {
		client := directus.NewClient(directusUrl, directusToken)
		opts.Fetcher = client
		col.Remote = client
	}
	col.Catalogue = catalogue.New(ctx, "auction", entries, opts)
	return col
}

func listenForChanges(srv *server.WebServer) (*amqp.Connection, error) {
	conn, err := amqp.Dial(rabbitUrl)
	if err != nil {
		return nil, err
	}
	err = messaging.ListenForChanges(conn, rabbitPrefix, func(change messaging.CatalogueChange) error {
		col, ok := srv.Collections[change.Catalogue]
		if !ok {
			log.Printf("Ignoring change for unknown catalogue %s", change.Catalogue)
			return nil
		}
		log.Printf("Catalogue %s changed (%s), refreshing", change.Catalogue, change.Reason)
		return col.Catalogue.Refresh(context.Background())
	})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func main() {
	flag.Parse()
	ctx := context.Background()

	trk := newTracking()
	srv := server.NewWebServer(trk, newSessions(ctx), newAuth())
	srv.AddCollection(designers(ctx, trk))
	srv.AddCollection(auction(ctx, trk))

	for _, col := range srv.Collections {
		go func(c *catalogue.Catalogue) {
			if err := c.Refresh(ctx); err != nil {
				log.Printf("Initial refresh of %s failed: %v", c.Name(), err)
			}
		}(col.Catalogue)
	}

	var changes *amqp.Connection
	if rabbitUrl != "" {
		conn, err := listenForChanges(srv)
		if err != nil {
			log.Printf("Failed to listen for catalogue changes: %v", err)
		} else {
			changes = conn
		}
	}

	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())
	if *enableProfiling {
		log.Println("Profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	timeouts := common.LoadTimeoutConfig(common.DefaultTimeoutConfig())
	api := common.NewServer(listenAddress, srv.Handle(), timeouts)
	debug := common.NewServer(debugAddress, debugMux, timeouts)

	common.RunServerWithShutdown(api, "plat-finder", timeouts, []common.ShutdownHook{
		func(ctx context.Context) error {
			for _, col := range srv.Collections {
				col.Catalogue.Close()
			}
			return nil
		},
		func(ctx context.Context) error {
			if changes == nil {
				return nil
			}
			return changes.Close()
		},
		func(ctx context.Context) error {
			return trk.Close()
		},
	}, debug)
}
