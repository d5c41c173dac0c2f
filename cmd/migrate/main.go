package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matst80/plat-finder/pkg/catalogue"
	"github.com/matst80/plat-finder/pkg/directus"
	"github.com/matst80/plat-finder/pkg/messaging"
	"github.com/matst80/plat-finder/pkg/pieces"
	"github.com/matst80/plat-finder/pkg/seed"
	"github.com/matst80/plat-finder/pkg/storage"
	"github.com/matst80/plat-finder/pkg/types"
)

func overrideStore(cfg Config, disk *storage.DiskStorage) types.OverrideStore {
	if cfg.RedisUrl == "" {
		return storage.NewFileOverrideStore(disk)
	}
	return storage.NewRedisOverrideStore(cfg.RedisUrl, cfg.RedisPassword, 0, "designers")
}

func uploader(ctx context.Context, cfg Config, disk *storage.DiskStorage) (catalogue.Uploader, error) {
	if cfg.S3.Bucket == "" {
		return disk, nil
	}
	return storage.NewS3Uploader(ctx, cfg.S3)
}

func notify(ctx context.Context, cfg Config, change messaging.CatalogueChange) error {
	if cfg.RabbitUrl == "" {
		return nil
	}
	conn, err := amqp.Dial(cfg.RabbitUrl)
	if err != nil {
		return err
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err = messaging.DefineTopic(ch, cfg.RabbitPrefix, messaging.CatalogueChanged); err != nil {
		ch.Close()
		return err
	}
	ch.Close()
	return messaging.SendChange(ctx, conn, cfg.RabbitPrefix, messaging.CatalogueChanged, change)
}

// pending lists bundled entries that still need an upload.
func pending(ctx context.Context, entries []types.Entry, store types.OverrideStore, bundle seed.Bundle) ([]types.Entry, error) {
	existing, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]types.Entry, 0)
	for _, e := range entries {
		if e.Image.Kind != types.AssetBundled {
			continue
		}
		if _, ok := existing[e.Id]; ok {
			continue
		}
		if _, err := bundle.Locate(e.Image.Handle); err != nil {
			log.Printf("Missing asset %s for %d: %v", e.Image.Handle, e.Id, err)
			continue
		}
		ret = append(ret, e)
	}
	return ret, nil
}

func runImages(ctx context.Context, cfg Config) error {
	entries, err := seed.Entries(cfg.SeedFile)
	if err != nil {
		return err
	}
	disk := storage.NewDiskStorage("designers", cfg.DataRoot)
	disk.PublicBaseUrl = cfg.PublicBaseUrl
	store := overrideStore(cfg, disk)
	bundle := seed.Bundle{Root: cfg.AssetRoot}

	if cfg.DryRun {
		todo, err := pending(ctx, entries, store, bundle)
		if err != nil {
			return err
		}
		for _, e := range todo {
			fmt.Printf("%d\t%s\n", e.Id, e.Image.Handle)
		}
		fmt.Printf("%d image(s) would be uploaded\n", len(todo))
		return nil
	}

	up, err := uploader(ctx, cfg, disk)
	if err != nil {
		return err
	}
	opts := catalogue.Options{
		Uploader:  up,
		Overrides: store,
		Assets:    bundle,
	}
	if cfg.SupabaseUrl != "" {
		opts.ImageWriter = pieces.NewClient(cfg.SupabaseUrl, cfg.SupabaseKey)
	}
	cat := catalogue.New(ctx, "designers", entries, opts)
	defer cat.Close()

	report, err := cat.MigrateAll(ctx)
	if report != nil {
		if saveErr := disk.SaveMigrationReport(report); saveErr != nil {
			log.Printf("Failed to save migration report: %v", saveErr)
		}
		fmt.Printf("uploaded %d, skipped %d, failed %d\n", report.Uploaded, report.Skipped, report.Failed)
	}
	if err != nil {
		return err
	}
	if report.Uploaded > 0 {
		if err := notify(ctx, cfg, messaging.CatalogueChange{Catalogue: "designers", Reason: "images_migrated"}); err != nil {
			log.Printf("Failed to announce change: %v", err)
		}
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d upload(s) failed", report.Failed)
	}
	return nil
}

func runPrices(ctx context.Context, cfg Config) error {
	if cfg.DirectusUrl == "" {
		return errors.New("directus-url is required")
	}
	client := directus.NewClient(cfg.DirectusUrl, cfg.DirectusToken)
	entries, err := client.FetchEntries(ctx, types.DefaultFetchOptions())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tKEY")
	for _, e := range entries {
		price := "-"
		if e.Price != nil {
			price = fmt.Sprintf("%.2f", *e.Price)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Id, e.Title, price, e.PriceKey)
	}
	return w.Flush()
}

func rootCommand(ctx context.Context) *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Upload bundled designer images and write their urls back",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImages(ctx, loadConfig(v))
		},
	}
	if err := setupFlags(root, v); err != nil {
		log.Fatal(err)
	}

	root.AddCommand(&cobra.Command{
		Use:   "notify <catalogue>",
		Short: "Ask running servers to refresh a catalogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(v)
			if cfg.RabbitUrl == "" {
				return errors.New("rabbit-url is required")
			}
			return notify(ctx, cfg, messaging.CatalogueChange{Catalogue: args[0], Reason: "manual"})
		},
	}, &cobra.Command{
		Use:   "prices",
		Short: "Print the price resolved for every auction row",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrices(ctx, loadConfig(v))
		},
	})
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCommand(ctx).Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
