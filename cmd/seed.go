package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/posfoundry/tablepos/internal/factories"
	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/repositories"
	"github.com/posfoundry/tablepos/internal/repositories/jsonfile"
	"github.com/posfoundry/tablepos/internal/repositories/postgres"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bulk-generates the table layout and menu catalog for a branch",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cfg.BranchID == "" {
			fmt.Fprintln(os.Stderr, "branch_id is required")
			os.Exit(1)
		}

		ctx := context.Background()
		tableRepo, menuRepo, cleanup, err := buildSeedRepos(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		if err := seedBranch(ctx, cfg, tableRepo, menuRepo); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding branch: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("seeded branch %s: %d tables, %d menu items\n",
			cfg.BranchID, cfg.Seed.Tables, cfg.Seed.MenuItems)
	},
}

func buildSeedRepos(ctx context.Context, cfg *models.Config) (repositories.TableRepository, repositories.MenuItemRepository, func(), error) {
	switch cfg.Storage {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return postgres.NewTableRepository(pool), postgres.NewMenuItemRepository(pool), pool.Close, nil
	case "file":
		gateway := jsonfile.NewGateway(cfg.DataDir)
		return jsonfile.NewTableRepository(gateway), jsonfile.NewCatalog(cfg.DataDir), func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage)
	}
}

func seedBranch(ctx context.Context, cfg *models.Config, tableRepo repositories.TableRepository, menuRepo repositories.MenuItemRepository) error {
	tableFactory := &factories.TableFactory{}
	menuItemFactory := &factories.MenuItemFactory{}

	bar := progressbar.Default(int64(cfg.Seed.Tables+cfg.Seed.MenuItems), "seeding branch")

	tables := make([]*models.Table, 0, cfg.Seed.Tables)
	for i := 0; i < cfg.Seed.Tables; i++ {
		tables = append(tables, tableFactory.CreateTable(cfg.BranchID, i+1, cfg))
		bar.Add(1)
	}
	if err := tableRepo.BulkCreate(ctx, tables); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	menuItems := make([]*models.MenuItem, 0, cfg.Seed.MenuItems)
	for i := 0; i < cfg.Seed.MenuItems; i++ {
		menuItems = append(menuItems, menuItemFactory.CreateMenuItem(cfg.BranchID))
		bar.Add(1)
	}
	if err := menuRepo.BulkCreate(ctx, menuItems); err != nil {
		return fmt.Errorf("creating menu items: %w", err)
	}
	return nil
}

func init() {
	seedCmd.Flags().Int("tables", 20, "Number of tables to generate")
	seedCmd.Flags().Int("menu-items", 40, "Number of menu items to generate")
	viper.BindPFlag("seed.tables", seedCmd.Flags().Lookup("tables"))
	viper.BindPFlag("seed.menu_items", seedCmd.Flags().Lookup("menu-items"))

	rootCmd.AddCommand(seedCmd)
}
