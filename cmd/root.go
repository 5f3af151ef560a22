package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/posfoundry/tablepos/internal/events"
	"github.com/posfoundry/tablepos/internal/models"
	"github.com/posfoundry/tablepos/internal/pos"
	"github.com/posfoundry/tablepos/internal/repositories"
	"github.com/posfoundry/tablepos/internal/repositories/jsonfile"
	"github.com/posfoundry/tablepos/internal/repositories/postgres"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tablepos",
	Short: "Runs the point-of-sale order/table lifecycle engine for a branch",
	Long:  `tablepos hosts the order and table lifecycle engine for one restaurant branch: it loads the branch's tables and orders, keeps the incoming customer-order queue polled, emits lifecycle events, and archives settled order history.`,
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

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		gateway, catalog, cleanup, err := buildStorage(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		sink, closeSink, err := buildSink(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing event sinks: %v\n", err)
			os.Exit(1)
		}
		defer closeSink()

		runner := pos.NewRunner(cfg, gateway, catalog, sink)
		if err := runner.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting session: %v\n", err)
			os.Exit(1)
		}
		log.Printf("branch %s session started (%d tables, %d current orders)",
			cfg.BranchID, len(runner.Tables()), len(runner.ActiveOrders()))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		runner.Stop()
		log.Printf("branch %s session stopped", cfg.BranchID)
	},
}

func buildStorage(ctx context.Context, cfg *models.Config) (repositories.Gateway, repositories.Catalog, func(), error) {
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
		return postgres.NewGateway(pool), postgres.NewMenuItemRepository(pool), pool.Close, nil
	case "file":
		gateway := jsonfile.NewGateway(cfg.DataDir)
		return gateway, jsonfile.NewCatalog(cfg.DataDir), func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage)
	}
}

func buildSink(cfg *models.Config) (events.Sink, func(), error) {
	var sinks events.Fanout
	var closers []func() error

	if cfg.ConsoleEvents {
		sinks = append(sinks, &events.ConsoleSink{})
	}
	if cfg.EventDir != "" {
		fs := events.NewFileSink(cfg.EventDir)
		sinks = append(sinks, fs)
		closers = append(closers, fs.Close)
	}
	if cfg.KafkaEnabled {
		kafka, err := events.NewKafkaSink(cfg.KafkaBrokerList)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, kafka)
		closers = append(closers, kafka.Close)
	}
	if cfg.EventLogEnabled {
		pg, err := events.NewPostgresSink(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, pg)
		closers = append(closers, pg.Close)
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Printf("error closing event sink: %v", err)
			}
		}
	}
	if len(sinks) == 0 {
		return events.Discard{}, closeAll, nil
	}
	return sinks, closeAll, nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.PersistentFlags().String("branch-id", "", "Branch to operate on")
	rootCmd.PersistentFlags().String("storage", "file", "Storage backend: postgres or file")
	rootCmd.PersistentFlags().String("data-dir", "data", "Data directory for file storage")
	rootCmd.Flags().Float64("tax-rate", 0.08, "Tax rate applied after discount")
	rootCmd.Flags().Duration("poll-interval", 0, "Incoming customer-order poll interval")
	rootCmd.Flags().Bool("kafka-enabled", false, "Publish lifecycle events to Kafka")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().Bool("event-log-enabled", false, "Append lifecycle events to the postgres audit table")
	rootCmd.Flags().Bool("console-events", false, "Print lifecycle events to stdout")
	rootCmd.Flags().String("event-dir", "", "Directory for per-topic lifecycle event files")

	viper.BindPFlag("branch_id", rootCmd.PersistentFlags().Lookup("branch-id"))
	viper.BindPFlag("storage", rootCmd.PersistentFlags().Lookup("storage"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("tax_rate", rootCmd.Flags().Lookup("tax-rate"))
	viper.BindPFlag("poll_interval", rootCmd.Flags().Lookup("poll-interval"))
	viper.BindPFlag("kafka_enabled", rootCmd.Flags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka_broker_list", rootCmd.Flags().Lookup("kafka-broker-list"))
	viper.BindPFlag("event_log_enabled", rootCmd.Flags().Lookup("event-log-enabled"))
	viper.BindPFlag("console_events", rootCmd.Flags().Lookup("console-events"))
	viper.BindPFlag("event_dir", rootCmd.Flags().Lookup("event-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
