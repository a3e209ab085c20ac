package main

import (
	"fmt"

	"github.com/godilite/remark-server/internal/config"
	"github.com/godilite/remark-server/internal/repository"
	"github.com/godilite/remark-server/internal/service"
	dbbuilder "github.com/godilite/remark-server/pkg/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const memoryDSN = "file::memory:?cache=shared"

// cli carries the state shared by every subcommand.
type cli struct {
	verbose bool
	dbPath  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "remarkctl",
		Short: "Assign score-band remarks to a class roster",
		Long: `remarkctl classifies roster scores into bands and fills a remark column
from "### MỨC ĐIỂM <band>" sections, either supplied as a text file or
generated from the roster's band distribution.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "Record runs in this sqlite file (default: in-memory, discarded)")

	root.AddCommand(
		newBandsCmd(c),
		newParseCmd(c),
		newAssignCmd(c),
		newAnnotateCmd(c),
	)
	return root
}

func (c *cli) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.verbose {
		c.logger, err = config.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	} else {
		c.logger = zap.NewNop()
	}
	return nil
}

// newService opens the run store and builds the remark service. The caller
// must call the returned close function.
func (c *cli) newService(gen service.Generator) (*service.RemarkService, func(), error) {
	dsn := c.dbPath
	if dsn == "" {
		dsn = memoryDSN
	}

	db, err := dbbuilder.New(
		dbbuilder.WithDriver(c.cfg.DBDriver),
		dbbuilder.WithDataSource(dsn),
		dbbuilder.WithSchema(repository.Schema),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open run store: %w", err)
	}

	svc := service.NewRemarkService(repository.NewRunRepository(db), gen, c.logger,
		service.WithFallback(c.cfg.FallbackRemark),
		service.WithGenerationTimeout(c.cfg.GenerationTimeout),
	)
	return svc, func() { _ = db.Close() }, nil
}
