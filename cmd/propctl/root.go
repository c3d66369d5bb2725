package main

import (
	"errors"

	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/property"
	"github.com/dogmatiq/propertykit/schema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// session is the state shared by the subcommands during one invocation.
type session struct {
	config   *Config
	logger   *logrus.Logger
	registry *schema.Registry
	store    *property.Store
	close    func() error
}

func newRootCommand() *cobra.Command {
	s := &session{}

	root := &cobra.Command{
		Use:   "propctl",
		Short: "Inspect and modify a property store",
		Long: `propctl reads and writes the properties held by a property store, using
any of the supported key/value backends.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "configuration file path")
	flags.String("backend", "", "key/value backend (memory, badger, pebble, sqlite, postgres, dynamodb, s3)")
	flags.String("data-dir", "", "data directory for the embedded backends")
	flags.String("namespace", "", "namespace of the property store")
	flags.Bool("exclusive", false, "treat the namespace as dedicated to the property store")
	flags.String("interfaces", "", "directory of interface definitions")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fault.InvalidArgument("%s", err)
	})

	root.AddCommand(
		s.storeCommand(newSetCommand(s)),
		s.storeCommand(newGetCommand(s)),
		s.storeCommand(newContainsCommand(s)),
		s.storeCommand(newDeleteCommand(s)),
		s.storeCommand(newClearCommand(s)),
		s.storeCommand(newListCommand(s)),
		s.storeCommand(newPurgeListCommand(s)),
		newValidateCommand(),
	)

	return root
}

// storeCommand arranges for the property store to be opened before cmd runs
// and closed afterwards.
func (s *session) storeCommand(cmd *cobra.Command) *cobra.Command {
	run := cmd.RunE

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		if err := s.open(cmd); err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, s.shutdown())
		}()

		return run(cmd, args)
	}

	return cmd
}

func (s *session) open(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s.config = cfg
	s.logger = setupLogging(cfg.LogLevel)

	var opts []property.Option

	if cfg.Namespace != "" {
		opts = append(opts, property.WithNamespace(cfg.Namespace))
	}

	if cfg.Exclusive {
		opts = append(opts, property.WithExclusiveNamespace())
	}

	if cfg.Interfaces != "" {
		s.registry = &schema.Registry{}
		if err := s.registry.LoadDir(cfg.Interfaces); err != nil {
			return err
		}

		s.logger.
			WithField("count", s.registry.Len()).
			Debug("loaded interface definitions")

		opts = append(opts, property.WithSchema(s.registry, nil))
	}

	backend, closeBackend, err := openBackend(cmd.Context(), cfg, s.logger)
	if err != nil {
		return err
	}

	store, err := property.Open(cmd.Context(), backend, opts...)
	if err != nil {
		return errors.Join(err, closeBackend())
	}

	s.store = store
	s.close = closeBackend

	return nil
}

func (s *session) shutdown() error {
	if s.store == nil {
		return nil
	}

	err := s.store.Close()
	s.store = nil

	if cerr := s.close(); cerr != nil {
		return errors.Join(err, fault.Internal(cerr, "unable to close backend"))
	}

	return err
}

// exactArgs is [cobra.ExactArgs] with errors classified as invalid
// arguments.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return fault.InvalidArgument("%s", err)
		}
		return nil
	}
}
