package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/dogmatiq/propertykit/endpoint"
	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/purge"
	"github.com/spf13/cobra"
)

func newSetCommand(s *session) *cobra.Command {
	var asHex bool

	cmd := &cobra.Command{
		Use:   "set <interface> <path> <value>",
		Short: "Store the value of a property",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decodeValue(args[2], asHex)
			if err != nil {
				return err
			}

			return s.store.Store(cmd.Context(), args[0], args[1], value)
		},
	}

	cmd.Flags().BoolVar(&asHex, "hex", false, "the value is hex encoded")

	return cmd
}

func newGetCommand(s *session) *cobra.Command {
	var asHex bool

	cmd := &cobra.Command{
		Use:   "get <interface> <path>",
		Short: "Print the value of a property",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := s.store.Load(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), encodeValue(value, asHex))
			return err
		},
	}

	cmd.Flags().BoolVar(&asHex, "hex", false, "print the value hex encoded")

	return cmd
}

func newContainsCommand(s *session) *cobra.Command {
	var asHex bool

	cmd := &cobra.Command{
		Use:   "contains <interface> <path> <value>",
		Short: "Report whether a property holds exactly the given value",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decodeValue(args[2], asHex)
			if err != nil {
				return err
			}

			ok, err := s.store.Contains(cmd.Context(), args[0], args[1], value)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
			return err
		},
	}

	cmd.Flags().BoolVar(&asHex, "hex", false, "the value is hex encoded")

	return cmd
}

func newDeleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <interface> <path>",
		Short: "Delete a property",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.store.Delete(cmd.Context(), args[0], args[1])
		},
	}
}

func newClearCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every property",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.store.Clear(cmd.Context())
		},
	}
}

func newListCommand(s *session) *cobra.Command {
	var asHex bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every property, ordered by key",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			it, err := s.store.Iterator(cmd.Context())
			if fault.IsNotFound(err) {
				return nil
			} else if err != nil {
				return err
			}
			defer it.Close()

			for {
				p, err := it.Property(cmd.Context())
				if err != nil {
					return err
				}

				if _, err := fmt.Fprintf(
					cmd.OutOrStdout(),
					"%s\t%s\t%s\n",
					p.Interface,
					p.Path,
					encodeValue(p.Value, asHex),
				); err != nil {
					return err
				}

				if !it.HasNext() {
					return nil
				}

				if err := it.Advance(); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().BoolVar(&asHex, "hex", false, "print values hex encoded")

	return cmd
}

func newPurgeListCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-list",
		Short: "Print the payload that announces the device-owned properties",
		Long: `purge-list prints the semicolon-separated list of the device-owned
properties in the store. It requires --interfaces so that ownership is known.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.registry == nil {
				return fault.InvalidArgument("purge-list requires --interfaces")
			}

			keys, err := purge.List(cmd.Context(), s.store, purge.DeviceOwned(s.registry))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), purge.Encode(keys))
			return err
		},
	}
}

func newValidateCommand() *cobra.Command {
	var grammar string

	cmd := &cobra.Command{
		Use:   "validate <template> <path>",
		Short: "Report whether a path matches an endpoint template",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []endpoint.Option
			if grammar != "" {
				opts = append(opts, endpoint.WithParameterGrammar(grammar))
			}

			v, err := endpoint.NewValidator(opts...)
			if err != nil {
				return fault.InvalidArgument("invalid --grammar: %s", err)
			}

			ok, err := v.Validate(args[0], args[1])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
			return err
		},
	}

	cmd.Flags().StringVar(&grammar, "grammar", "", "regular expression that parameter values must match")

	return cmd
}

func decodeValue(s string, asHex bool) ([]byte, error) {
	if !asHex {
		return []byte(s), nil
	}

	v, err := hex.DecodeString(s)
	if err != nil {
		return nil, fault.InvalidArgument("value is not valid hex: %s", err)
	}

	return v, nil
}

func encodeValue(v []byte, asHex bool) string {
	if asHex {
		return hex.EncodeToString(v)
	}
	return strconv.Quote(string(v))
}
