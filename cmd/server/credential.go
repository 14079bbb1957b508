package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCredentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage users' booking credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <user_id> <cookie>",
		Short: "Store the booking cookie of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cookie := strings.TrimSpace(args[1])
			if cookie == "" {
				return fmt.Errorf("cookie must not be empty")
			}
			return withCredentialStore(func(ctx context.Context, s *stores) error {
				return s.credentials.Put(ctx, args[0], cookie)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <user_id>",
		Short: "Remove the booking cookie of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCredentialStore(func(ctx context.Context, s *stores) error {
				return s.credentials.Delete(ctx, args[0])
			})
		},
	})

	return cmd
}

func withCredentialStore(fn func(ctx context.Context, s *stores) error) error {
	cfg, l, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := openStores(ctx, cfg, l, false)
	if err != nil {
		return err
	}
	defer s.close()

	return fn(ctx, s)
}
