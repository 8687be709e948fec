// cmd/directoryctl/commands.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func newApp(open opener) *cli.Command {
	return &cli.Command{
		Name:  "directoryctl",
		Usage: "Maintenance tasks for the business directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			newMigrateCommand(open),
			newCreateStaffCommand(open),
			newRecomputeCommand(open),
			newReconcileCommand(open),
			newBackfillCommand(open),
		},
	}
}

// withEnvironment opens the environment around a command action.
func withEnvironment(open opener, migrate bool, fn func(ctx context.Context, env *environment, command *cli.Command) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		env, err := open(ctx, migrate)
		if err != nil {
			return err
		}
		defer env.close()

		if level, err := logrus.ParseLevel(command.String("log-level")); err == nil {
			logrus.SetLevel(level)
		}
		return fn(ctx, env, command)
	}
}

func printJSON(env *environment, v interface{}) error {
	enc := json.NewEncoder(env.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMigrateCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations and seed the staff account",
		Action: withEnvironment(open, true, func(ctx context.Context, env *environment, command *cli.Command) error {
			fmt.Fprintf(env.out, "migrations applied (store: %s)\n", env.cfg.Store.Driver)
			return nil
		}),
	}
}

func newCreateStaffCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "create-staff",
		Usage: "Create a staff account, or promote an existing user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Usage:    "Staff email",
				Required: true,
				Sources:  cli.EnvVars("STAFF_EMAIL"),
			},
			&cli.StringFlag{
				Name:     "password",
				Usage:    "Staff password",
				Required: true,
				Sources:  cli.EnvVars("STAFF_PASSWORD"),
			},
		},
		Action: withEnvironment(open, false, func(ctx context.Context, env *environment, command *cli.Command) error {
			user, err := env.auth.EnsureStaff(ctx, command.String("email"), command.String("password"))
			if err != nil {
				return err
			}
			fmt.Fprintf(env.out, "staff user %s (%s) ready\n", user.Email, user.ID)
			return nil
		}),
	}
}

func newRecomputeCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "recompute",
		Usage: "Rescore listings and promote the ones that became publish-ready",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Recompute every listing",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Recompute a single listing",
			},
		},
		Action: withEnvironment(open, false, func(ctx context.Context, env *environment, command *cli.Command) error {
			all, idStr := command.Bool("all"), command.String("id")
			if all == (idStr != "") {
				return errors.New("exactly one of --all or --id is required")
			}

			var ids []uuid.UUID
			if all {
				var err error
				if ids, err = env.store.ListBusinessIDs(ctx); err != nil {
					return fmt.Errorf("failed to list businesses: %w", err)
				}
			} else {
				id, err := uuid.Parse(idStr)
				if err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
				ids = []uuid.UUID{id}
			}

			var failed int
			for _, id := range ids {
				b, err := env.businesses.RecomputeAsSystem(ctx, id)
				if err != nil {
					failed++
					logrus.WithError(err).WithField("business_id", id).Warn("Recompute failed")
					continue
				}
				fmt.Fprintf(env.out, "%s %s %d%%\n", b.ID, b.ApplicationStatus, b.CompletionPercent)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d listings failed to recompute", failed, len(ids))
			}
			return nil
		}),
	}
}

func newReconcileCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "reconcile-applications",
		Usage: "Rebuild application projections from their listings",
		Action: withEnvironment(open, false, func(ctx context.Context, env *environment, command *cli.Command) error {
			report, err := env.reconcile.ReconcileApplications(ctx)
			if err != nil {
				return err
			}
			return printJSON(env, report)
		}),
	}
}

func newBackfillCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "backfill-businesses",
		Usage: "Create listings for applications whose listing is missing",
		Action: withEnvironment(open, false, func(ctx context.Context, env *environment, command *cli.Command) error {
			report, err := env.reconcile.BackfillMissingBusinesses(ctx)
			if err != nil {
				return err
			}
			return printJSON(env, report)
		}),
	}
}
