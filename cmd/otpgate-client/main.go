package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shandysiswandi/otpgate/internal/client/api"
	"github.com/shandysiswandi/otpgate/internal/client/cli"
	"github.com/shandysiswandi/otpgate/internal/client/dialog"
	"github.com/shandysiswandi/otpgate/internal/client/session"
	"github.com/shandysiswandi/otpgate/internal/client/storage"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("otpgate-client", pflag.ExitOnError)
	fs.String("server", "http://localhost:5000", "otpgate server URL")
	fs.String("db", "otpgate-client.db", "path of the local session database")
	fs.Int("cooldown", 60, "seconds before a new code can be requested")
	fs.String("log-level", "warn", "debug, info, warn or error")
	_ = fs.Parse(os.Args[1:])

	cfg := config.NewViperEnv(
		config.WithEnvPrefix("OTPGATE"),
		config.WithDefaults(map[string]any{
			"client.server_url":              "http://localhost:5000",
			"client.db":                      "otpgate-client.db",
			"client.resend_cooldown_seconds": 60,
			"client.log_level":               "warn",
		}),
		config.WithPFlags(fs, map[string]string{
			"client.server_url":              "server",
			"client.db":                      "db",
			"client.resend_cooldown_seconds": "cooldown",
			"client.log_level":               "log-level",
		}),
	)
	defer cfg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ins, err := instrument.New(ctx, &instrument.Config{
		ServiceName: "otpgate-client",
		LogLevel:    cfg.GetString("client.log_level"),
		LogWriter:   os.Stderr,
		MaskFields:  []string{"password", "otp", "token"},
	})
	if err != nil {
		return err
	}
	defer func() { _ = ins.Shutdown(context.Background()) }()

	store, err := storage.Open(ctx, cfg.GetString("client.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := api.New(cfg.GetString("client.server_url"))
	if err != nil {
		return err
	}

	sess := session.NewStore(client, store)
	if err := sess.RestoreAuth(ctx); err != nil {
		slog.WarnContext(ctx, "failed to restore session", "error", err)
	}

	dlg := dialog.New(sess, dialog.Options{Cooldown: cfg.GetSecond("client.resend_cooldown_seconds")})

	return cli.New(sess, dlg, os.Stdin, os.Stdout).Run(ctx)
}
