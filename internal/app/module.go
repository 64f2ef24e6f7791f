package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/auth"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.auth.enabled") {
		slog.Warn("module auth is disabled, only / and /health are served")
		return
	}

	if err := auth.New(a.ctx, auth.Dependency{
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
		Messaging:  a.messaging,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Mail:       a.mail,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		HMAC:       a.hmac,
		Password:   a.password,
		OTP:        a.otp,
		Clock:      a.clock,
		Validator:  a.validator,
		JWT:        a.jwt,
	}); err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}
}
