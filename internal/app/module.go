package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/tripnest/backoffice/internal/app/api/server"
	"github.com/tripnest/backoffice/internal/app/service/discount"
	"github.com/tripnest/backoffice/internal/app/service/report"
	"github.com/tripnest/backoffice/internal/platform/db"
	"github.com/tripnest/backoffice/pkg/config"
	"github.com/tripnest/backoffice/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	discount.Module,
	report.Module,
	server.Module,
)
