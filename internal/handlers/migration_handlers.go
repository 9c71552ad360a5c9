package handlers

import (
	"net/http"

	"acta/internal/common"
	"acta/internal/logger"
	"acta/pkg/database"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SchemaMigrator applies and reverts the embedded schema migrations.
type SchemaMigrator interface {
	Up() (*database.MigrationStatus, error)
	Down() (*database.MigrationStatus, error)
}

type MigrationHandlers struct {
	migrator SchemaMigrator
}

func NewMigrationHandlers(migrator SchemaMigrator) *MigrationHandlers {
	return &MigrationHandlers{migrator: migrator}
}

// RunMigrations applies all pending migrations.
func (h *MigrationHandlers) RunMigrations(c echo.Context) error {
	status, err := h.migrator.Up()
	if err != nil {
		return common.SendError(c, common.NewInternalError("run migrations", err))
	}
	logger.FromEcho(c).Info("migrations applied", zap.Uint("version", status.Version), zap.Bool("changed", status.Changed))
	return c.JSON(http.StatusOK, status)
}

// RevertMigration rolls back the most recent migration.
func (h *MigrationHandlers) RevertMigration(c echo.Context) error {
	status, err := h.migrator.Down()
	if err != nil {
		return common.SendError(c, common.NewInternalError("revert migration", err))
	}
	logger.FromEcho(c).Info("migration reverted", zap.Uint("version", status.Version), zap.Bool("changed", status.Changed))
	return c.JSON(http.StatusOK, status)
}
