// Package gormhost builds the project in memory and persists the finished
// project through GORM when it ends.
package gormhost

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/database"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/host/memory"
	"github.com/gfox0104/AetPlugin/internal/model"
	"github.com/gfox0104/AetPlugin/internal/model/convert"
	"gorm.io/gorm"
)

// Dependencies holds the collaborators of the backend.
type Dependencies struct {
	DB     *gorm.DB
	Memory config.MemoryConfig
	Logger *slog.Logger
}

// Backend authors into an embedded memory backend and stores the result.
type Backend struct {
	*memory.Backend
	db        *gorm.DB
	logger    *slog.Logger
	projectID uint
}

var _ host.Backend = (*Backend)(nil)

// New creates a GORM backend.
func New(deps Dependencies) *Backend {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		Backend: memory.New(deps.Memory),
		db:      deps.DB,
		logger:  logger,
	}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return errors.New("gorm host: no database")
	}
	return database.Migrate(b.db)
}

// BeginProject starts a new project and forgets the last stored ID.
func (b *Backend) BeginProject(info host.ProjectInfo) error {
	b.projectID = 0
	return b.Backend.BeginProject(info)
}

// EndProject stores the project in one transaction, then runs the memory
// backend's export.
func (b *Backend) EndProject() error {
	snapshot := b.Snapshot()
	row, err := convert.ProjectToGorm(snapshot)
	if err != nil {
		return fmt.Errorf("failed to convert project: %w", err)
	}

	err = b.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store project %q: %w", snapshot.Info.Name, err)
	}
	b.projectID = row.ID

	b.logger.Info("Project stored",
		"project", snapshot.Info.Name,
		"id", row.ID,
		"comps", len(row.Comps),
		"footage", len(row.Footage))

	return b.Backend.EndProject()
}

// ProjectID returns the row ID of the last stored project, or 0.
func (b *Backend) ProjectID() uint {
	return b.projectID
}

// DB returns the database the backend stores into.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// LoadProject reads a stored project back.
func LoadProject(db *gorm.DB, id uint) (host.Project, error) {
	var row model.Project
	err := db.
		Preload("Folders").
		Preload("Footage").
		Preload("Comps.Layers.Streams.Keyframes").
		First(&row, id).Error
	if err != nil {
		return host.Project{}, fmt.Errorf("failed to load project %d: %w", id, err)
	}
	return convert.GormToProject(row)
}
