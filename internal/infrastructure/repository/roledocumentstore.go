package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clarion/internal/domain/role"
	"clarion/internal/infrastructure/persistence/models"
)

const roleCollectionKey = "roles"

// RoleDocumentStore persists the role collection as one JSON document row.
type RoleDocumentStore struct {
	db *gorm.DB
}

func NewRoleDocumentStore(db *gorm.DB) (role.Store, error) {
	if err := db.AutoMigrate(&models.RoleCollectionModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate role collection table: %w", err)
	}
	return &RoleDocumentStore{db: db}, nil
}

func (s *RoleDocumentStore) Load(ctx context.Context) (map[string]*role.Role, error) {
	var model models.RoleCollectionModel
	err := s.db.WithContext(ctx).Where("`key` = ?", roleCollectionKey).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]*role.Role{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load role collection: %w", err)
	}

	var doc map[string]persistedRole
	if err := json.Unmarshal(model.Document, &doc); err != nil {
		return nil, fmt.Errorf("role collection document is corrupt: %w", err)
	}

	return collectionFromPersisted(doc)
}

func (s *RoleDocumentStore) Save(ctx context.Context, roles map[string]*role.Role) error {
	data, err := json.Marshal(collectionToPersisted(roles))
	if err != nil {
		return fmt.Errorf("failed to serialize role collection: %w", err)
	}

	model := models.RoleCollectionModel{
		Key:      roleCollectionKey,
		Document: datatypes.JSON(data),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to save role collection: %w", err)
	}
	return nil
}
