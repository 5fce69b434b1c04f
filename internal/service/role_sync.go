package service

import (
	"context"

	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/pkg/logger"
)

// RoleSyncer синхронизирует роль пользователя с внешней системой
// авторизации. Назначение ролей принадлежит ей, сервис биллинга лишь
// сообщает целевую роль.
type RoleSyncer interface {
	SyncRole(ctx context.Context, user *domain.User, group domain.UserGroup) error
}

// LoggingRoleSyncer реализация RoleSyncer по умолчанию: фиксирует
// целевую роль в логе. Рабочая интеграция с внешней системой
// авторизации подставляется вместо нее при сборке приложения.
type LoggingRoleSyncer struct {
	log *logger.Logger
}

// NewLoggingRoleSyncer создает новый LoggingRoleSyncer.
func NewLoggingRoleSyncer(log *logger.Logger) *LoggingRoleSyncer {
	return &LoggingRoleSyncer{log: log}
}

// SyncRole фиксирует целевую роль пользователя.
func (s *LoggingRoleSyncer) SyncRole(ctx context.Context, user *domain.User, group domain.UserGroup) error {
	s.log.Infow("Syncing user role", "userID", user.ID, "group", group)
	return nil
}
