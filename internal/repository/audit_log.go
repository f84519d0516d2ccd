package repository

import (
	"context"
	"time"

	constant "github.com/VannaSem/SevaSign/internal/constant"
	"github.com/VannaSem/SevaSign/internal/model"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	*baseRepository
}

// Append writes a new audit entry. Entries are insert-only, no update or
// delete path exists on purpose.
func (alr AuditLogRepository) Append(ctx context.Context, tx *gorm.DB, entry *model.AuditLog) error {
	alr.logger.Debugf("Append audit log for request id: %s action: %s \n", entry.RequestID, entry.Action)

	db := alr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = time.Now()
	}

	if err := db.WithContext(ctx).Model(&model.AuditLog{}).Create(entry).Error; err != nil {
		return err
	}

	return nil
}

func (alr AuditLogRepository) GetByRequestId(ctx context.Context, tx *gorm.DB, requestId string) ([]*model.AuditLog, error) {
	alr.logger.Debugf("Get audit logs by request id: %s \n", requestId)

	db := alr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var logs []*model.AuditLog
	if err := db.WithContext(ctx).Model(&model.AuditLog{}).Where(model.AuditLog{
		RequestID: requestId,
	}).Order("performed_at asc").Find(&logs).Error; err != nil {
		return logs, err
	}

	return logs, nil
}
