package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/domain"
)

type notificationLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationLogRepository creates a new notification log repository
func NewNotificationLogRepository(db *sql.DB, logger *zap.Logger) *notificationLogRepository {
	return &notificationLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *notificationLogRepository) Create(ctx context.Context, log *domain.NotificationLog) error {
	query := `
		INSERT INTO notification_logs (id, order_id, event_type, template, part, address, alternate, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.OrderID,
		log.EventType,
		log.Template,
		log.Part,
		log.Address,
		log.Alternate,
		log.Status,
		log.Error,
		log.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create notification log", zap.Error(err))
		return err
	}

	return nil
}

func (r *notificationLogRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.NotificationLog, error) {
	query := `
		SELECT id, order_id, event_type, template, part, address, alternate, status, error, created_at
		FROM notification_logs
		WHERE order_id = $1
		ORDER BY created_at, part
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to query notification logs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.NotificationLog, 0)
	for rows.Next() {
		var log domain.NotificationLog
		var errMsg sql.NullString

		err := rows.Scan(
			&log.ID,
			&log.OrderID,
			&log.EventType,
			&log.Template,
			&log.Part,
			&log.Address,
			&log.Alternate,
			&log.Status,
			&errMsg,
			&log.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan notification log", zap.Error(err))
			return nil, err
		}

		if errMsg.Valid {
			log.Error = &errMsg.String
		}
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
