package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/postgres"
)

// PostgresLogger writes audit entries to the audit_logs table.
type PostgresLogger struct {
	db *postgres.DB
}

// NewPostgresLogger creates a new PostgreSQL audit logger.
func NewPostgresLogger(db *postgres.DB) *PostgresLogger {
	return &PostgresLogger{db: db}
}

// Log records an audit entry.
func (l *PostgresLogger) Log(ctx context.Context, entry *LogEntry) error {
	fillFromContext(ctx, entry)

	oldData, err := marshalNullable(entry.OldData)
	if err != nil {
		return err
	}
	newData, err := marshalNullable(entry.NewData)
	if err != nil {
		return err
	}
	changes, err := marshalNullable(entry.Changes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_logs (
			id, table_name, record_id, action,
			old_data, new_data, changes,
			performed_by, performed_at,
			request_id, ip_address, user_agent, client_info
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = l.db.ExecContext(ctx, query,
		entry.ID,
		entry.TableName,
		entry.RecordID,
		string(entry.Action),
		oldData,
		newData,
		changes,
		entry.PerformedBy,
		entry.PerformedAt,
		nullableString(entry.RequestID),
		nullableString(entry.IPAddress),
		nullableString(entry.UserAgent),
		nullableString(entry.ClientInfo),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// LogCreate records a create action.
func (l *PostgresLogger) LogCreate(ctx context.Context, tableName string, recordID uuid.UUID, newData interface{}, performedBy string) error {
	return l.Log(ctx, &LogEntry{
		TableName:   tableName,
		RecordID:    recordID,
		Action:      ActionCreate,
		NewData:     ToJSON(newData),
		PerformedBy: performedBy,
	})
}

// LogUpdate records an update action with old and new data.
func (l *PostgresLogger) LogUpdate(ctx context.Context, tableName string, recordID uuid.UUID, oldData, newData interface{}, performedBy string) error {
	oldJSON := ToJSON(oldData)
	newJSON := ToJSON(newData)

	return l.Log(ctx, &LogEntry{
		TableName:   tableName,
		RecordID:    recordID,
		Action:      ActionUpdate,
		OldData:     oldJSON,
		NewData:     newJSON,
		Changes:     ComputeChanges(oldJSON, newJSON),
		PerformedBy: performedBy,
	})
}

// LogDelete records a delete action.
func (l *PostgresLogger) LogDelete(ctx context.Context, tableName string, recordID uuid.UUID, oldData interface{}, performedBy string) error {
	return l.Log(ctx, &LogEntry{
		TableName:   tableName,
		RecordID:    recordID,
		Action:      ActionDelete,
		OldData:     ToJSON(oldData),
		PerformedBy: performedBy,
	})
}

// GetByRecordID retrieves audit logs for a record, newest first.
func (l *PostgresLogger) GetByRecordID(ctx context.Context, tableName string, recordID uuid.UUID) ([]*LogEntry, error) {
	query := `
		SELECT id, table_name, record_id, action, old_data, new_data, changes,
		       performed_by, performed_at, request_id, ip_address, user_agent, client_info
		FROM audit_logs
		WHERE table_name = $1 AND record_id = $2
		ORDER BY performed_at DESC
	`

	rows, err := l.db.QueryContext(ctx, query, tableName, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanLogEntries(rows)
}

func scanLogEntries(rows *sql.Rows) ([]*LogEntry, error) {
	var entries []*LogEntry

	for rows.Next() {
		var entry LogEntry
		var action string
		var oldData, newData, changes []byte
		var requestID, ipAddress, userAgent, clientInfo sql.NullString

		if err := rows.Scan(
			&entry.ID, &entry.TableName, &entry.RecordID, &action,
			&oldData, &newData, &changes,
			&entry.PerformedBy, &entry.PerformedAt,
			&requestID, &ipAddress, &userAgent, &clientInfo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}

		entry.Action = Action(action)
		entry.OldData = unmarshalMap(oldData)
		entry.NewData = unmarshalMap(newData)
		entry.Changes = unmarshalMap(changes)
		entry.RequestID = requestID.String
		entry.IPAddress = ipAddress.String
		entry.UserAgent = userAgent.String
		entry.ClientInfo = clientInfo.String

		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}
	return entries, nil
}

// unmarshalMap decodes a JSON column; malformed data yields nil.
func unmarshalMap(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
