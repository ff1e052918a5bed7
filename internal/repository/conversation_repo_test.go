package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tastelog/tastelog-backend/internal/domain"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func conversationColumns() []string {
	return []string{"id", "participant1_id", "participant2_id", "status", "requested_by_id", "last_message_at", "created_at", "updated_at"}
}

func TestFindByPairQueriesOrderedPair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM `conversations` WHERE participant1_id = \\? AND participant2_id = \\?").
		WillReturnRows(sqlmock.NewRows(conversationColumns()).
			AddRow("conv-1", "alice", "bob", domain.ConversationActive, nil, nil, now, now))

	conv, err := repo.FindByPair("alice", "bob")
	require.NoError(t, err)

	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "alice", conv.Participant1ID)
	assert.Equal(t, "bob", conv.Participant2ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByPairNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	mock.ExpectQuery("SELECT .+ FROM `conversations`").
		WillReturnRows(sqlmock.NewRows(conversationColumns()))

	_, err := repo.FindByPair("alice", "bob")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTouchLastMessageUpdatesTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `conversations` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.TouchLastMessage("conv-1", time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForUserExcludesDeclined(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM `conversations` WHERE \\(participant1_id = \\? OR participant2_id = \\?\\) AND status <> \\?").
		WillReturnRows(sqlmock.NewRows(conversationColumns()).
			AddRow("conv-1", "alice", "bob", domain.ConversationActive, nil, now, now, now))

	convs, err := repo.ListForUser("alice", "")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"mysql 1062", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"other mysql error", &mysqldriver.MySQLError{Number: 1146, Message: "Table doesn't exist"}, false},
		{"record not found", gorm.ErrRecordNotFound, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateKey(tt.err); got != tt.want {
				t.Errorf("IsDuplicateKey(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
