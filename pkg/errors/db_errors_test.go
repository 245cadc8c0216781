package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassifyDBError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  DatabaseErrorType
		wantCode  uint16
		retryable bool
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrorTypeNotFound, 0, false},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), ErrorTypeNotFound, 0, false},
		{"duplicate key", &mysql.MySQLError{Number: 1062}, ErrorTypeDuplicateKey, 1062, false},
		{"invalid json", &mysql.MySQLError{Number: 3140}, ErrorTypeInvalidValue, 3140, false},
		{"data too long", &mysql.MySQLError{Number: 1406}, ErrorTypeInvalidValue, 1406, false},
		{"deadlock", &mysql.MySQLError{Number: 1213}, ErrorTypeDeadlock, 1213, true},
		{"lock wait timeout", &mysql.MySQLError{Number: 1205}, ErrorTypeDeadlock, 1205, true},
		{"server gone", &mysql.MySQLError{Number: 2006}, ErrorTypeConnectionError, 2006, true},
		{"invalid conn", mysql.ErrInvalidConn, ErrorTypeConnectionError, 0, true},
		{"dial error", errors.New("dial tcp 10.0.0.1:3306: Connection Refused"), ErrorTypeConnectionError, 0, true},
		{"other mysql", &mysql.MySQLError{Number: 1146}, ErrorTypeUnknown, 1146, false},
		{"other", errors.New("something odd"), ErrorTypeUnknown, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbErr := ClassifyDBError(tt.err)
			require.NotNil(t, dbErr)
			assert.Equal(t, tt.wantType, dbErr.Type)
			assert.Equal(t, tt.wantCode, dbErr.MySQLErrCode)
			assert.Equal(t, tt.retryable, dbErr.Retryable())
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.ErrorIs(t, dbErr, tt.err)
		})
	}
}

func TestClassifyDBError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyDBError(nil))
	assert.False(t, IsRetryable(nil))
}

func TestDatabaseError_Error(t *testing.T) {
	withCode := ClassifyDBError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	assert.Equal(t, "lock conflict (MySQL error 1213): Error 1213: Deadlock found", withCode.Error())

	plain := ClassifyDBError(gorm.ErrRecordNotFound)
	assert.Equal(t, "record not found: record not found", plain.Error())
}
