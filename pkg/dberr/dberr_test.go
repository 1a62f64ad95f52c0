package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"hackvote/pkg/dberr"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "wrapped gorm translated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres sqlstate", err: errors.New("ERROR: duplicate key (SQLSTATE 23505)"), want: true},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: votes.team_id, votes.award_id, votes.user_id"), want: true},
		{name: "other", err: gorm.ErrInvalidDB, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, dberr.IsUniqueViolation(tt.err))
		})
	}
}
