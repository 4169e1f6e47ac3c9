package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{
			name: "postgres unique violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "carts_one_open_per_user"},
			want: true,
		},
		{
			name: "wrapped postgres unique violation",
			err:  fmt.Errorf("create cart: %w", &pgconn.PgError{Code: "23505"}),
			want: true,
		},
		{
			name: "postgres foreign key violation",
			err:  &pgconn.PgError{Code: "23503"},
			want: false,
		},
		{
			name: "postgres message text",
			err:  errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`),
			want: true,
		},
		{
			name: "sqlite message text",
			err:  errors.New("UNIQUE constraint failed: users.email"),
			want: true,
		},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
