package sqlxrepos

import (
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_isUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "postgres unique", err: &pq.Error{Code: "23505"}, want: true},
		{name: "postgres wrapped", err: errors.Wrap(&pq.Error{Code: "23505"}, "inserting"), want: true},
		{name: "postgres foreign key", err: &pq.Error{Code: "23503"}},
		{name: "other", err: errors.New("boom")},
		{name: "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
