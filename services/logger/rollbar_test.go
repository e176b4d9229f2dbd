package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/tourney/core"
	"github.com/trezcool/tourney/core/user"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), core.NewTestConfig())
	err := errors.New("boom")
	extras := map[string]interface{}{"k": "v"}
	usr := user.User{ID: "1", Username: "alice"}
	other := user.User{ID: "2", Username: "bob"}

	got := l.prepare("msg", []interface{}{err, usr, extras, other})
	assert.Equal(t, []interface{}{"msg", err, extras}, got)
}

func TestRollbarLogger_print(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewRollbarLogger(log.New(buf, "", 0), core.NewTestConfig())

	l.Warn("disk almost full", "90%", user.User{Username: "alice"})

	assert.Equal(t, "WARN: disk almost full\n90%\n", buf.String())
}
