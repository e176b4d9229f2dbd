package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/tourney/core"
	"github.com/trezcool/tourney/core/devindex"
	"github.com/trezcool/tourney/core/feedback"
	"github.com/trezcool/tourney/core/tournament"
	"github.com/trezcool/tourney/core/user"
	emailsvc "github.com/trezcool/tourney/services/email"
	logsvc "github.com/trezcool/tourney/services/logger"
	inmemdb "github.com/trezcool/tourney/storage/database/inmem"
)

type testApp struct {
	conf     *core.Config
	server   *Server
	usrRepo  user.Repository
	tnmtRepo tournament.Repository
	mailSvc  *emailsvc.ConsoleServiceMock
	metrics  *Metrics
}

type setupOption func(deps *ServerDeps)

// withSource replaces the index content source.
func withSource(src devindex.Source) setupOption {
	return func(deps *ServerDeps) { deps.IndexSvc = devindex.NewService(src) }
}

func setup(t *testing.T, opts ...setupOption) *testApp {
	t.Helper()
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	core.ParseEmailTemplates(logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB & repos
	db := inmemdb.Open()
	app := &testApp{
		conf:     conf,
		usrRepo:  inmemdb.NewUserRepository(db),
		tnmtRepo: inmemdb.NewTournamentRepository(db),
		mailSvc:  emailsvc.NewConsoleServiceMock(conf, logger),
		metrics:  NewMetrics(prometheus.NewRegistry()),
	}

	// set up services
	tnmtSvc := tournament.NewService(app.tnmtRepo)
	catalog, err := devindex.NewCatalog(tnmtSvc)
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}
	deps := ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       user.NewService(app.usrRepo),
		TournamentSvc: tnmtSvc,
		IndexSvc:      devindex.NewService(catalog),
		FeedbackSvc:   feedback.NewService(app.mailSvc, conf),
		Validate:      validate,
		Translator:    translator,
		Metrics:       app.metrics,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	// set up server
	app.server = NewServer(deps)
	return app
}

type sourceFunc func(ctx context.Context, viewer string) ([]byte, error)

func (f sourceFunc) Fetch(ctx context.Context, viewer string) ([]byte, error) { return f(ctx, viewer) }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	form     url.Values
	session  string
	wantCode int
	wantData []byte
	extra    interface{}
}

// request builds the test request: a form post when tt.form is set, JSON otherwise.
func (tt httpTest) request() *http.Request {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	var req *http.Request
	if tt.form != nil {
		req = httptest.NewRequest(method, tt.path, strings.NewReader(tt.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, tt.path, bytes.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
	}
	if tt.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tt.session})
	}
	return req
}

func (app *testApp) do(tt httpTest) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, tt.request())
	return rec
}

func getSession(t *testing.T, app *testApp, usr user.User) string {
	t.Helper()
	token, err := app.server.sessions.token(usr)
	if err != nil {
		t.Fatalf("getSession() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
