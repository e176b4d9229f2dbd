package echoapi

import (
	"html/template"
	"io"
	"path"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	appfs "github.com/trezcool/tourney/fs"
)

const pagesDir = "templates/pages"

// Pages
const (
	pageDevIndex         = "devindex"
	pageLogin            = "login"
	pageTournament       = "tournament"
	pageCreateTournament = "createtournament"
	pageFeedback         = "feedback"
)

type (
	// pageData is what every page template is executed with.
	pageData struct {
		Title    string
		AppName  string
		Username string
		Data     interface{}
	}

	loginPage struct {
		Error    string
		Next     string
		Username string
	}

	// pageRenderer renders the embedded pages, each within the base layout.
	pageRenderer struct {
		appName string

		mu    sync.RWMutex
		pages map[string]*template.Template
	}
)

var _ echo.Renderer = (*pageRenderer)(nil)

func newPageRenderer(appName string) *pageRenderer {
	return &pageRenderer{appName: appName, pages: make(map[string]*template.Template)}
}

func (r *pageRenderer) page(name string) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.pages[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := template.ParseFS(appfs.FS, path.Join(pagesDir, "_base.gohtml"), path.Join(pagesDir, name+".gohtml"))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing page %s", name)
	}
	r.mu.Lock()
	r.pages[name] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

// Render executes the page name; data must be a pageData.
func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	tmpl, err := r.page(name)
	if err != nil {
		return err
	}
	pd, ok := data.(pageData)
	if !ok {
		pd = pageData{Data: data}
	}
	pd.AppName = r.appName
	pd.Username = contextUsername(ctx)
	return tmpl.ExecuteTemplate(w, "base", pd)
}

func render(ctx echo.Context, code int, name, title string, data interface{}) error {
	return ctx.Render(code, name, pageData{Title: title, Data: data})
}
