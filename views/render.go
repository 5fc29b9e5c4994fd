package views

import (
	"html/template"
	"net/http"

	"github.com/medica/medica-web/logging"
)

// Page is the data every template receives. Content carries the
// screen-specific struct (Table, Form, Confirm, Result or Home).
type Page struct {
	Title    string
	FullName string
	Flash    string
	Error    string
	Content  any
}

// Table drives the generic list template.
type Table struct {
	Columns      []string
	Rows         []Row
	HasActions   bool
	SearchAction string
	Query        string
	NewURL       string
	NewLabel     string
	EmptyMessage string
}

// Row is one table row with optional per-row actions. ToggleURL renders
// as an inline POST button, for state flips like favoriting.
type Row struct {
	Cells       []string
	DetailURL   string
	EditURL     string
	DeleteURL   string
	ToggleURL   string
	ToggleLabel string
}

// Form drives the generic editor template.
type Form struct {
	Action      string
	Snapshot    string
	Fields      []Field
	SubmitLabel string
	CancelURL   string
	Multipart   bool
}

// Field is one form input. Options turns it into a select, or with Type
// "combo" into a text input backed by a datalist, so free text stands
// until an option is picked. Type picks the input type otherwise (text,
// email, password, number, date, file).
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Options  []string
	Required bool
}

// Confirm drives the delete confirmation template.
type Confirm struct {
	Prompt    string
	Action    string
	CancelURL string
}

// Result drives the free-text result template.
type Result struct {
	Lines   []string
	BackURL string
}

// Home drives the role dashboard template.
type Home struct {
	Links []Link
}

// Link is one dashboard entry.
type Link struct {
	Label string
	URL   string
}

// LoginForm drives the login template.
type LoginForm struct {
	Email string
}

var pageTemplates = func() map[string]*template.Template {
	defs := map[string]string{
		"login":   loginTemplate,
		"denied":  deniedTemplate,
		"table":   tableTemplate,
		"form":    formTemplate,
		"confirm": confirmTemplate,
		"result":  resultTemplate,
		"home":    homeTemplate,
	}
	pages := make(map[string]*template.Template, len(defs))
	for name, def := range defs {
		pages[name] = template.Must(template.Must(
			template.New("base").Parse(baseLayout)).Parse(def))
	}
	return pages
}()

// Render writes a page. Template failures log and fall back to a bare 500
// so a render bug never leaks a half-written page.
func Render(w http.ResponseWriter, status int, name string, page Page) {
	tmpl, ok := pageTemplates[name]
	if !ok {
		logging.Error("Unknown page template", "name", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", page); err != nil {
		logging.Error("Failed to render page", "name", name, "error", err)
	}
}
