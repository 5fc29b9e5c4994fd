package views

// Server-rendered page templates. The screens share a generic table and
// form template driven by the Table and Form structs, so adding a resource
// screen means building data, not writing markup.

const baseLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - Medica</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f7fa;color:#1e293b}
header{background:#1e3a8a;color:#fff;padding:0.8rem 1.5rem;display:flex;justify-content:space-between;align-items:center}
header a{color:#fff;text-decoration:none;margin-left:1rem}
main{max-width:960px;margin:1.5rem auto;padding:0 1rem}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{padding:0.5rem 0.75rem;border-bottom:1px solid #e2e8f0;text-align:left}
.flash{background:#dcfce7;border:1px solid #86efac;padding:0.6rem 1rem;margin-bottom:1rem}
.error{background:#fee2e2;border:1px solid #fca5a5;padding:0.6rem 1rem;margin-bottom:1rem}
form.page label{display:block;margin:0.6rem 0 0.2rem;font-weight:600}
form.page input,form.page select,form.page textarea{width:100%;max-width:28rem;padding:0.4rem}
button,.btn{background:#1e3a8a;color:#fff;border:none;padding:0.5rem 1rem;cursor:pointer;text-decoration:none;display:inline-block;margin-top:0.8rem}
.danger{background:#b91c1c}
</style>
</head>
<body>
<header>
<strong>Medica</strong>
<nav>
{{if .FullName}}<span>{{.FullName}}</span><a href="/logout">Logout</a>{{else}}<a href="/login">Login</a>{{end}}
</nav>
</header>
<main>
<h1>{{.Title}}</h1>
{{if .Flash}}<div class="flash">{{.Flash}}</div>{{end}}
{{if .Error}}<div class="error">{{.Error}}</div>{{end}}
{{template "content" .}}
</main>
</body>
</html>`

const loginTemplate = `{{define "content"}}
<form class="page" method="post" action="/login">
<label for="email">Email</label>
<input id="email" type="email" name="email" value="{{.Content.Email}}" required>
<label for="password">Password</label>
<input id="password" type="password" name="password" required>
<button type="submit">Login</button>
</form>
{{end}}`

const deniedTemplate = `{{define "content"}}
<p><a class="btn" href="/login">Go to login</a></p>
{{end}}`

const tableTemplate = `{{define "content"}}
{{if .Content.SearchAction}}
<form method="get" action="{{.Content.SearchAction}}">
<input type="search" name="q" value="{{.Content.Query}}" placeholder="Search...">
<button type="submit">Search</button>
</form>
{{end}}
{{if .Content.NewURL}}<p><a class="btn" href="{{.Content.NewURL}}">{{.Content.NewLabel}}</a></p>{{end}}
{{if .Content.Rows}}
<table>
<thead><tr>{{range .Content.Columns}}<th>{{.}}</th>{{end}}{{if .Content.HasActions}}<th></th>{{end}}</tr></thead>
<tbody>
{{range .Content.Rows}}
<tr>
{{range .Cells}}<td>{{.}}</td>{{end}}
{{if or .DetailURL .EditURL .DeleteURL .ToggleURL}}
<td>
{{if .DetailURL}}<a href="{{.DetailURL}}">View</a>{{end}}
{{if .EditURL}} <a href="{{.EditURL}}">Edit</a>{{end}}
{{if .DeleteURL}} <a href="{{.DeleteURL}}">Delete</a>{{end}}
{{if .ToggleURL}} <form method="post" action="{{.ToggleURL}}" style="display:inline"><button type="submit">{{.ToggleLabel}}</button></form>{{end}}
</td>
{{end}}
</tr>
{{end}}
</tbody>
</table>
{{else}}
<p>{{.Content.EmptyMessage}}</p>
{{end}}
{{end}}`

const formTemplate = `{{define "content"}}
<form class="page" method="post" action="{{.Content.Action}}"{{if .Content.Multipart}} enctype="multipart/form-data"{{end}}>
{{if .Content.Snapshot}}<input type="hidden" name="snapshot" value="{{.Content.Snapshot}}">{{end}}
{{range .Content.Fields}}
<label for="{{.Name}}">{{.Label}}</label>
{{if eq .Type "combo"}}
<input id="{{.Name}}" type="text" name="{{.Name}}" value="{{.Value}}" list="{{.Name}}-options" autocomplete="off"{{if .Required}} required{{end}}>
<datalist id="{{.Name}}-options">
{{range .Options}}<option value="{{.}}"></option>{{end}}
</datalist>
{{else if .Options}}
<select id="{{.Name}}" name="{{.Name}}"{{if .Required}} required{{end}}>
<option value=""></option>
{{$sel := .Value}}
{{range .Options}}<option value="{{.}}"{{if eq . $sel}} selected{{end}}>{{.}}</option>{{end}}
</select>
{{else if eq .Type "textarea"}}
<textarea id="{{.Name}}" name="{{.Name}}"{{if .Required}} required{{end}}>{{.Value}}</textarea>
{{else}}
<input id="{{.Name}}" type="{{.Type}}" name="{{.Name}}" value="{{.Value}}"{{if .Required}} required{{end}}>
{{end}}
{{end}}
<button type="submit">{{.Content.SubmitLabel}}</button>
{{if .Content.CancelURL}} <a class="btn" href="{{.Content.CancelURL}}">Cancel</a>{{end}}
</form>
{{end}}`

const confirmTemplate = `{{define "content"}}
<p>{{.Content.Prompt}}</p>
<form method="post" action="{{.Content.Action}}">
<button class="danger" type="submit">Delete</button>
<a class="btn" href="{{.Content.CancelURL}}">Cancel</a>
</form>
{{end}}`

const resultTemplate = `{{define "content"}}
{{if .Content.Lines}}
{{range .Content.Lines}}<p>{{.}}</p>{{end}}
{{end}}
{{if .Content.BackURL}}<p><a class="btn" href="{{.Content.BackURL}}">Back</a></p>{{end}}
{{end}}`

const homeTemplate = `{{define "content"}}
<ul>
{{range .Content.Links}}<li><a href="{{.URL}}">{{.Label}}</a></li>{{end}}
</ul>
{{end}}`
