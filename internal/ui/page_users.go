package ui

import (
	"strconv"

	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"posgate/internal/domain"
)

type userRowData struct {
	ID       string
	Username string
	FullName string
	Email    string
	Active   bool
	Locked   bool
	Groups   []string
	Filter   string
}

func usersPage(p domain.ContextPrincipal, rows []userRowData, pageReq domain.PageRequest, total int64) gomponents.Node {
	trs := make([]gomponents.Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		trs = append(trs, html.Tr(
			data.Show(containsExpr(row.Filter)),
			html.Td(html.A(html.Href("/ui/users/"+row.ID), gomponents.Text(row.Username))),
			html.Td(gomponents.Text(row.FullName)),
			html.Td(gomponents.Text(row.Email)),
			html.Td(statusBadge(row.Active, row.Locked)),
			html.Td(gomponents.Text(joinOrDash(row.Groups))),
		))
	}

	return appPage(
		"Users",
		"users",
		p,
		html.Div(
			data.Signals(map[string]any{"q": ""}),
			filterInput("Filter by username, name or email"),
			html.Div(
				html.Class("card table-wrap"),
				html.Table(
					html.THead(html.Tr(
						html.Th(gomponents.Text("Username")),
						html.Th(gomponents.Text("Name")),
						html.Th(gomponents.Text("Email")),
						html.Th(gomponents.Text("Status")),
						html.Th(gomponents.Text("Groups")),
					)),
					html.TBody(gomponents.Group(trs)),
				),
			),
		),
		paginationCard("/ui/users", pageReq, total),
	)
}

type userDetailData struct {
	ID             string
	Username       string
	FullName       string
	Email          string
	Active         bool
	Locked         bool
	FailedAttempts int
	CreatedAt      string
	LastLoginAt    string
	Groups         []string
	Direct         []string
	Effective      []string
	CanAct         bool
}

func userDetailPage(p domain.ContextPrincipal, d userDetailData, csrf gomponents.Node) gomponents.Node {
	body := []gomponents.Node{
		html.Div(
			html.Class("card"),
			html.P(gomponents.Text("Name: "+orDash(d.FullName))),
			html.P(gomponents.Text("Email: "+orDash(d.Email))),
			html.P(gomponents.Text("Active: "+yesNo(d.Active))),
			html.P(gomponents.Text("Locked: "+yesNo(d.Locked))),
			html.P(gomponents.Text("Failed attempts: "+strconv.Itoa(d.FailedAttempts))),
			html.P(gomponents.Text("Created: "+d.CreatedAt)),
			html.P(gomponents.Text("Last login: "+d.LastLoginAt)),
		),
	}

	if d.CanAct {
		body = append(body, userActionsCard(d, csrf))
	}

	body = append(body,
		html.Div(
			html.Class("card"),
			html.H2(gomponents.Text("Groups")),
			nameList(d.Groups, "/ui/groups/"),
		),
		html.Div(
			html.Class("card"),
			html.H2(gomponents.Text("Direct permissions")),
			nameList(d.Direct, "/ui/permissions"),
		),
		html.Div(
			html.Class("card"),
			html.H2(gomponents.Text("Effective permissions")),
			html.P(html.Class("muted"), gomponents.Text("Direct grants plus everything inherited through groups.")),
			nameList(d.Effective, "/ui/permissions"),
		),
	)

	return appPage("User: "+d.Username, "users", p, body...)
}

func userActionsCard(d userDetailData, csrf gomponents.Node) gomponents.Node {
	actions := make([]gomponents.Node, 0, 2)
	if d.Locked {
		actions = append(actions, actionForm("/ui/users/"+d.ID+"/unlock", "Unlock", csrf))
	} else {
		actions = append(actions, actionForm("/ui/users/"+d.ID+"/lock", "Lock", csrf))
	}
	if d.Active {
		actions = append(actions, actionForm("/ui/users/"+d.ID+"/deactivate", "Deactivate", csrf))
	} else {
		actions = append(actions, actionForm("/ui/users/"+d.ID+"/activate", "Activate", csrf))
	}
	return html.Div(
		html.Class("card"),
		html.H2(gomponents.Text("Actions")),
		html.Div(html.Class("actions"), gomponents.Group(actions)),
	)
}

func actionForm(action, label string, csrf gomponents.Node) gomponents.Node {
	return html.Form(
		html.Method("post"),
		html.Action(action),
		csrf,
		html.Button(html.Type("submit"), html.Class("secondary"), gomponents.Text(label)),
	)
}

func statusBadge(active, locked bool) gomponents.Node {
	switch {
	case locked:
		return html.Span(html.Class("badge locked"), gomponents.Text("locked"))
	case !active:
		return html.Span(html.Class("badge inactive"), gomponents.Text("inactive"))
	default:
		return html.Span(html.Class("badge active"), gomponents.Text("active"))
	}
}

func nameList(names []string, hrefPrefix string) gomponents.Node {
	if len(names) == 0 {
		return html.P(html.Class("muted"), gomponents.Text("None."))
	}
	items := make([]gomponents.Node, 0, len(names))
	for _, name := range names {
		if hrefPrefix != "" && hrefPrefix[len(hrefPrefix)-1] == '/' {
			items = append(items, html.Li(html.A(html.Href(hrefPrefix+name), gomponents.Text(name))))
		} else {
			items = append(items, html.Li(gomponents.Text(name)))
		}
	}
	return html.Ul(gomponents.Group(items))
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
