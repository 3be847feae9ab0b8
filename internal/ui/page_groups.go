package ui

import (
	"strconv"

	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"posgate/internal/domain"
)

type groupRowData struct {
	Name        string
	Description string
	IsDefault   bool
	Permissions int
	Parents     []string
	Members     int
	Filter      string
}

func groupsPage(p domain.ContextPrincipal, rows []groupRowData, pageReq domain.PageRequest, total int64) gomponents.Node {
	trs := make([]gomponents.Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		trs = append(trs, html.Tr(
			data.Show(containsExpr(row.Filter)),
			html.Td(html.A(html.Href("/ui/groups/"+row.Name), gomponents.Text(row.Name))),
			html.Td(gomponents.Text(orDash(row.Description))),
			html.Td(gomponents.Text(yesNo(row.IsDefault))),
			html.Td(gomponents.Text(strconv.Itoa(row.Permissions))),
			html.Td(gomponents.Text(joinOrDash(row.Parents))),
			html.Td(gomponents.Text(strconv.Itoa(row.Members))),
		))
	}

	return appPage(
		"Groups",
		"groups",
		p,
		html.Div(
			data.Signals(map[string]any{"q": ""}),
			filterInput("Filter by group name or description"),
			html.Div(
				html.Class("card table-wrap"),
				html.Table(
					html.THead(html.Tr(
						html.Th(gomponents.Text("Name")),
						html.Th(gomponents.Text("Description")),
						html.Th(gomponents.Text("Default")),
						html.Th(gomponents.Text("Permissions")),
						html.Th(gomponents.Text("Parents")),
						html.Th(gomponents.Text("Members")),
					)),
					html.TBody(gomponents.Group(trs)),
				),
			),
		),
		paginationCard("/ui/groups", pageReq, total),
	)
}

type groupMemberData struct {
	ID       string
	Username string
	Active   bool
	Locked   bool
}

type groupDetailData struct {
	Name        string
	Description string
	IsDefault   bool
	Parents     []string
	Direct      []string
	Effective   []string
	Members     []groupMemberData
}

func groupDetailPage(p domain.ContextPrincipal, d groupDetailData) gomponents.Node {
	memberRows := make([]gomponents.Node, 0, len(d.Members))
	for i := range d.Members {
		m := d.Members[i]
		memberRows = append(memberRows, html.Tr(
			html.Td(html.A(html.Href("/ui/users/"+m.ID), gomponents.Text(m.Username))),
			html.Td(statusBadge(m.Active, m.Locked)),
		))
	}

	return appPage(
		"Group: "+d.Name,
		"groups",
		p,
		html.Div(
			html.Class("card"),
			html.P(gomponents.Text("Description: "+orDash(d.Description))),
			html.P(gomponents.Text("Default for new users: "+yesNo(d.IsDefault))),
			html.P(gomponents.Text("Parents: "+joinOrDash(d.Parents))),
		),
		html.Div(
			html.Class("card"),
			html.H2(gomponents.Text("Direct permissions")),
			nameList(d.Direct, "/ui/permissions"),
		),
		html.Div(
			html.Class("card"),
			html.H2(gomponents.Text("Effective permissions")),
			html.P(html.Class("muted"), gomponents.Text("Direct grants plus everything inherited from parent groups.")),
			nameList(d.Effective, "/ui/permissions"),
		),
		html.Div(
			html.Class("card table-wrap"),
			html.H2(gomponents.Text("Members")),
			html.Table(
				html.THead(html.Tr(html.Th(gomponents.Text("Username")), html.Th(gomponents.Text("Status")))),
				html.TBody(gomponents.Group(memberRows)),
			),
		),
	)
}
