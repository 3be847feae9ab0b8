package ui

import (
	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"

	"posgate/internal/domain"
)

type permissionRowData struct {
	Name        string
	Description string
	Aliases     []string
	IsDefault   bool
	Filter      string
}

func permissionsPage(p domain.ContextPrincipal, rows []permissionRowData, pageReq domain.PageRequest, total int64) gomponents.Node {
	trs := make([]gomponents.Node, 0, len(rows))
	for i := range rows {
		row := rows[i]
		trs = append(trs, html.Tr(
			data.Show(containsExpr(row.Filter)),
			html.Td(gomponents.Text(row.Name)),
			html.Td(gomponents.Text(orDash(row.Description))),
			html.Td(gomponents.Text(joinOrDash(row.Aliases))),
			html.Td(gomponents.Text(yesNo(row.IsDefault))),
		))
	}

	return appPage(
		"Permissions",
		"permissions",
		p,
		html.Div(
			data.Signals(map[string]any{"q": ""}),
			filterInput("Filter by permission name or alias"),
			html.Div(
				html.Class("card table-wrap"),
				html.Table(
					html.THead(html.Tr(
						html.Th(gomponents.Text("Name")),
						html.Th(gomponents.Text("Description")),
						html.Th(gomponents.Text("Aliases")),
						html.Th(gomponents.Text("Default")),
					)),
					html.TBody(gomponents.Group(trs)),
				),
			),
		),
		paginationCard("/ui/permissions", pageReq, total),
	)
}
