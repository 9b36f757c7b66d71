package directory

import (
	"fmt"
	"html"
)

const pageHeader = `<html><head>
  <title>%s</title>
  <meta http-equiv="content-type" content="text/html; charset=utf-8" />
  <style type='text/css'>
table { width:100%%; }
.name { text-align:left; }
.size, .mtime { text-align:right; }
.type { width:11em; }
.mtime { width:15em; }
  </style>
</head><body>
<h1>%s</h1>
<hr />
<table>
  <tr>
    <th class='name'>Name</th>
    <th class='size'>Size</th>
    <th class='type'>Type</th>
    <th class='mtime'>Last Modified</th>
  </tr>
`

const rowTemplate = "<tr><td class='name'><a href='%s'>%s</a></td><td class='size'>%s</td><td class='type'>%s</td><td class='mtime'>%s</td></tr>\n"

const pageFooter = `</table>
<hr />
</body></html>
`

func renderHeader(title string) string {
	title = html.EscapeString(title)

	return fmt.Sprintf(pageHeader, title, title)
}

func renderRow(e Entry) string {
	return fmt.Sprintf(rowTemplate,
		html.EscapeString(e.Href),
		html.EscapeString(e.Name),
		html.EscapeString(e.Size),
		html.EscapeString(e.Type),
		html.EscapeString(e.ModTime),
	)
}
