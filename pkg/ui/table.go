package ui

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"redditstats/pkg/models"
)

// LinksTable renders ranked posts, one row per post
func LinksTable(links []models.Entity) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Score", "Author", "Created", "Name"})

	for i, link := range links {
		t.AppendRow(table.Row{
			i + 1,
			link.Score,
			link.Author,
			formatCreated(link.Created),
			link.Name,
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d posts", len(links))})
	return t.Render()
}

// RankingTable renders the two author rankings side by side. The shorter
// column is padded with blanks.
func RankingTable(byPosts, byComments []string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Top users by posts", "Top users by comments"})

	rows := len(byPosts)
	if len(byComments) > rows {
		rows = len(byComments)
	}
	for i := 0; i < rows; i++ {
		t.AppendRow(table.Row{i + 1, cell(byPosts, i), cell(byComments, i)})
	}

	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d authors", len(byPosts)),
		fmt.Sprintf("%d authors", len(byComments)),
	})
	return t.Render()
}

func cell(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func formatCreated(created float64) string {
	if created <= 0 {
		return ""
	}
	return time.Unix(int64(created), 0).UTC().Format("2006-01-02 15:04")
}
