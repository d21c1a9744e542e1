// Package repository provides data access layer implementations for the application.
package repository

import (
	"fmt"
	"log/slog"
	"strings"

	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/observability"
	"courtside/internal/ordering"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CountRelation is a virtual column computed by counting rows of Table whose
// ForeignKey references the listed row. Where optionally narrows the counted rows.
type CountRelation struct {
	Alias      string
	Table      string
	ForeignKey string
	Where      string
}

func (c CountRelation) expr(outer string) string {
	cond := fmt.Sprintf("%s.%s = %s.id", c.Table, c.ForeignKey, outer)
	if c.Where != "" {
		cond += " AND " + c.Where
	}
	return fmt.Sprintf("(SELECT COUNT(*) FROM %s WHERE %s) AS %s", c.Table, cond, c.Alias)
}

// LikeRelation is the (user, item) table backing a viewer's liked flag.
type LikeRelation struct {
	Table      string
	ForeignKey string
}

// Listing describes how one content table is filtered, annotated and sorted.
type Listing struct {
	Table       string
	StatusTable string
	Sort        ordering.Config
	Counts      []CountRelation
	Likes       LikeRelation
}

// ListOptions are the per-request inputs to Build.
type ListOptions struct {
	// Sort is the raw comma separated sort parameter.
	Sort string
	// Viewer adds a liked column for this user when set.
	Viewer *uint
	// IncludeDeleted keeps rows whose status is deleted.
	IncludeDeleted bool
	// Annotate lists count aliases to compute even when not sorted on.
	Annotate []string
}

// Filter applies the status predicate only. It never mutates base.
func (l Listing) Filter(base *gorm.DB, includeDeleted bool) *gorm.DB {
	q := base.Session(&gorm.Session{})
	if includeDeleted {
		return q
	}
	return q.Where(
		fmt.Sprintf("%s.status_id NOT IN (SELECT id FROM %s WHERE name = ?)", l.Table, l.StatusTable),
		models.StatusDeleted,
	)
}

// Build returns a derived query that is filtered, annotated and ordered. It never mutates base.
func (l Listing) Build(base *gorm.DB, opts ListOptions) *gorm.DB {
	plan := l.Sort.Parse(opts.Sort)
	if len(plan.Dropped) > 0 {
		observability.SortTokensDropped.WithLabelValues(l.Table).Add(float64(len(plan.Dropped)))
		middleware.Logger.DebugContext(base.Statement.Context, "ignored sort tokens",
			slog.String("table", l.Table), slog.Any("tokens", plan.Dropped))
	}

	q := l.Filter(base, opts.IncludeDeleted)

	columns := []string{l.Table + ".*"}
	annotated := make(map[string]bool, len(l.Counts))
	for _, c := range l.Counts {
		if plan.Annotates(c.Alias) || contains(opts.Annotate, c.Alias) {
			columns = append(columns, c.expr(l.Table))
			annotated[c.Alias] = true
		}
	}

	var args []any
	if opts.Viewer != nil {
		columns = append(columns, fmt.Sprintf(
			"EXISTS(SELECT 1 FROM %[1]s WHERE %[1]s.%[2]s = %[3]s.id AND %[1]s.user_id = ?) AS liked",
			l.Likes.Table, l.Likes.ForeignKey, l.Table,
		))
		args = append(args, *opts.Viewer)
	}
	q = q.Select(strings.Join(columns, ", "), args...)

	for _, t := range plan.Terms {
		col := clause.Column{Table: l.Table, Name: t.Field}
		if t.Virtual {
			if !annotated[t.Field] {
				continue
			}
			col = clause.Column{Name: t.Field}
		}
		q = q.Order(clause.OrderByColumn{Column: col, Desc: t.Desc})
	}
	return q.Order(clause.OrderByColumn{Column: clause.Column{Table: l.Table, Name: "id"}})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

const deletedCommentFilter = "post_comments.status_id NOT IN (SELECT id FROM post_comment_statuses WHERE name = 'deleted')"

// CommentListing sorts comments by creation/update time, id, like count and reply count.
var CommentListing = Listing{
	Table:       "post_comments",
	StatusTable: "post_comment_statuses",
	Sort: ordering.NewConfig(
		[]string{"created_at", "updated_at", "id"},
		[]ordering.Virtual{
			{Marker: "postcommentlike", Alias: "likes_count"},
			{Marker: "postcommentreply", Alias: "replies_count"},
		},
		ordering.DefaultSort,
	),
	Counts: []CountRelation{
		{Alias: "likes_count", Table: "post_comment_likes", ForeignKey: "post_comment_id"},
		{Alias: "replies_count", Table: "post_comment_replies", ForeignKey: "post_comment_id"},
	},
	Likes: LikeRelation{Table: "post_comment_likes", ForeignKey: "post_comment_id"},
}

// PostListing sorts posts by time, id, title, like count and comment count.
var PostListing = Listing{
	Table:       "posts",
	StatusTable: "post_statuses",
	Sort: ordering.NewConfig(
		[]string{"created_at", "updated_at", "id", "title"},
		[]ordering.Virtual{
			{Marker: "postlike", Alias: "likes_count"},
			{Marker: "postcomment", Alias: "comments_count"},
		},
		ordering.DefaultSort,
	),
	Counts: []CountRelation{
		{Alias: "likes_count", Table: "post_likes", ForeignKey: "post_id"},
		{Alias: "comments_count", Table: "post_comments", ForeignKey: "post_id", Where: deletedCommentFilter},
	},
	Likes: LikeRelation{Table: "post_likes", ForeignKey: "post_id"},
}
