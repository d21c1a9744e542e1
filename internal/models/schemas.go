// Package models defines the persisted entities and their projection schemas.
package models

import "courtside/internal/projection"

// Projection schemas. Context keys are shared across entities: every relation
// pointing at a team is configured by "team", whatever the field is called.
var (
	LanguageSchema              = projection.NewSchema("language")
	TeamNameSchema              = projection.NewSchema("teamname")
	TeamSchema                  = projection.NewSchema("team")
	LineScoreSchema             = projection.NewSchema("linescore")
	GameSchema                  = projection.NewSchema("game")
	RoleSchema                  = projection.NewSchema("role")
	UserSchema                  = projection.NewSchema("user")
	PostStatusDisplayNameSchema = projection.NewSchema("poststatusdisplayname")
	PostStatusSchema            = projection.NewSchema("poststatus")
	PostSchema                  = projection.NewSchema("post")
	PostCommentStatusSchema     = projection.NewSchema("postcommentstatus")
	PostCommentSchema           = projection.NewSchema("postcomment")
	PostCommentReplySchema      = projection.NewSchema("postcommentreply")
)

func init() {
	TeamNameSchema.Relate("language", "language", LanguageSchema)
	TeamSchema.Relate("teamname_set", "teamname", TeamNameSchema)
	LineScoreSchema.Relate("team", "team", TeamSchema)
	GameSchema.
		Relate("home_team", "team", TeamSchema).
		Relate("visitor_team", "team", TeamSchema).
		Relate("linescore_set", "linescore", LineScoreSchema)

	UserSchema.Relate("role", "role", RoleSchema)

	PostStatusDisplayNameSchema.Relate("language", "language", LanguageSchema)
	PostStatusSchema.Relate("poststatusdisplayname_set", "poststatusdisplayname", PostStatusDisplayNameSchema)
	PostSchema.
		Relate("user", "user", UserSchema).
		Relate("team", "team", TeamSchema).
		Relate("status", "status", PostStatusSchema)

	PostCommentSchema.
		Relate("user", "user", UserSchema).
		Relate("post", "post", PostSchema).
		Relate("status", "status", PostCommentStatusSchema)
	PostCommentReplySchema.
		Relate("user", "user", UserSchema).
		Relate("status", "status", PostCommentStatusSchema)
}
