package server

import "courtside/internal/projection"

var (
	localizedNames = projection.Context{
		"teamname": projection.Only("name", "language"),
		"language": projection.Only("name"),
	}

	teamView         = view{fields: projection.AllFields(), context: localizedNames}
	favoriteTeamView = view{fields: projection.Except("teamname_set")}

	gameView = view{
		fields: projection.AllFields(),
		context: projection.Context{
			"linescore": projection.Except("line_score_id", "game_id"),
			"team":      projection.Only("id", "symbol", "teamname_set"),
			"teamname":  projection.Only("name", "language"),
			"language":  projection.Only("name"),
		},
	}

	postContext = projection.Context{
		"user":                  projection.Only("id", "username"),
		"team":                  projection.Only("id", "symbol"),
		"status":                projection.Only("id", "name", "poststatusdisplayname_set"),
		"poststatusdisplayname": projection.Only("display_name", "language"),
		"language":              projection.Only("name"),
	}
	postListView   = view{fields: projection.Except("content"), context: postContext}
	postDetailView = view{fields: projection.AllFields(), context: postContext}

	commentView = view{
		fields: projection.Except("post"),
		context: projection.Context{
			"user":   projection.Only("id", "username"),
			"status": projection.Only("id", "name"),
		},
	}
	myCommentView = view{
		fields: projection.AllFields(),
		context: projection.Context{
			"user":   projection.Only("id", "username"),
			"status": projection.Only("id", "name"),
			"post":   projection.Only("id", "title", "team", "user"),
			"team":   projection.Only("id", "symbol"),
		},
	}
	replyView = view{
		fields: projection.AllFields(),
		context: projection.Context{
			"user":   projection.Only("id", "username"),
			"status": projection.Only("id", "name"),
		},
	}

	meView = view{
		fields:  projection.Only("id", "username", "email", "role", "introduction", "level", "is_profile_visible"),
		context: projection.Context{"role": projection.Only("id", "name")},
	}
	profileView = view{
		fields:  projection.Only("id", "username", "email", "role", "level", "introduction"),
		context: projection.Context{"role": projection.Only("id", "name")},
	}
	sessionUserView = view{fields: projection.Only("id", "username", "email")}

	postStatusView = view{
		fields: projection.AllFields(),
		context: projection.Context{
			"poststatusdisplayname": projection.Only("display_name", "language"),
			"language":              projection.Only("name", "code"),
		},
	}
)
