// Package authz holds the single capability check shared by every entry point.
package authz

import (
	"github.com/hindinewshub/news-api/internal/models"
)

// Action is something a caller may attempt
type Action string

const (
	ReadPublished   Action = "read_published"
	ReadUnpublished Action = "read_unpublished"
	Comment         Action = "comment"
	React           Action = "react"
	Bookmark        Action = "bookmark"
	ViewProfile     Action = "view_profile"
	CreateArticle   Action = "create_article"
	UpdateOwn       Action = "update_own_article"
	UpdateAny       Action = "update_any_article"
	DeleteArticle   Action = "delete_article"
	ModerateComment Action = "moderate_comment"
	ExportContent   Action = "export_content"
)

// rank orders roles. Anonymous callers have the empty role.
var rank = map[models.Role]int{
	"":                0,
	models.RoleReader: 1,
	models.RoleEditor: 2,
	models.RoleAdmin:  3,
}

var minimum = map[Action]models.Role{
	ReadPublished:   "",
	ReadUnpublished: models.RoleEditor,
	Comment:         models.RoleReader,
	React:           models.RoleReader,
	Bookmark:        models.RoleReader,
	ViewProfile:     models.RoleReader,
	CreateArticle:   models.RoleEditor,
	UpdateOwn:       models.RoleEditor,
	UpdateAny:       models.RoleAdmin,
	DeleteArticle:   models.RoleAdmin,
	ModerateComment: models.RoleEditor,
	ExportContent:   models.RoleAdmin,
}

// Can reports whether role may perform action. Unknown roles and actions are denied.
func Can(role models.Role, action Action) bool {
	need, ok := minimum[action]
	if !ok {
		return false
	}
	have, ok := rank[role]
	if !ok {
		return false
	}
	return have >= rank[need]
}

// CanUpdateArticle applies the ownership rule: admins may edit anything, editors only their own.
func CanUpdateArticle(role models.Role, userID string, article *models.Article) bool {
	if Can(role, UpdateAny) {
		return true
	}
	return Can(role, UpdateOwn) && userID != "" && article.AuthorID == userID
}

// SeesUnpublished reports whether role may read drafts, scheduled articles and unapproved comments
func SeesUnpublished(role models.Role) bool {
	return Can(role, ReadUnpublished)
}
