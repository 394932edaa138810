package registry

// Stable ids for the built-in entity kinds. These back the polymorphic
// foreign keys, so they must never be renumbered.
const (
	KindUserID         uint = 1
	KindOrganizationID uint = 2
	KindAnimalID       uint = 3
	KindPostID         uint = 4
	KindArticleID      uint = 5
	KindCommentID      uint = 6
)

// Canonical kind keys.
const (
	KeyUser         = "users.user"
	KeyOrganization = "users.organization"
	KeyAnimal       = "animals.animal"
	KeyPost         = "posts.post"
	KeyArticle      = "articles.article"
	KeyComment      = "common.comment"
)

// Builtin returns a registry populated with every recognized domain kind.
// Owner and label resolvers are attached separately by the router, which has
// access to the repositories.
func Builtin() *Registry {
	r := New()
	r.Register(Kind{ID: KindUserID, Namespace: "users", Name: "user"})
	r.Register(Kind{ID: KindOrganizationID, Namespace: "users", Name: "organization"})
	r.Register(Kind{ID: KindAnimalID, Namespace: "animals", Name: "animal"})
	r.Register(Kind{ID: KindPostID, Namespace: "posts", Name: "post"})
	r.Register(Kind{ID: KindArticleID, Namespace: "articles", Name: "article"})
	r.Register(Kind{ID: KindCommentID, Namespace: "common", Name: "comment"})
	return r
}

// Followable reports whether the kind may be the target of a follow.
func Followable(kind Kind) bool {
	return kind.ID == KindAnimalID || kind.ID == KindOrganizationID
}
