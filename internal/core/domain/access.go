package domain

// AuthContext identifies who is performing an operation. The zero value is an
// anonymous requester. It is resolved once by the auth middleware and passed
// explicitly into every service call.
type AuthContext struct {
	UserID   string
	Username string
	Role     string
}

func (a AuthContext) IsAuthenticated() bool {
	return a.UserID != ""
}

func (a AuthContext) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role == RoleAdmin
}

// CanAuthor reports whether the requester holds the author or admin role.
func (a AuthContext) CanAuthor() bool {
	return a.IsAuthenticated() && (a.Role == RoleAuthor || a.Role == RoleAdmin)
}

// CanRead decides whether the requester may see the article.
//
//	published          -> everyone
//	draft / archived   -> anonymous: ErrAuthRequired
//	                      admin or owner: allowed
//	                      anyone else: ErrForbidden
func (a AuthContext) CanRead(article *Article) error {
	if article.IsPublished() {
		return nil
	}
	if !a.IsAuthenticated() {
		return ErrAuthRequired
	}
	if a.IsAdmin() || article.IsOwnedBy(a.UserID) {
		return nil
	}
	return ErrForbidden
}

// CanMutate decides whether the requester may update or delete the article.
func (a AuthContext) CanMutate(article *Article) error {
	if !a.IsAuthenticated() {
		return ErrAuthRequired
	}
	if a.IsAdmin() || article.IsOwnedBy(a.UserID) {
		return nil
	}
	return ErrForbidden
}

// CountsView reports whether a successful read should bump the view counter.
// Only published articles count, and owners reading their own work do not.
func (a AuthContext) CountsView(article *Article) bool {
	return article.IsPublished() && !article.IsOwnedBy(a.UserID)
}

// ListStatus resolves the status filter a listing request runs with. An empty
// result means no status filter at all.
//
// Anonymous requesters, and authenticated ones that are neither filtering on
// their own author id nor holding the author/admin role, only ever see
// published articles. A self-author filter lifts the status filter entirely.
// Authors and admins otherwise get the status they asked for, published by
// default.
func (a AuthContext) ListStatus(authorFilter string, requested ArticleStatus) ArticleStatus {
	own := a.IsAuthenticated() && authorFilter != "" && authorFilter == a.UserID

	switch {
	case !a.IsAuthenticated(), !own && !a.CanAuthor():
		return StatusPublished
	case own:
		return ""
	case requested != "":
		return requested
	default:
		return StatusPublished
	}
}
