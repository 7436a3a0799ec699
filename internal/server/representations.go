package server

import (
	"fmt"
	"time"

	"quill/internal/models"
)

// UserJSON is the collaborator-facing representation of a user. Email and
// other private fields are only present on the owner's own profile view.
type UserJSON struct {
	URL              string    `json:"url"`
	Username         string    `json:"username"`
	Name             string    `json:"name,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	Location         string    `json:"location,omitempty"`
	Avatar           string    `json:"avatar,omitempty"`
	MemberSince      time.Time `json:"member_since"`
	PostsURL         string    `json:"posts_url"`
	FollowedPostsURL string    `json:"followed_posts_url"`
	PostCount        int64     `json:"post_count"`

	Email     string `json:"email,omitempty"`
	Confirmed *bool  `json:"confirmed,omitempty"`
	Role      string `json:"role,omitempty"`

	// Relationship between the authenticated viewer and this profile.
	Following  *bool `json:"following,omitempty"`
	FollowsYou *bool `json:"follows_you,omitempty"`
}

// PostJSON is the collaborator-facing representation of a post. Body is the
// sanitized HTML; the raw body rides along for the author's edit round-trip.
type PostJSON struct {
	URL          string    `json:"url"`
	Body         string    `json:"body"`
	RawBody      string    `json:"raw_body,omitempty"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Timestamp    time.Time `json:"timestamp"`
	AuthorURL    string    `json:"author_url"`
	CommentsURL  string    `json:"comments_url"`
	CommentCount int       `json:"comment_count"`
}

type CommentJSON struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	Disabled  bool      `json:"disabled"`
	Timestamp time.Time `json:"timestamp"`
	PostURL   string    `json:"post_url"`
	AuthorURL string    `json:"author_url"`
}

func userURL(id uint) string {
	return fmt.Sprintf("/api/users/%d", id)
}

func postURL(id uint) string {
	return fmt.Sprintf("/api/posts/%d", id)
}

func presentUser(u *models.User, postCount int64) UserJSON {
	return UserJSON{
		URL:              userURL(u.ID),
		Username:         u.Username,
		Name:             u.Name,
		Bio:              u.Bio,
		Location:         u.Location,
		Avatar:           u.Avatar,
		MemberSince:      u.CreatedAt,
		PostsURL:         userURL(u.ID) + "/posts",
		FollowedPostsURL: userURL(u.ID) + "/followed-posts",
		PostCount:        postCount,
	}
}

// presentOwnUser adds the private fields visible only to the account owner
// or an administrator.
func presentOwnUser(u *models.User, postCount int64) UserJSON {
	out := presentUser(u, postCount)
	out.Email = u.Email
	confirmed := u.Confirmed
	out.Confirmed = &confirmed
	if u.Role != nil {
		out.Role = u.Role.Name
	}
	return out
}

func presentPost(p *models.Post) PostJSON {
	return PostJSON{
		URL:          postURL(p.ID),
		Body:         p.BodyHTML,
		Title:        p.Title,
		Slug:         p.Slug,
		Timestamp:    p.CreatedAt,
		AuthorURL:    userURL(p.AuthorID),
		CommentsURL:  postURL(p.ID) + "/comments",
		CommentCount: p.CommentsCount,
	}
}

// presentPostForEdit includes the raw body so the author can edit it.
func presentPostForEdit(p *models.Post) PostJSON {
	out := presentPost(p)
	out.RawBody = p.Body
	return out
}

func presentPosts(posts []*models.Post) []PostJSON {
	out := make([]PostJSON, 0, len(posts))
	for _, p := range posts {
		out = append(out, presentPost(p))
	}
	return out
}

func presentComment(cm *models.Comment) CommentJSON {
	return CommentJSON{
		ID:        cm.ID,
		Body:      cm.BodyHTML,
		Disabled:  cm.Disabled,
		Timestamp: cm.CreatedAt,
		PostURL:   postURL(cm.PostID),
		AuthorURL: userURL(cm.AuthorID),
	}
}

func presentComments(comments []*models.Comment) []CommentJSON {
	out := make([]CommentJSON, 0, len(comments))
	for _, cm := range comments {
		out = append(out, presentComment(cm))
	}
	return out
}
