package types

type User struct {
	ID              int64  `json:"id"`
	URN             string `json:"urn"`
	Kind            string `json:"kind"`
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Description     string `json:"description"`
	City            string `json:"city"`
	CountryCode     string `json:"country_code"`
	AvatarURL       string `json:"avatar_url"`
	Permalink       string `json:"permalink"`
	PermalinkURL    string `json:"permalink_url"`
	FollowersCount  int64  `json:"followers_count"`
	FollowingsCount int64  `json:"followings_count"`
	TrackCount      int64  `json:"track_count"`
	PlaylistCount   int64  `json:"playlist_count"`
	LikesCount      int64  `json:"likes_count"`
	RepostsCount    int64  `json:"reposts_count"`
	Verified        bool   `json:"verified"`
	CreatedAt       string `json:"created_at"`
	LastModified    string `json:"last_modified"`
}

func (u User) Identifier() Identifier {
	if u.URN != "" {
		return URN(u.URN)
	}

	return ID(u.ID)
}

type Users = Paging[User]
