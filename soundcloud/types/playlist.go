package types

type Playlist struct {
	ID           int64   `json:"id"`
	URN          string  `json:"urn"`
	Kind         string  `json:"kind"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Duration     int64   `json:"duration"`
	Genre        string  `json:"genre"`
	TagList      string  `json:"tag_list"`
	Permalink    string  `json:"permalink"`
	PermalinkURL string  `json:"permalink_url"`
	ArtworkURL   string  `json:"artwork_url"`
	SetType      string  `json:"set_type"`
	IsAlbum      bool    `json:"is_album"`
	Sharing      string  `json:"sharing"`
	LabelName    string  `json:"label_name"`
	ReleaseDate  string  `json:"release_date"`
	LikesCount   int64   `json:"likes_count"`
	RepostsCount int64   `json:"reposts_count"`
	TrackCount   int64   `json:"track_count"`
	CreatedAt    string  `json:"created_at"`
	LastModified string  `json:"last_modified"`
	User         *User   `json:"user"`
	Tracks       []Track `json:"tracks"`
}

func (p Playlist) Identifier() Identifier {
	if p.URN != "" {
		return URN(p.URN)
	}

	return ID(p.ID)
}

type Playlists = Paging[Playlist]

type Repost struct {
	UUID      string    `json:"uuid"`
	Type      string    `json:"type"`
	Caption   string    `json:"caption"`
	CreatedAt string    `json:"created_at"`
	User      *User     `json:"user"`
	Track     *Track    `json:"track"`
	Playlist  *Playlist `json:"playlist"`
}

type Reposts = Paging[Repost]
