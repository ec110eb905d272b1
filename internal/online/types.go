package online

import (
	"fmt"
	"strings"
	"time"
)

// APIBeatmapSet mirrors the payload returned by /api/v2/beatmapsets/{id}.
type APIBeatmapSet struct {
	OnlineID       int64  `json:"id"`
	Title          string `json:"title"`
	TitleUnicode   string `json:"title_unicode"`
	Artist         string `json:"artist"`
	ArtistUnicode  string `json:"artist_unicode"`
	Creator        string `json:"creator"`
	CreatorID      int64  `json:"user_id"`
	Status         string `json:"status"`
	HasFavourited  bool   `json:"has_favourited"`
	FavouriteCount int    `json:"favourite_count"`
	PlayCount      int64  `json:"play_count"`
	SubmittedDate  string `json:"submitted_date"`
	RankedDate     string `json:"ranked_date"`
	LastUpdated    string `json:"last_updated"`
}

// DisplayTitle returns "Artist - Title", preferring romanised fields.
func (s APIBeatmapSet) DisplayTitle() string {
	artist := strings.TrimSpace(s.Artist)
	if artist == "" {
		artist = strings.TrimSpace(s.ArtistUnicode)
	}
	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = strings.TrimSpace(s.TitleUnicode)
	}
	switch {
	case artist == "" && title == "":
		return fmt.Sprintf("beatmap set #%d", s.OnlineID)
	case artist == "":
		return title
	case title == "":
		return artist
	}
	return artist + " - " + title
}

// ParsedRankedDate returns the ranked date, or the zero time when unranked.
func (s APIBeatmapSet) ParsedRankedDate() time.Time {
	return parseTime(s.RankedDate)
}

// ParsedLastUpdated returns the last update timestamp.
func (s APIBeatmapSet) ParsedLastUpdated() time.Time {
	return parseTime(s.LastUpdated)
}

// APIUser mirrors /api/v2/me.
type APIUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	CountryCode string `json:"country_code"`
	IsSupporter bool   `json:"is_supporter"`
}

// FavouriteAction selects the direction of a favourite request.
type FavouriteAction int

const (
	Favourite FavouriteAction = iota
	UnFavourite
)

// String returns the wire form of the action.
func (a FavouriteAction) String() string {
	switch a {
	case Favourite:
		return "favourite"
	case UnFavourite:
		return "unfavourite"
	default:
		return fmt.Sprintf("FavouriteAction(%d)", int(a))
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
