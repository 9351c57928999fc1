package session

import (
	"github.com/google/uuid"

	"github.com/offbeatlabs/mooddj/internal/models"
)

// DefaultBanWindow is how many of the most recent tracks are excluded from
// reselection
const DefaultBanWindow = 10

// Playlist tracks play order within a session and enforces the ban window
type Playlist struct {
	order     []uuid.UUID
	banWindow int
}

// NewPlaylist creates a playlist with the default ban window
func NewPlaylist() *Playlist {
	return &Playlist{banWindow: DefaultBanWindow}
}

// NewPlaylistFromTracks rebuilds play order from persisted tracks; callers
// pass tracks sorted by play time
func NewPlaylistFromTracks(tracks []*models.Track) *Playlist {
	p := NewPlaylist()
	for _, t := range tracks {
		if t.Played {
			p.order = append(p.order, t.ID)
		}
	}
	return p
}

// Add appends a track to the play order
func (p *Playlist) Add(id uuid.UUID) {
	p.order = append(p.order, id)
}

// Len returns how many tracks have played
func (p *Playlist) Len() int {
	return len(p.order)
}

// Last returns the most recently played track ID, or uuid.Nil when empty
func (p *Playlist) Last() uuid.UUID {
	if len(p.order) == 0 {
		return uuid.Nil
	}
	return p.order[len(p.order)-1]
}

// RecentlyPlayed reports whether a track is within the ban window
func (p *Playlist) RecentlyPlayed(id uuid.UUID) bool {
	start := len(p.order) - p.banWindow
	if start < 0 {
		start = 0
	}
	for _, played := range p.order[start:] {
		if played == id {
			return true
		}
	}
	return false
}
