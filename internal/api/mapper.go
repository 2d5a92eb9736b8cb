package api

import (
	"strings"
	"time"

	"github.com/mmcdole/huddle/internal/domain"
)

// MapSession converts the auth response to a domain session
func MapSession(dto SessionDTO) *domain.Session {
	return &domain.Session{
		ID:           int64(dto.ID),
		Username:     dto.Username,
		Phone:        dto.Phone,
		FullName:     dto.FullName,
		Email:        dto.Email,
		IsAdmin:      dto.IsAdmin,
		City:         dto.City,
		BirthDate:    dto.BirthDate.Time,
		AvatarURL:    dto.AvatarURL,
		Bio:          dto.Bio,
		EmailVisible: dto.EmailVisible,
		AuthToken:    dto.AuthToken,
		CreatedAt:    dto.CreatedAt.Time,
	}
}

// MapUser converts a user payload to a card. Some endpoints only send
// user_id, so it is used when id is missing.
func MapUser(dto UserDTO) domain.UserCard {
	id := dto.ID
	if id == 0 {
		id = dto.UserID
	}
	card := domain.UserCard{
		ID:           int64(id),
		DisplayName:  strings.TrimSpace(dto.FullName),
		Username:     dto.Username,
		Phone:        dto.Phone,
		City:         dto.City,
		Email:        dto.Email,
		BirthDate:    dto.BirthDate.Time,
		AvatarURL:    dto.AvatarURL,
		Bio:          dto.Bio,
		EmailVisible: dto.EmailVisible,
	}
	if card.DisplayName == "" {
		card.DisplayName = card.Handle()
	}
	return card
}

// MapUsers converts user payloads, dropping entries without an id
func MapUsers(dtos []UserDTO) []domain.UserCard {
	users := make([]domain.UserCard, 0, len(dtos))
	for _, d := range dtos {
		u := MapUser(d)
		if u.ID == 0 {
			continue
		}
		users = append(users, u)
	}
	return users
}

// MapPosts converts post payloads, dropping entries without an id
func MapPosts(dtos []PostDTO) []domain.Post {
	posts := make([]domain.Post, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == 0 {
			continue
		}
		p := domain.Post{
			ID:           int64(d.ID),
			AuthorID:     int64(d.UserID),
			Content:      d.Content,
			ImageURL:     d.ImageURL,
			CreatedAt:    d.CreatedAt.Time,
			LikeCount:    max(d.LikesCount, 0),
			CommentCount: max(d.CommentsCount, 0),
		}
		if d.Author != nil {
			author := MapUser(*d.Author)
			if author.ID != 0 {
				p.AuthorID = author.ID
			}
			p.AuthorDisplayName = author.DisplayName
			p.AuthorUsername = author.Handle()
		}
		posts = append(posts, p)
	}
	return posts
}

// MapCommunities converts community payloads
func MapCommunities(dtos []CommunityDTO) []domain.Community {
	communities := make([]domain.Community, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == 0 {
			continue
		}
		communities = append(communities, domain.Community{
			ID:          int64(d.ID),
			Name:        d.Name,
			Description: d.Description,
			AvatarURL:   d.AvatarURL,
			Color:       d.Color,
			MemberCount: max(d.MembersCount, 0),
			IsMember:    d.IsMember,
		})
	}
	return communities
}

// MapFriendRequests converts pending request payloads
func MapFriendRequests(dtos []FriendRequestDTO) []domain.FriendRequest {
	requests := make([]domain.FriendRequest, 0, len(dtos))
	for _, d := range dtos {
		from := MapUser(UserDTO{
			ID:        d.UserID,
			Username:  d.Username,
			Phone:     d.Phone,
			FullName:  d.FullName,
			AvatarURL: d.AvatarURL,
		})
		if from.ID == 0 {
			continue
		}
		requests = append(requests, domain.FriendRequest{
			ID:        int64(d.ID),
			From:      from,
			CreatedAt: d.CreatedAt.Time,
		})
	}
	return requests
}

// MapNotifications converts notification payloads. The text arrives as
// content or message depending on the notification source.
func MapNotifications(dtos []NotificationDTO) []domain.Notification {
	notifications := make([]domain.Notification, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == 0 {
			continue
		}
		n := domain.Notification{
			ID:        int64(d.ID),
			Type:      d.Type,
			Message:   d.Content,
			CreatedAt: d.CreatedAt.Time,
			IsRead:    d.IsRead,
		}
		if n.Message == "" {
			n.Message = d.Message
		}
		if d.RelatedUser != nil {
			if u := MapUser(*d.RelatedUser); u.ID != 0 {
				n.RelatedUser = &u
			}
		}
		notifications = append(notifications, n)
	}
	return notifications
}

// MapAdminRequests converts admin queue payloads. Unknown statuses are
// treated as pending.
func MapAdminRequests(dtos []AdminRequestDTO) []domain.AdminRequest {
	requests := make([]domain.AdminRequest, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == 0 {
			continue
		}
		status := domain.AdminRequestStatus(strings.ToLower(d.Status))
		switch status {
		case domain.AdminRequestApproved, domain.AdminRequestRejected:
		default:
			status = domain.AdminRequestPending
		}
		requests = append(requests, domain.AdminRequest{
			ID:        int64(d.ID),
			UserID:    int64(d.UserID),
			Username:  d.Username,
			Message:   d.Message,
			Status:    status,
			CreatedAt: d.CreatedAt.Time,
		})
	}
	return requests
}

// MapPlaylists converts playlist payloads
func MapPlaylists(dtos []PlaylistDTO) []domain.Playlist {
	playlists := make([]domain.Playlist, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == 0 {
			continue
		}
		playlists = append(playlists, domain.Playlist{
			ID:          int64(d.ID),
			Name:        d.Name,
			Description: d.Description,
			CoverURL:    d.CoverURL,
			IsPublic:    d.IsPublic,
			CreatedAt:   d.CreatedAt.Time,
			TrackCount:  max(d.TrackCount, 0),
		})
	}
	return playlists
}

// MapTracks converts track payloads
func MapTracks(dtos []TrackDTO) []domain.Track {
	tracks := make([]domain.Track, 0, len(dtos))
	for _, d := range dtos {
		tracks = append(tracks, domain.Track{
			ID:       int64(d.ID),
			Title:    d.Title,
			Artist:   d.Artist,
			URL:      d.URL,
			Duration: time.Duration(d.Duration) * time.Second,
			Position: d.Position,
		})
	}
	return tracks
}
