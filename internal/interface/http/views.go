package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/glowcast/glowcast/internal/domain/entity"
)

// ownerView is what an identity sees of itself. PasswordHash, PasswordSalt,
// and ResetToken are never serialized; the stream key has its own
// owner-only endpoint.
func ownerView(u *entity.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"pic":      u.Pic,
		"status":   u.Status,
		"points":   u.Points,
		"stream":   profileView(&u.Stream, true),
	}
}

// publicView is the streamer page any viewer can see: no email, no ban list,
// no secrets, no balance-adjacent internals beyond the goal counters.
func publicView(u *entity.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"pic":      u.Pic,
		"status":   u.Status,
		"stream":   profileView(&u.Stream, false),
	}
}

func profileView(p *entity.StreamProfile, owner bool) gin.H {
	v := gin.H{
		"title":        p.Title,
		"game":         p.Game,
		"with_game":    p.WithGame,
		"live":         p.Live,
		"stream_image": p.StreamImage,
		"with_goal":    p.WithGoal,
		"goal":         p.Goal,
		"received":     p.Received,
		"goal_reward":  p.GoalReward,
		"twitter":      p.Twitter,
		"first_site":   p.FirstSite,
		"bio":          p.Bio,
	}
	if owner {
		banned := p.BannedUsers
		if banned == nil {
			banned = []string{}
		}
		v["banned_users"] = banned
	}
	return v
}
