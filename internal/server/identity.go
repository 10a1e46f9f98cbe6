package server

import (
	"context"
	"net/http"
)

type contextKey int

const (
	userIDKey contextKey = iota
	userInfoKey
)

// UserInfo is the resolved identity for the current request.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// identity resolves the requesting user. With a Tailscale local client
// attached, the node's login maps to a database user; otherwise every
// request runs as the local dev user (id 1, seeded by migrations).
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := 1
		info := UserInfo{Login: "local", DisplayName: "Local User"}

		if s.lc != nil {
			who, err := s.lc.WhoIs(ctx, r.RemoteAddr)
			if err == nil && who.UserProfile != nil {
				info.Login = who.UserProfile.LoginName
				info.DisplayName = who.UserProfile.DisplayName
				if id, err := s.db.GetOrCreateUser(ctx, info.Login, info.DisplayName); err == nil {
					userID = id
				} else {
					s.log.Warn("user lookup failed", "login", info.Login, "error", err)
				}
			}
		}

		ctx = context.WithValue(ctx, userIDKey, userID)
		ctx = context.WithValue(ctx, userInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFromContext returns the request's user ID, defaulting to 1.
func userIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// userInfoFromContext returns the request's identity, defaulting to
// the local dev user.
func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return UserInfo{Login: "local", DisplayName: "Local User"}
}
