package app

import (
	"net/http"
	"strconv"
)

type sessionKey string

const (
	SessionKeyUserId         = sessionKey("userID")
	SessionKeyMembershipTier = sessionKey("membershipTier")
	SessionKeyStaff          = sessionKey("staff")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) contextGetUserId(r *http.Request) int {
	userId, ok := r.Context().Value(SessionKeyUserId).(int)
	if !ok {
		panic("missing user id from context")
	}

	return userId
}

// lockHolder is the identity under which a user's seat locks are taken.
func (app *Application) lockHolder(r *http.Request) string {
	return strconv.Itoa(app.contextGetUserId(r))
}

func (app *Application) sessionMembershipTier(r *http.Request) string {
	return app.sessionManager.GetString(r.Context(), SessionKeyMembershipTier.String())
}
