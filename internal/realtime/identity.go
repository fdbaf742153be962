package realtime

import "github.com/appetiteclub/kds/pkg/event"

// Identity is who the display connects as. Kitchen staff are often not
// logged in, so an empty identity connects anonymously.
type Identity struct {
	Token  string
	UserID string
}

type resolvedIdentity struct {
	token    string
	userID   string
	userType string
}

func (i Identity) resolve(storeID string) resolvedIdentity {
	r := resolvedIdentity{
		token:    i.Token,
		userID:   i.UserID,
		userType: event.UserTypeAuthenticated,
	}
	if r.token == "" {
		r.token = event.AnonymousToken
	}
	if r.userID == "" {
		r.userID = "kds-user-" + storeID
		r.userType = event.UserTypeAnonymous
	}
	return r
}

func (r resolvedIdentity) anonymous() bool {
	return r.token == event.AnonymousToken
}
