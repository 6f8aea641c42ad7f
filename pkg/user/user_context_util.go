package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type requestUserKey struct{}

// UserKey carries the User resolved from the X-User-Id header of a request.
var UserKey = requestUserKey{}

var ErrNoUser = errors.New("no user in context")

// WithUser attaches the resolved user, including its family, to ctx.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// CurrentUser returns the user resolved for the request, with the family it belonged to at that
// time.
func CurrentUser(ctx context.Context) (User, error) {
	user, ok := ctx.Value(UserKey).(User)
	if !ok || user.Id <= 0 {
		log.Trace("user not found in context")
		return User{}, ErrNoUser
	}
	return user, nil
}

func CurrentId(ctx context.Context) (int, error) {
	user, err := CurrentUser(ctx)
	return user.Id, err
}

// CurrentFamilyId returns the family of the request user, ErrNoFamily when it has none.
func CurrentFamilyId(ctx context.Context) (string, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	if user.FamilyId == "" {
		return "", ErrNoFamily
	}
	return user.FamilyId, nil
}
