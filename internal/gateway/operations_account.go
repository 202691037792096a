package gateway

import (
	"context"
	"errors"

	"github.com/terraincognita07/taskdesk/internal/models"
	"github.com/terraincognita07/taskdesk/internal/services"
)

type registerArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateProfileArgs struct {
	FullName optionalString `json:"fullName"`
	Email    optionalString `json:"email"`
}

type changePasswordArgs struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (g *Gateway) register(ctx context.Context, c *call) Result[SessionPayload] {
	var args registerArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[SessionPayload](g, c, err)
	}

	user, err := g.credentials.Register(ctx, services.RegisterInput{
		Username: args.Username,
		Password: args.Password,
		FullName: args.FullName,
		Email:    args.Email,
		Role:     args.Role,
	})
	if err != nil {
		return failure[SessionPayload](g, c, err)
	}
	return g.openSession(c, user)
}

func (g *Gateway) login(ctx context.Context, c *call) Result[SessionPayload] {
	var args loginArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[SessionPayload](g, c, err)
	}

	key := loginLimiterKey(c.command.Client, args.Username)
	if g.limiter.tooManyRecent(key, g.now()) {
		return failure[SessionPayload](g, c, services.ErrTooManyAttempts)
	}

	user, err := g.credentials.Authenticate(ctx, args.Username, args.Password)
	if err != nil {
		// Unknown usernames and wrong passwords look the same to the caller.
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidCredential) {
			g.limiter.addFailure(key, g.now())
			err = services.ErrInvalidCredentials
		}
		return failure[SessionPayload](g, c, err)
	}

	g.limiter.reset(key)
	return g.openSession(c, user)
}

func (g *Gateway) openSession(c *call, user models.User) Result[SessionPayload] {
	token, expiresAt, err := g.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return failure[SessionPayload](g, c, err)
	}
	return Ok(SessionPayload{User: user.Profile(), Token: token, ExpiresAt: expiresAt})
}

func (g *Gateway) listRoles(_ context.Context, _ *call) Result[RolesPayload] {
	return Ok(RolesPayload{Roles: models.Roles()})
}

func (g *Gateway) whoAmI(_ context.Context, c *call) Result[UserPayload] {
	return Ok(UserPayload{User: c.caller.Profile()})
}

func (g *Gateway) updateProfile(ctx context.Context, c *call) Result[UserPayload] {
	var args updateProfileArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[UserPayload](g, c, err)
	}

	patch := services.ProfilePatch{
		FullName: args.FullName.pointer(),
		Email:    args.Email.pointer(),
	}
	// null clears the optional fields
	empty := ""
	if args.FullName.null {
		patch.FullName = &empty
	}
	if args.Email.null {
		patch.Email = &empty
	}

	user, err := g.credentials.UpdateProfile(ctx, c.caller.ID, patch)
	if err != nil {
		return failure[UserPayload](g, c, err)
	}
	return Ok(UserPayload{User: user.Profile()})
}

func (g *Gateway) changePassword(ctx context.Context, c *call) Result[UserPayload] {
	var args changePasswordArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[UserPayload](g, c, err)
	}

	user, err := g.credentials.ChangePassword(ctx, c.caller.ID, args.CurrentPassword, args.NewPassword)
	if err != nil {
		return failure[UserPayload](g, c, err)
	}
	return Ok(UserPayload{User: user.Profile()})
}
