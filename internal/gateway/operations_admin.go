package gateway

import (
	"context"

	"github.com/terraincognita07/taskdesk/internal/models"
	"github.com/terraincognita07/taskdesk/internal/services"
)

type setRoleArgs struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
}

type setStatusArgs struct {
	UserID   uint  `json:"userId"`
	IsActive *bool `json:"isActive"`
}

type deleteUserArgs struct {
	UserID uint `json:"userId"`
}

func (g *Gateway) listUsers(ctx context.Context, c *call) Result[UsersPayload] {
	if err := services.AuthorizeAdministration(c.caller); err != nil {
		return failure[UsersPayload](g, c, err)
	}

	users, err := g.credentials.ListAll(ctx)
	if err != nil {
		return failure[UsersPayload](g, c, err)
	}
	return Ok(UsersPayload{Users: models.Profiles(users)})
}

func (g *Gateway) setRole(ctx context.Context, c *call) Result[UserPayload] {
	var args setRoleArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[UserPayload](g, c, err)
	}
	if err := services.AuthorizeTargetChange(c.caller, args.UserID); err != nil {
		return failure[UserPayload](g, c, err)
	}
	if args.UserID == 0 {
		return failure[UserPayload](g, c, services.ErrMalformedArguments)
	}

	user, err := g.credentials.SetRole(ctx, args.UserID, args.Role)
	if err != nil {
		return failure[UserPayload](g, c, err)
	}
	return Ok(UserPayload{User: user.Profile()})
}

func (g *Gateway) setStatus(ctx context.Context, c *call) Result[UserPayload] {
	var args setStatusArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[UserPayload](g, c, err)
	}
	if err := services.AuthorizeTargetChange(c.caller, args.UserID); err != nil {
		return failure[UserPayload](g, c, err)
	}
	if args.UserID == 0 || args.IsActive == nil {
		return failure[UserPayload](g, c, services.ErrMalformedArguments)
	}

	user, err := g.credentials.SetActive(ctx, args.UserID, *args.IsActive)
	if err != nil {
		return failure[UserPayload](g, c, err)
	}
	return Ok(UserPayload{User: user.Profile()})
}

func (g *Gateway) deleteUser(ctx context.Context, c *call) Result[DeletedPayload] {
	var args deleteUserArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[DeletedPayload](g, c, err)
	}
	if err := services.AuthorizeTargetChange(c.caller, args.UserID); err != nil {
		return failure[DeletedPayload](g, c, err)
	}
	if args.UserID == 0 {
		return failure[DeletedPayload](g, c, services.ErrMalformedArguments)
	}

	deleted, err := g.credentials.Delete(ctx, args.UserID)
	if err != nil {
		return failure[DeletedPayload](g, c, err)
	}
	return Ok(DeletedPayload{Deleted: deleted})
}
