package controller

import (
	"context"

	"github.com/callsys/callboard/internal/broadcast"
	"github.com/callsys/callboard/internal/service/auth"
)

type contextKey int

const (
	identityCtxKey contextKey = iota
	clientCtxKey
)

func (c controller) getIdentityFromCtx(ctx context.Context) auth.Identity {
	identity, ok := ctx.Value(identityCtxKey).(auth.Identity)
	if !ok {
		return auth.Identity{}
	}

	return identity
}

func (c controller) getClientFromCtx(ctx context.Context) *broadcast.Client {
	client, _ := ctx.Value(clientCtxKey).(*broadcast.Client)
	return client
}
