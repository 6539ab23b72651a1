package utils

import (
	"strconv"

	"github.com/kataras/iris/v12"
)

// CallerIDMiddleware reads the caller identity the Auth collaborator put on
// the request (X-User-ID) and stores it in the context for downstream
// handlers. This core does not authenticate; it only needs to know who is
// acting.
func CallerIDMiddleware(ctx iris.Context) {
	raw := ctx.GetHeader("X-User-ID")
	if raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			ctx.Values().Set("userID", uint(id))
		}
	}
	ctx.Next()
}

// CallerID returns the identity set by CallerIDMiddleware, zero when absent.
func CallerID(ctx iris.Context) uint {
	if v := ctx.Values().Get("userID"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
