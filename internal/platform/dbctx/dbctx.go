package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos use Tx when set and fall back to their own handle otherwise.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
