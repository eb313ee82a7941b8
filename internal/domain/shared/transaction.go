package shared

import "context"

// TransactionManager runs a function inside a single database
// transaction. Every money or stock mutation path executes through it so
// that row locks taken by repositories hold until commit.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
