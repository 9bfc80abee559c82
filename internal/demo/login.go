package demo

import (
	"context"
	"net/http"

	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/ident"
	"github.com/kbukum/widgetkit/logger"
)

// Login is the demo login callback. It expects an email and a password
// and accepts any non-empty pair.
func Login(_ context.Context, id ident.ID, args ...any) error {
	var email, password string
	if len(args) > 0 {
		email, _ = args[0].(string)
	}
	if len(args) > 1 {
		password, _ = args[1].(string)
	}
	if email == "" || password == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "Wrong email or password.", http.StatusUnauthorized)
	}
	logger.Get("demo").Info("login accepted", logger.Fields(logger.FieldInstanceID, id.String(), "email", email))
	return nil
}
