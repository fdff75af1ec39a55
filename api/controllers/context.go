package controllers

import (
	"net/http"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/auth"
	pkgerrors "github.com/sathwikmerugu45/E-Commerce-Website/pkg/errors"
)

func sessionFrom(r *http.Request) (*auth.Session, error) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, auth.SignInRequiredMessage)
	}
	return sess, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable")
}
