package service

import "errors"

var (
	ErrAccountNotFound      = errors.New("error account not found")
	ErrAccountAlreadyExists = errors.New("error account already exists")
)
