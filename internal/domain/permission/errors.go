package permission

import "errors"

var (
	ErrGrantNotFound = errors.New("permission grant not found")
	ErrGrantExists   = errors.New("permission grant already exists")
	ErrSystemGrant   = errors.New("built-in permission grants cannot be deleted")
)
