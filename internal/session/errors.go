package session

import "errors"

var errMalformedToken = errors.New("token payload could not be decoded")
