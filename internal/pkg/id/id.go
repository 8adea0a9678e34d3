package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. ULIDs sort by creation time, which keeps the
// OTP and coupon primary keys roughly insertion-ordered in both stores.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
